package publisher

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"bikeshare-analyzer/internal/logging"
	"bikeshare-analyzer/internal/report"
)

type NATSPublisher struct {
	nc          *nats.Conn
	subject     string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	PublishedInc()
	PublishErrInc()
	SetConnected(connected bool)
}

func NewNATSPublisher(url, subject string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("bikeshare-analyzer"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.SetConnected(false)
			}
			logging.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(true)
			}
			logging.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(false)
			}
			logging.Debug().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}
	if m != nil {
		m.SetConnected(true)
	}
	return &NATSPublisher{nc: nc, subject: subject, logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// ReportMessage is the envelope for every published report.
type ReportMessage struct {
	RunID       string    `json:"runId"`
	Report      string    `json:"report"`
	GeneratedAt time.Time `json:"generatedAt"`
	Data        any       `json:"data"`
}

// PublishSummary publishes each report of s on its own subject,
// <subject>.<report>, followed by the whole summary on <subject>.summary.
// It returns the first publish error but attempts every report.
func (p *NATSPublisher) PublishSummary(runID string, s *report.Summary) error {
	now := time.Now().UTC()
	parts := []struct {
		name string
		data any
	}{
		{"seasonal", s.Seasonal},
		{"deficits", s.Deficits},
		{"speeds", s.Speeds},
		{"routes", s.Routes},
		{"summary", s},
	}
	var firstErr error
	for _, part := range parts {
		msg := ReportMessage{RunID: runID, Report: part.name, GeneratedAt: now, Data: part.data}
		if err := p.publish(part.name, msg); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("publish %s: %w", part.name, err)
		}
	}
	if err := p.nc.Flush(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("flush: %w", err)
	}
	return firstErr
}

func (p *NATSPublisher) publish(name string, msg ReportMessage) error {
	subject := fmt.Sprintf("%s.%s", subjectPrefix(p.subject), subjectToken(name))
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		logging.Info().Str("subject", subject).Int("bytes", len(b)).Msg("nats publish")
	}
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.PublishErrInc()
		} else {
			p.metrics.PublishedInc()
		}
	}
	return err
}

// subjectPrefix sanitises each dot-separated token of a configured subject.
func subjectPrefix(s string) string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(s), "."), ".")
	for i, part := range parts {
		parts[i] = subjectToken(part)
	}
	return strings.Join(parts, ".")
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
