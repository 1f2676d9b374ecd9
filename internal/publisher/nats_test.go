package publisher

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-analyzer/internal/report"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

type countingMetrics struct {
	published, errs int
	connected        bool
}

func (m *countingMetrics) PublishedInc()       { m.published++ }
func (m *countingMetrics) PublishErrInc()      { m.errs++ }
func (m *countingMetrics) SetConnected(b bool) { m.connected = b }

func TestSubjectToken(t *testing.T) {
	tests := map[string]string{
		"seasonal":    "seasonal",
		" a b ":       "a_b",
		"x.y":         "x_y",
		"wild*card>":  "wild_card_",
		"":            "_",
		"path/to\tit": "path_to_it",
	}
	for in, want := range tests {
		assert.Equal(t, want, subjectToken(in), "input %q", in)
	}
}

func TestSubjectPrefix(t *testing.T) {
	assert.Equal(t, "bikeshare.reports", subjectPrefix("bikeshare.reports"))
	assert.Equal(t, "bike_share.reports", subjectPrefix(" .bike share.reports. "))
}

func TestPublishSummary(t *testing.T) {
	ns := runServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 16)
	s, err := sub.ChanSubscribe("bikeshare.reports.>", msgs)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	m := &countingMetrics{}
	pub, err := NewNATSPublisher(ns.ClientURL(), "bikeshare.reports", false, m)
	require.NoError(t, err)
	defer pub.Close()
	assert.True(t, m.connected)

	summary := &report.Summary{
		Rides: 3,
		Seasonal: []report.SeasonSummary{
			{Season: "Lato", RideCount: 3, AvgDurationMinutes: 20, AvgDistanceKm: 2},
		},
		Deficits: []report.StationBalance{
			{StationName: "Alpha", StationID: "A1", Departures: 2, Balance: -2},
		},
	}
	require.NoError(t, pub.PublishSummary("run-1", summary))

	got := map[string]*nats.Msg{}
	timeout := time.After(5 * time.Second)
	for len(got) < 5 {
		select {
		case msg := <-msgs:
			got[msg.Subject] = msg
		case <-timeout:
			t.Fatalf("received %d of 5 messages", len(got))
		}
	}
	for _, subj := range []string{"seasonal", "deficits", "speeds", "routes", "summary"} {
		assert.Contains(t, got, "bikeshare.reports."+subj)
	}
	assert.Equal(t, 5, m.published)
	assert.Zero(t, m.errs)

	var env struct {
		RunID  string                 `json:"runId"`
		Report string                 `json:"report"`
		Data   []report.SeasonSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(got["bikeshare.reports.seasonal"].Data, &env))
	assert.Equal(t, "run-1", env.RunID)
	assert.Equal(t, "seasonal", env.Report)
	assert.Equal(t, summary.Seasonal, env.Data)

	var deficits struct {
		Data []report.StationBalance `json:"data"`
	}
	require.NoError(t, json.Unmarshal(got["bikeshare.reports.deficits"].Data, &deficits))
	assert.Equal(t, summary.Deficits, deficits.Data)
}

func TestNewNATSPublisher_ConnectError(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "bikeshare.reports", false, nil)
	assert.Error(t, err)
}
