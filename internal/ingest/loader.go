// Package ingest reads ride export files and feeds their rows to an
// aggregator. Rows are split on commas without quoting support.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bikeshare-analyzer/internal/logging"
	"bikeshare-analyzer/internal/rides"
)

const Delimiter = ","

var ErrNoFiles = errors.New("no csv files found")

// Sink receives parsed rows. *aggregate.Aggregator implements it.
type Sink interface {
	AddRow(fields []string) error
	Skip(reason string)
}

// Metrics is the subset of collector behaviour the loader reports to.
type Metrics interface {
	RowAccepted()
	RowSkipped(reason string)
	FileLoaded(d time.Duration)
}

type Stats struct {
	Files    int
	Rows     int // data rows, header and blank lines excluded
	Accepted int
	Skipped  int
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Rows += o.Rows
	s.Accepted += o.Accepted
	s.Skipped += o.Skipped
}

type Loader struct {
	sink    Sink
	metrics Metrics
}

// NewLoader creates a Loader. m may be nil.
func NewLoader(sink Sink, m Metrics) *Loader {
	return &Loader{sink: sink, metrics: m}
}

// FindFiles returns every file below dir with a .csv extension (any case),
// in lexical walk order.
func FindFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return files, nil
}

// LoadDir loads every CSV file below dir. Any unreadable file aborts the
// run; only row-level problems are tolerated.
func (l *Loader) LoadDir(ctx context.Context, dir string) (Stats, error) {
	files, err := FindFiles(dir)
	if err != nil {
		return Stats{}, err
	}
	if len(files) == 0 {
		return Stats{}, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}
	logging.Info().Str("dir", dir).Int("files", len(files)).Msg("found csv files")

	var total Stats
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		st, err := l.LoadFile(path)
		if err != nil {
			return total, err
		}
		total.add(st)
	}
	return total, nil
}

func (l *Loader) LoadFile(path string) (Stats, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := l.LoadReader(f)
	if err != nil {
		return st, fmt.Errorf("read %s: %w", path, err)
	}
	st.Files = 1
	if l.metrics != nil {
		l.metrics.FileLoaded(time.Since(start))
	}
	logging.Info().
		Str("file", path).
		Int("rows", st.Rows).
		Int("accepted", st.Accepted).
		Int("skipped", st.Skipped).
		Dur("took", time.Since(start).Round(time.Millisecond)).
		Msg("loaded file")
	return st, nil
}

// LoadReader feeds one file's rows to the sink. Blank lines are ignored and
// the first non-blank line is treated as the header. Lines have no length
// limit.
func (l *Loader) LoadReader(r io.Reader) (Stats, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var st Stats
	header := true
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return st, err
		}
		if err != nil && line == "" {
			break
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		st.Rows++

		fields := strings.Split(line, Delimiter)
		if len(fields) < rides.MinFields {
			reason := rides.SkipReason(rides.ErrTooFewFields)
			l.sink.Skip(reason)
			l.skipped(&st, reason)
			continue
		}
		if err := l.sink.AddRow(fields); err != nil {
			logging.Debug().Err(err).Int("row", st.Rows).Msg("skipping row")
			l.skipped(&st, rides.SkipReason(err))
			continue
		}
		st.Accepted++
		if l.metrics != nil {
			l.metrics.RowAccepted()
		}
	}
	return st, nil
}

func (l *Loader) skipped(st *Stats, reason string) {
	st.Skipped++
	if l.metrics != nil {
		l.metrics.RowSkipped(reason)
	}
}
