package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// CSVStore is a Store backed by a single append-only CSV file.
type CSVStore struct {
	path string
	sync bool
	mode os.FileMode
	mu   sync.Mutex
}

// NewCSVStore creates a store for the log at path. The file is not touched
// until the first Append.
func NewCSVStore(path string, opts ...Option) *CSVStore {
	s := &CSVStore{
		path: path,
		sync: true,
		mode: defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the log file.
func (s *CSVStore) Path() string { return s.path }

// Exists reports whether the log file is present.
func (s *CSVStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Append writes one record. Every call checks on its own whether the file is
// empty and writes the header first if so, so a failed creation is retried by
// the next append.
func (s *CSVStore) Append(ctx context.Context, ev model.FeedbackEvent) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		metrics.RecordLogAppend(err == nil)
		if err != nil {
			metrics.RecordErrorByComponent("repository", "append")
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrAppend, err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.mode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrAppend, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("%w: %w", ErrAppend, err)
		}
	}
	if err := w.Write(EncodeRecord(ev)); err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}

	if s.sync {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("%w: %w", ErrAppend, err)
		}
	}
	return nil
}

// ReadAll returns every record in append order.
func (s *CSVStore) ReadAll(ctx context.Context) ([]model.FeedbackEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, s.path)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	events, err := Decode(f)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "decode")
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	metrics.UpdateLogRecords(len(events))
	return events, nil
}

// Count returns the number of records, excluding the header.
func (s *CSVStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", ErrLogNotFound, s.path)
	}
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	n := 0
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: record %d: %w", ErrMalformedRecord, n, err)
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return n - 1, nil
}
