package logstore

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/swarmdb/record"
)

// Writer appends records to a new log. It is meant for the producing run
// only; readers open the finished file with Open.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	header Header
	buf    []byte
	closed bool
	logger *slog.Logger
}

// Create creates (or truncates) a log at path for records of bodyCount
// bodies. The header stays unsealed until Close.
func Create(path string, bodyCount int, opts ...Option) (*Writer, error) {
	if bodyCount < 0 {
		return nil, fmt.Errorf("logstore: negative body count %d", bodyCount)
	}
	o := newOptions(opts)
	runID := o.runID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logstore: create %s: %w", path, err)
	}
	w := &Writer{
		f: f,
		header: Header{
			Version:   SchemaVersion,
			BodyCount: bodyCount,
			RunID:     runID,
			CreatedAt: time.Now(),
		},
		buf:    make([]byte, 0, record.Size(bodyCount)),
		logger: o.logger.With("path", path),
	}
	if err := w.writeHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// RunID returns the identifier stamped into the header.
func (w *Writer) RunID() uuid.UUID { return w.header.RunID }

// Append writes r and returns its offset.
func (w *Writer) Append(r *record.Record) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, ErrClosed
	}
	if len(r.Bodies) != w.header.BodyCount {
		return 0, fmt.Errorf("%w: record has %d bodies, log has %d", ErrBodyCount, len(r.Bodies), w.header.BodyCount)
	}
	data, err := record.AppendEncode(w.buf[:0], r)
	if err != nil {
		return 0, err
	}
	w.buf = data
	offset := w.header.RecordCount
	pos := int64(HeaderSize) + int64(offset)*int64(len(data))
	if _, err := w.f.WriteAt(data, pos); err != nil {
		return 0, fmt.Errorf("logstore: append offset %d: %w", offset, err)
	}
	w.header.RecordCount++
	return offset, nil
}

// Sync persists the current record count (unsealed) and flushes the file.
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.f.Sync()
}

// Close seals the header and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.header.Sealed = true
	if err := w.writeHeader(); err != nil {
		_ = w.f.Close()
		return err
	}
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		return err
	}
	w.logger.Debug("sealed log", "records", w.header.RecordCount, "run", w.header.RunID)
	return w.f.Close()
}

func (w *Writer) writeHeader() error {
	if _, err := w.f.WriteAt(w.header.encode(), 0); err != nil {
		return fmt.Errorf("logstore: write header: %w", err)
	}
	return nil
}
