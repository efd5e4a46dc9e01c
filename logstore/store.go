package logstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/viant/swarmdb/record"
)

// Stats exposes basic read metrics.
type Stats struct {
	// Records fully decoded through ReadAt
	RecordsRead uint64 `json:"recordsRead"`
	// Index keys decoded through ReadKey
	KeysRead uint64 `json:"keysRead"`
	// Total bytes handed to the codec
	BytesRead uint64 `json:"bytesRead"`
	// Whether reads are served from a memory mapped view
	Mapped bool `json:"mapped"`
}

// Store is a read-only view over a closed log file. It is safe for
// concurrent readers; every read decodes into fresh memory.
type Store struct {
	mu      sync.RWMutex
	path    string
	f       *os.File
	header  Header
	recSize int
	size    int64
	// read-only mapped view of the header and records; nil when unmapped
	data   []byte
	closed bool
	logger *slog.Logger

	recordsRead atomic.Uint64
	keysRead    atomic.Uint64
	bytesRead   atomic.Uint64
}

// Open opens the log at path read-only.
func Open(path string, opts ...Option) (*Store, error) {
	o := newOptions(opts)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("logstore: open %s: %w", path, err)
	}
	s := &Store{path: path, f: f, logger: o.logger.With("path", path)}
	if err := s.load(o.mmap); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(useMmap bool) error {
	info, err := s.f.Stat()
	if err != nil {
		return fmt.Errorf("logstore: stat: %w", err)
	}
	buf := make([]byte, HeaderSize)
	if _, err := s.f.ReadAt(buf, 0); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: file shorter than header (%d bytes)", ErrFormat, info.Size())
		}
		return fmt.Errorf("logstore: read header: %w", err)
	}
	h, err := decodeHeader(buf)
	if err != nil {
		return err
	}
	s.recSize = record.Size(h.BodyCount)
	s.size = info.Size()
	if maxRecords := (math.MaxInt64 - HeaderSize) / int64(s.recSize); int64(h.RecordCount) > maxRecords {
		return fmt.Errorf("%w: header declares %d records of %d bytes", ErrFormat, h.RecordCount, s.recSize)
	}
	payload := info.Size() - HeaderSize
	fits := int(payload / int64(s.recSize))
	if h.Sealed {
		if payload != int64(h.RecordCount)*int64(s.recSize) {
			return fmt.Errorf("%w: sealed log holds %d bytes of records, header declares %d records of %d bytes",
				ErrFormat, payload, h.RecordCount, s.recSize)
		}
	} else {
		// the producer did not finish: trust whole records only
		if rem := payload % int64(s.recSize); rem != 0 {
			s.logger.Warn("ignoring partial trailing record", "bytes", rem)
		}
		s.logger.Warn("log was not sealed, recovered record count from file size",
			"declared", h.RecordCount, "recovered", fits)
		h.RecordCount = fits
	}
	s.header = h
	if useMmap {
		data, err := mapFile(s.f, HeaderSize+h.RecordCount*s.recSize)
		if err != nil {
			s.logger.Debug("mmap unavailable, using file reads", "error", err)
		} else {
			s.data = data
		}
	}
	s.logger.Debug("opened log", "records", h.RecordCount, "bodies", h.BodyCount, "run", h.RunID, "mapped", s.data != nil)
	return nil
}

// Path returns the file path of the store.
func (s *Store) Path() string { return s.path }

// Size returns the file size observed at open.
func (s *Store) Size() int64 { return s.size }

// Header returns the decoded file header. For a recovered log RecordCount
// reflects the recovered count.
func (s *Store) Header() Header { return s.header }

// RecordCount returns the number of readable records.
func (s *Store) RecordCount() int { return s.header.RecordCount }

// BodyCount returns the per-record body count of this log.
func (s *Store) BodyCount() int { return s.header.BodyCount }

// ReadAt decodes the record at the given append position.
func (s *Store) ReadAt(offset int) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bytesLocked(offset, s.recSize)
	if err != nil {
		return record.Record{}, err
	}
	rec, err := record.Decode(b)
	if err != nil {
		return record.Record{}, fmt.Errorf("offset %d: %w", offset, err)
	}
	s.recordsRead.Add(1)
	s.bytesRead.Add(uint64(len(b)))
	return rec, nil
}

// ReadKey decodes only the index key of the record at offset. Body and
// checksum validation is left to ReadAt.
func (s *Store) ReadKey(offset int) (record.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bytesLocked(offset, record.HeaderSize)
	if err != nil {
		return record.Key{}, err
	}
	key, err := record.DecodeKey(b)
	if err != nil {
		return record.Key{}, fmt.Errorf("offset %d: %w", offset, err)
	}
	s.keysRead.Add(1)
	s.bytesRead.Add(uint64(len(b)))
	return key, nil
}

// bytesLocked returns n bytes of the record at offset, either as a view into
// the mapping or as a freshly read buffer.
func (s *Store) bytesLocked(offset, n int) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if offset < 0 || offset >= s.header.RecordCount {
		return nil, fmt.Errorf("%w: %d (records: %d)", ErrOutOfRange, offset, s.header.RecordCount)
	}
	start := HeaderSize + offset*s.recSize
	if end := start + n; s.data != nil && end <= len(s.data) {
		return s.data[start:end], nil
	}
	buf := make([]byte, n)
	if _, err := s.f.ReadAt(buf, int64(start)); err != nil {
		return nil, fmt.Errorf("logstore: read offset %d: %w", offset, err)
	}
	return buf, nil
}

// Stats returns best-effort read metrics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	mapped := s.data != nil
	s.mu.RUnlock()
	return Stats{
		RecordsRead: s.recordsRead.Load(),
		KeysRead:    s.keysRead.Load(),
		BytesRead:   s.bytesRead.Load(),
		Mapped:      mapped,
	}
}

// Close releases the mapping and the file handle. Reads after Close return
// ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var firstErr error
	if err := unmapFile(s.data); err != nil {
		firstErr = err
	}
	s.data = nil
	if err := s.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
