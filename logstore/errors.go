package logstore

import (
	"errors"

	"github.com/viant/swarmdb/record"
)

var (
	// ErrNotFound is returned when the log file does not exist.
	ErrNotFound = errors.New("logstore: log not found")

	// ErrFormat indicates an unrecognized or damaged file header.
	ErrFormat = errors.New("logstore: unrecognized log format")

	// ErrOutOfRange indicates an offset outside the store bounds. Seeing it
	// from a query means the index and the store disagree.
	ErrOutOfRange = errors.New("logstore: offset out of range")

	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("logstore: store closed")

	// ErrBodyCount is returned by the writer for a record whose body count
	// differs from the log's.
	ErrBodyCount = errors.New("logstore: body count mismatch")

	// ErrCorruptRecord aliases record.ErrCorruptRecord for callers that only
	// import this package.
	ErrCorruptRecord = record.ErrCorruptRecord
)
