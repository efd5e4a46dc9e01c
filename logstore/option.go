package logstore

import (
	"log/slog"

	"github.com/google/uuid"
)

type options struct {
	logger *slog.Logger
	mmap   bool
	runID  uuid.UUID
}

func newOptions(opts []Option) *options {
	ret := &options{mmap: true}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.New(slog.DiscardHandler)
	}
	ret.logger = ret.logger.With("component", "logstore")
	return ret
}

// Option configures a Store or a Writer.
type Option func(o *options)

// WithLogger sets the logger used for open/recovery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMmap toggles the read-only memory mapped view. When disabled, or when
// mapping fails, reads use positioned file I/O.
func WithMmap(enabled bool) Option {
	return func(o *options) { o.mmap = enabled }
}

// WithRunID sets the run identifier stamped into a new log header. A random
// one is generated otherwise.
func WithRunID(id uuid.UUID) Option {
	return func(o *options) { o.runID = id }
}
