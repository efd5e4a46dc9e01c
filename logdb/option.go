package logdb

import "log/slog"

type options struct {
	logger   *slog.Logger
	cacheURL string
	mmap     bool
}

func newOptions(opts []Option) *options {
	ret := &options{mmap: true}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.New(slog.DiscardHandler)
	}
	return ret
}

// Option configures Open.
type Option func(o *options)

// WithLogger sets the logger shared by the database and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithIndexCache enables the on-disk index cache under baseURL, any URL
// supported by afs (local path, file://, mem://, gs://, s3://).
func WithIndexCache(baseURL string) Option {
	return func(o *options) { o.cacheURL = baseURL }
}

// WithMmap toggles memory mapped reads, enabled by default.
func WithMmap(enabled bool) Option {
	return func(o *options) { o.mmap = enabled }
}
