// Package logdb answers initial condition, final condition and range scan
// queries over an N-body simulation log.
//
// A DB is opened once; every query returns a Result, which can be iterated
// any number of times, each time from the start and independently of any
// other iteration in progress.
package logdb

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs/url"
	"github.com/viant/swarmdb/index"
	"github.com/viant/swarmdb/logstore"
	"github.com/viant/swarmdb/ranges"
)

const cacheExt = ".swidx"

// Stats describes an open database.
type Stats struct {
	Path           string         `json:"path"`
	RunID          uuid.UUID      `json:"runId"`
	Records        int            `json:"records"`
	Bodies         int            `json:"bodies"`
	Systems        int            `json:"systems"`
	Sealed         bool           `json:"sealed"`
	IndexFromCache bool           `json:"indexFromCache"`
	IndexBuild     time.Duration  `json:"indexBuild"`
	Store          logstore.Stats `json:"store"`
}

// DB is an opened, indexed log. It is safe for concurrent use.
type DB struct {
	store     *logstore.Store
	index     *index.Index
	logger    *slog.Logger
	fromCache bool
	buildTime time.Duration
}

// Open opens the log at path and indexes it. Either a fully usable DB is
// returned or the error, with nothing left open.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	o := newOptions(opts)
	store, err := logstore.Open(path, logstore.WithLogger(o.logger), logstore.WithMmap(o.mmap))
	if err != nil {
		return nil, err
	}
	db := &DB{store: store, logger: o.logger.With("component", "logdb", "path", path)}
	if err := db.loadIndex(ctx, o.cacheURL); err != nil {
		_ = store.Close()
		return nil, err
	}
	db.logger.Debug("opened", "records", store.RecordCount(), "systems", db.index.Len(),
		"cached", db.fromCache, "elapsed", db.buildTime)
	return db, nil
}

func (db *DB) loadIndex(ctx context.Context, cacheURL string) error {
	started := time.Now()
	defer func() { db.buildTime = time.Since(started) }()
	if cacheURL == "" {
		idx, err := index.Build(ctx, db.store)
		if err != nil {
			return err
		}
		db.index = idx
		return nil
	}

	header, _ := db.store.Header().MarshalBinary()
	size := binary.LittleEndian.AppendUint64(nil, uint64(db.store.Size()))
	fingerprint, err := index.Fingerprint(header, size)
	if err != nil {
		return err
	}
	URL := url.Join(cacheURL, db.RunID().String()+cacheExt)
	idx, err := index.LoadCache(ctx, URL, fingerprint)
	if err == nil {
		db.index, db.fromCache = idx, true
		return nil
	}
	if !errors.Is(err, index.ErrCacheMiss) {
		return err
	}
	db.logger.Debug("index cache miss", "url", URL, "reason", err)
	if idx, err = index.Build(ctx, db.store); err != nil {
		return err
	}
	db.index = idx
	if err := index.SaveCache(ctx, URL, fingerprint, idx); err != nil {
		db.logger.Warn("failed to save index cache", "url", URL, "error", err)
	}
	return nil
}

// InitialConditions selects the earliest record of every system in r.
func (db *DB) InitialConditions(r ranges.SystemRange) *Result {
	return &Result{db: db, systems: r, mode: selectFirst}
}

// FinalConditions selects the latest record of every system in r.
func (db *DB) FinalConditions(r ranges.SystemRange) *Result {
	return &Result{db: db, systems: r, mode: selectLast}
}

// Scan selects every record of the systems in r, ordered by system ID then
// time, narrowed by opts.
func (db *DB) Scan(r ranges.SystemRange, opts ...ScanOption) *Result {
	ret := &Result{db: db, systems: r, mode: selectAll}
	for _, opt := range opts {
		opt(&ret.scan)
	}
	return ret
}

// Systems returns the IDs of all logged systems in ascending order.
func (db *DB) Systems() []int { return db.index.Systems() }

// RecordCount returns the number of records in the log.
func (db *DB) RecordCount() int { return db.store.RecordCount() }

// BodyCount returns the number of bodies per record.
func (db *DB) BodyCount() int { return db.store.BodyCount() }

// RunID returns the identifier of the run that produced the log.
func (db *DB) RunID() uuid.UUID { return db.store.Header().RunID }

// Stats returns a snapshot of database metrics.
func (db *DB) Stats() Stats {
	h := db.store.Header()
	return Stats{
		Path:           db.store.Path(),
		RunID:          h.RunID,
		Records:        h.RecordCount,
		Bodies:         h.BodyCount,
		Systems:        db.index.Len(),
		Sealed:         h.Sealed,
		IndexFromCache: db.fromCache,
		IndexBuild:     db.buildTime,
		Store:          db.store.Stats(),
	}
}

// Close releases the underlying store. Iterations still in progress fail
// with logstore.ErrClosed.
func (db *DB) Close() error {
	return db.store.Close()
}
