package logdb

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/viant/swarmdb/index"
	"github.com/viant/swarmdb/ranges"
	"github.com/viant/swarmdb/record"
)

type selection uint8

const (
	selectFirst selection = iota
	selectLast
	selectAll
)

// Pair is one query hit.
type Pair struct {
	SystemID int
	Record   record.Record
}

type scanOptions struct {
	times  ranges.TimeRange
	events []record.EventID
	limit  int
}

// ScanOption narrows a Scan.
type ScanOption func(o *scanOptions)

// WithTimeRange keeps records whose time lies in r.
func WithTimeRange(r ranges.TimeRange) ScanOption {
	return func(o *scanOptions) { o.times = r }
}

// WithEvents keeps records tagged with one of ids.
func WithEvents(ids ...record.EventID) ScanOption {
	return func(o *scanOptions) { o.events = append(o.events, ids...) }
}

// WithLimit stops a scan after n records; n <= 0 means no limit.
func WithLimit(n int) ScanOption {
	return func(o *scanOptions) { o.limit = n }
}

// Result is a lazily evaluated query. It holds no iteration state: each
// call to Cursor, All or Collect starts over.
type Result struct {
	db      *DB
	systems ranges.SystemRange
	mode    selection
	scan    scanOptions
}

// Cursor starts a new iteration.
func (r *Result) Cursor() *Cursor {
	c := &Cursor{result: r}
	if !r.systems.Empty() && !r.scan.times.Empty() {
		c.systems = r.db.index.Lookup(r.systems)
	}
	return c
}

// All returns the query as a sequence. A failure is yielded once, as the
// last element.
func (r *Result) All() iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		c := r.Cursor()
		for c.Next() {
			if !yield(c.Pair(), nil) {
				return
			}
		}
		if err := c.Err(); err != nil {
			yield(Pair{}, err)
		}
	}
}

// Collect materializes the query.
func (r *Result) Collect() ([]Pair, error) {
	var ret []Pair
	c := r.Cursor()
	for c.Next() {
		ret = append(ret, c.Pair())
	}
	return ret, c.Err()
}

// Cursor walks one iteration of a Result. A Cursor is not safe for
// concurrent use; distinct cursors are.
type Cursor struct {
	result  *Result
	systems []int
	// next system to visit
	sysPos int
	// entries of the system being scanned, and the position within them
	entries  []index.Entry
	entryPos int
	systemID int
	emitted  int
	pair     Pair
	err      error
	done     bool
}

// Next decodes the next hit. It returns false at the end or on failure;
// check Err to tell them apart.
func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	opts := &c.result.scan
	store := c.result.db.store
	for {
		if opts.limit > 0 && c.emitted >= opts.limit {
			return c.stop(nil)
		}
		systemID, entry, ok := c.advance()
		if !ok {
			return c.stop(nil)
		}
		if len(opts.events) > 0 {
			key, err := store.ReadKey(entry.Offset)
			if err != nil {
				return c.stop(fmt.Errorf("logdb: system %d: %w", systemID, err))
			}
			if !slices.Contains(opts.events, key.EventID) {
				continue
			}
		}
		rec, err := store.ReadAt(entry.Offset)
		if err != nil {
			return c.stop(fmt.Errorf("logdb: system %d: %w", systemID, err))
		}
		c.pair = Pair{SystemID: systemID, Record: rec}
		c.emitted++
		return true
	}
}

func (c *Cursor) stop(err error) bool {
	c.done, c.err, c.pair = true, err, Pair{}
	return false
}

// advance returns the location of the next candidate record.
func (c *Cursor) advance() (int, index.Entry, bool) {
	idx := c.result.db.index
	switch c.result.mode {
	case selectFirst, selectLast:
		for c.sysPos < len(c.systems) {
			id := c.systems[c.sysPos]
			c.sysPos++
			var entry index.Entry
			var ok bool
			if c.result.mode == selectFirst {
				entry, ok = idx.First(id)
			} else {
				entry, ok = idx.Last(id)
			}
			if ok {
				return id, entry, true
			}
		}
	default:
		times := c.result.scan.times
		for {
			if c.entryPos < len(c.entries) {
				entry := c.entries[c.entryPos]
				c.entryPos++
				if times.Contains(entry.Time) {
					return c.systemID, entry, true
				}
				// entries are time ordered: nothing later fits either
				if _, hi, bounded := times.Bounds(); bounded && entry.Time > hi {
					c.entryPos = len(c.entries)
				}
				continue
			}
			if c.sysPos >= len(c.systems) {
				break
			}
			c.systemID = c.systems[c.sysPos]
			c.sysPos++
			c.entries = idx.Entries(c.systemID)
			c.entryPos = seek(c.entries, times)
		}
	}
	return 0, index.Entry{}, false
}

// seek returns the position of the first entry at or after the lower time
// bound.
func seek(entries []index.Entry, times ranges.TimeRange) int {
	lo, _, bounded := times.Bounds()
	if !bounded {
		return 0
	}
	pos, _ := slices.BinarySearchFunc(entries, lo, func(e index.Entry, t float64) int {
		return cmp.Compare(e.Time, t)
	})
	return pos
}

// Pair returns the hit decoded by the last successful Next.
func (c *Cursor) Pair() Pair { return c.pair }

// Err returns the failure that ended the iteration, if any.
func (c *Cursor) Err() error { return c.err }
