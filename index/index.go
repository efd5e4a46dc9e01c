// Package index maps system IDs to the time-ordered offsets of their
// records in a log.
package index

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/viant/swarmdb/ranges"
	"github.com/viant/swarmdb/record"
)

// checkEvery is how many records Build scans between context checks.
const checkEvery = 4096

// Source is the read access Build needs from a log.
type Source interface {
	RecordCount() int
	ReadKey(offset int) (record.Key, error)
}

// Entry locates one record of a system.
type Entry struct {
	Offset int
	Time   float64
}

// Index is an immutable, in-memory system ID index. It is safe for
// concurrent use.
type Index struct {
	records int
	systems []int
	entries map[int][]Entry
}

// Build scans src once in offset order. Each system's entries end up sorted
// by time; records with equal times keep their append order. Either the
// whole index is returned or an error.
func Build(ctx context.Context, src Source) (*Index, error) {
	n := src.RecordCount()
	entries := make(map[int][]Entry)
	for offset := 0; offset < n; offset++ {
		if offset%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		key, err := src.ReadKey(offset)
		if err != nil {
			return nil, fmt.Errorf("index: scan: %w", err)
		}
		entries[key.SystemID] = append(entries[key.SystemID], Entry{Offset: offset, Time: key.Time})
	}
	for _, list := range entries {
		sortEntries(list)
	}
	return newIndex(n, entries), nil
}

func byTime(a, b Entry) int {
	return cmp.Compare(a.Time, b.Time)
}

func sortEntries(list []Entry) {
	if slices.IsSortedFunc(list, byTime) {
		return
	}
	slices.SortStableFunc(list, byTime)
}

func newIndex(records int, entries map[int][]Entry) *Index {
	systems := make([]int, 0, len(entries))
	for id := range entries {
		systems = append(systems, id)
	}
	slices.Sort(systems)
	return &Index{records: records, systems: systems, entries: entries}
}

// RecordCount returns the number of records the index was built from.
func (x *Index) RecordCount() int { return x.records }

// Len returns the number of distinct systems.
func (x *Index) Len() int { return len(x.systems) }

// Systems returns all system IDs in ascending order.
func (x *Index) Systems() []int {
	return slices.Clone(x.systems)
}

// Entries returns the time-ordered entries of a system, or nil when the
// system has no records. The returned slice must not be modified.
func (x *Index) Entries(systemID int) []Entry {
	return x.entries[systemID]
}

// First returns the earliest entry of a system.
func (x *Index) First(systemID int) (Entry, bool) {
	list := x.entries[systemID]
	if len(list) == 0 {
		return Entry{}, false
	}
	return list[0], true
}

// Last returns the latest entry of a system.
func (x *Index) Last(systemID int) (Entry, bool) {
	list := x.entries[systemID]
	if len(list) == 0 {
		return Entry{}, false
	}
	return list[len(list)-1], true
}

// Lookup returns the indexed system IDs matched by r, ascending.
func (x *Index) Lookup(r ranges.SystemRange) []int {
	if r.Empty() {
		return nil
	}
	lo, hi, bounded := r.Bounds()
	if !bounded {
		return x.Systems()
	}
	start, _ := slices.BinarySearch(x.systems, lo)
	end, found := slices.BinarySearch(x.systems, hi)
	if found {
		end++
	}
	if start >= end {
		return nil
	}
	return slices.Clone(x.systems[start:end])
}
