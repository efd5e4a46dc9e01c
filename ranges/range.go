// Package ranges provides the predicate used by every query to select
// system IDs (and, for scans, simulation times).
//
// A Range is one of three closed variants:
//
//	Universal()        matches everything
//	Single(v)          matches exactly v
//	Interval(lo, hi)   matches lo <= x <= hi; empty when lo > hi
//
// Range values are immutable and safe to copy and share.
package ranges

import "cmp"

// Kind identifies the Range variant.
type Kind uint8

const (
	KindUniversal Kind = iota
	KindSingle
	KindInterval
)

func (k Kind) String() string {
	switch k {
	case KindUniversal:
		return "universal"
	case KindSingle:
		return "single"
	case KindInterval:
		return "interval"
	}
	return "unknown"
}

// Range is a predicate over ordered values. The zero value is Universal.
type Range[T cmp.Ordered] struct {
	kind   Kind
	lo, hi T
}

// SystemRange selects system IDs.
type SystemRange = Range[int]

// TimeRange selects simulation times.
type TimeRange = Range[float64]

// Universal returns a range matching every value.
func Universal[T cmp.Ordered]() Range[T] {
	return Range[T]{kind: KindUniversal}
}

// Single returns a range matching exactly v.
func Single[T cmp.Ordered](v T) Range[T] {
	return Range[T]{kind: KindSingle, lo: v, hi: v}
}

// Interval returns a range matching lo <= x <= hi. With lo > hi the range
// is empty; this is not an error.
func Interval[T cmp.Ordered](lo, hi T) Range[T] {
	return Range[T]{kind: KindInterval, lo: lo, hi: hi}
}

// Kind returns the variant of r.
func (r Range[T]) Kind() Kind { return r.kind }

// Contains reports whether x satisfies r.
func (r Range[T]) Contains(x T) bool {
	switch r.kind {
	case KindSingle:
		return x == r.lo
	case KindInterval:
		return r.lo <= x && x <= r.hi
	default:
		return true
	}
}

// Bounds returns the inclusive bounds of r; bounded is false for Universal.
func (r Range[T]) Bounds() (lo, hi T, bounded bool) {
	if r.kind == KindUniversal {
		return lo, hi, false
	}
	return r.lo, r.hi, true
}

// Empty reports whether r can match nothing.
func (r Range[T]) Empty() bool {
	return r.kind == KindInterval && !(r.lo <= r.hi)
}
