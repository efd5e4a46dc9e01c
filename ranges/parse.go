package ranges

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Text syntax, shared by parsing and String:
//
//	ALL        Universal
//	v          Single(v)
//	a..b       Interval(a, b)
//	MIN..b     Interval(lowest, b)
//	a..MAX     Interval(a, highest)

const (
	allToken = "ALL"
	minToken = "MIN"
	maxToken = "MAX"
	sep      = ".."
)

// ParseSystems parses a system ID range.
func ParseSystems(s string) (SystemRange, error) {
	return parse(s, strconv.Atoi)
}

// ParseTimes parses a simulation time range.
func ParseTimes(s string) (TimeRange, error) {
	return parse(s, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

func parse[T cmp.Ordered](s string, conv func(string) (T, error)) (Range[T], error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range[T]{}, fmt.Errorf("ranges: empty range")
	}
	if strings.EqualFold(s, allToken) {
		return Universal[T](), nil
	}
	lowest, highest := limits[T]()
	value := func(v string) (T, error) {
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case minToken:
			return lowest, nil
		case maxToken:
			return highest, nil
		}
		ret, err := conv(strings.TrimSpace(v))
		if err != nil {
			return ret, fmt.Errorf("ranges: invalid value %q in %q: %w", v, s, err)
		}
		return ret, nil
	}
	first, last, isInterval := strings.Cut(s, sep)
	lo, err := value(first)
	if err != nil {
		return Range[T]{}, err
	}
	if !isInterval {
		return Single(lo), nil
	}
	hi, err := value(last)
	if err != nil {
		return Range[T]{}, err
	}
	return Interval(lo, hi), nil
}

// String formats r using the text syntax accepted by ParseSystems and
// ParseTimes; parsing the result yields r again. An interval spanning every
// value prints as MIN..MAX, not ALL.
func (r Range[T]) String() string {
	lowest, highest := limits[T]()
	switch r.kind {
	case KindSingle:
		return format(r.lo)
	case KindInterval:
		lo, hi := format(r.lo), format(r.hi)
		if r.lo == lowest {
			lo = minToken
		}
		if r.hi == highest {
			hi = maxToken
		}
		return lo + sep + hi
	}
	return allToken
}

func format[T cmp.Ordered](v T) string {
	if f, ok := any(v).(float64); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// limits returns the values MIN and MAX stand for.
func limits[T cmp.Ordered]() (lowest, highest T) {
	switch any(lowest).(type) {
	case int:
		return any(math.MinInt).(T), any(math.MaxInt).(T)
	case float64:
		return any(math.Inf(-1)).(T), any(math.Inf(1)).(T)
	}
	return lowest, highest
}
