package ranges

import (
	"math"
	"testing"
)

func TestRange_Contains(t *testing.T) {
	cases := []struct {
		name string
		r    SystemRange
		in   []int
		out  []int
	}{
		{name: "universal", r: Universal[int](), in: []int{math.MinInt, -1, 0, 7, math.MaxInt}},
		{name: "zero value", r: SystemRange{}, in: []int{0, 1, 1 << 40}},
		{name: "single", r: Single(2), in: []int{2}, out: []int{1, 3, -2}},
		{name: "interval", r: Interval(1, 3), in: []int{1, 2, 3}, out: []int{0, 4}},
		{name: "degenerate interval", r: Interval(5, 5), in: []int{5}, out: []int{4, 6}},
		{name: "empty interval", r: Interval(4, 3), out: []int{2, 3, 4, 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, x := range tc.in {
				if !tc.r.Contains(x) {
					t.Errorf("%v should contain %d", tc.r, x)
				}
			}
			for _, x := range tc.out {
				if tc.r.Contains(x) {
					t.Errorf("%v should not contain %d", tc.r, x)
				}
			}
		})
	}
}

func TestRange_EmptyInterval(t *testing.T) {
	for lo := -3; lo < 3; lo++ {
		for hi := lo + 1; hi < 5; hi++ {
			r := Interval(hi+1, lo)
			if !r.Empty() {
				t.Fatalf("Interval(%d, %d) should be empty", hi+1, lo)
			}
			for x := lo - 2; x <= hi+2; x++ {
				if r.Contains(x) {
					t.Fatalf("Interval(%d, %d) contains %d", hi+1, lo, x)
				}
			}
		}
	}
	if Universal[int]().Empty() || Single(0).Empty() || Interval(0, 0).Empty() {
		t.Fatalf("non-empty range reported empty")
	}
	if !Interval(math.NaN(), 1).Empty() {
		t.Fatalf("NaN bound should give an empty time range")
	}
}

func TestRange_Bounds(t *testing.T) {
	if _, _, bounded := Universal[float64]().Bounds(); bounded {
		t.Fatalf("universal range reported bounded")
	}
	lo, hi, bounded := Interval(2.5, 7.0).Bounds()
	if !bounded || lo != 2.5 || hi != 7 {
		t.Fatalf("got %v %v %v", lo, hi, bounded)
	}
	lo, hi, _ = Single(3.0).Bounds()
	if lo != 3 || hi != 3 {
		t.Fatalf("single bounds %v %v", lo, hi)
	}
}

func TestParseSystems(t *testing.T) {
	cases := []struct {
		in   string
		want SystemRange
		text string
	}{
		{in: "ALL", want: Universal[int](), text: "ALL"},
		{in: "all", want: Universal[int](), text: "ALL"},
		{in: "42", want: Single(42), text: "42"},
		{in: " 1..3 ", want: Interval(1, 3), text: "1..3"},
		{in: "MIN..10", want: Interval(math.MinInt, 10), text: "MIN..10"},
		{in: "10..MAX", want: Interval(10, math.MaxInt), text: "10..MAX"},
		{in: "MIN..MAX", want: Interval(math.MinInt, math.MaxInt), text: "MIN..MAX"},
		{in: "5..2", want: Interval(5, 2), text: "5..2"},
	}
	for _, tc := range cases {
		got, err := ParseSystems(tc.in)
		if err != nil {
			t.Fatalf("ParseSystems(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseSystems(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
		if got.String() != tc.text {
			t.Errorf("String() = %q, want %q", got.String(), tc.text)
		}
		again, err := ParseSystems(got.String())
		if err != nil || again != got || again.Kind() != got.Kind() {
			t.Errorf("%q did not survive String: %#v, %v", tc.in, again, err)
		}
	}
	for _, bad := range []string{"", "x", "1..", "..2", "1..b", "1.5"} {
		if _, err := ParseSystems(bad); err == nil {
			t.Errorf("ParseSystems(%q) expected error", bad)
		}
	}
}

func TestParseTimes(t *testing.T) {
	r, err := ParseTimes("MIN..100.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !r.Contains(math.Inf(-1)) || !r.Contains(100.5) || r.Contains(100.6) {
		t.Fatalf("unexpected range %v", r)
	}
	for _, text := range []string{"ALL", "MIN..MAX", "0.25", "1e+06..MAX", "-3.5..2"} {
		r, err := ParseTimes(text)
		if err != nil {
			t.Fatalf("ParseTimes(%q): %v", text, err)
		}
		again, err := ParseTimes(r.String())
		if err != nil || again != r {
			t.Errorf("%q did not survive String: %q -> %#v, %v", text, r.String(), again, err)
		}
	}
}
