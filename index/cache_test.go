package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, keys(2, 5, 1, 0, 2, 1, 1, 3, 8, 0))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fp, err := Fingerprint([]byte("header"), []byte{1, 2})
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	URL := filepath.Join(t.TempDir(), "sample.swidx")
	if err := SaveCache(ctx, URL, fp, idx); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadCache(ctx, URL, fp)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded.Systems(), idx.Systems()) || loaded.RecordCount() != idx.RecordCount() {
		t.Fatalf("loaded %v/%d, want %v/%d", loaded.Systems(), loaded.RecordCount(), idx.Systems(), idx.RecordCount())
	}
	for _, id := range idx.Systems() {
		if !reflect.DeepEqual(loaded.Entries(id), idx.Entries(id)) {
			t.Fatalf("system %d: %v, want %v", id, loaded.Entries(id), idx.Entries(id))
		}
	}
	// overwrite in place
	if err := SaveCache(ctx, URL, fp, idx); err != nil {
		t.Fatalf("second save: %v", err)
	}
}

func TestCache_Miss(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, keys(1, 0, 1, 1))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	dir := t.TempDir()
	saved := filepath.Join(dir, "saved.swidx")
	if err := SaveCache(ctx, saved, 42, idx); err != nil {
		t.Fatalf("save: %v", err)
	}
	garbage := filepath.Join(dir, "garbage.swidx")
	if err := os.WriteFile(garbage, []byte("not a cache"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		name        string
		URL         string
		fingerprint uint64
	}{
		{name: "missing", URL: filepath.Join(dir, "missing.swidx"), fingerprint: 42},
		{name: "stale fingerprint", URL: saved, fingerprint: 43},
		{name: "garbage", URL: garbage, fingerprint: 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LoadCache(ctx, tc.URL, tc.fingerprint)
			if got != nil || !errors.Is(err, ErrCacheMiss) {
				t.Fatalf("expected ErrCacheMiss, got %v, %v", got, err)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a, _ := Fingerprint([]byte("abc"))
	b, _ := Fingerprint([]byte("abc"))
	c, _ := Fingerprint([]byte("abd"))
	if a != b {
		t.Fatalf("fingerprint not deterministic")
	}
	if a == c {
		t.Fatalf("fingerprint ignores content")
	}
}

func TestIndex_Validate(t *testing.T) {
	bad := &Index{records: 2, systems: []int{1}, entries: map[int][]Entry{1: {{Offset: 0, Time: 5}, {Offset: 1, Time: 1}}}}
	if err := bad.validate(); err == nil {
		t.Fatalf("expected validation error for unordered entries")
	}
	bad = &Index{records: 3, systems: []int{1}, entries: map[int][]Entry{1: {{Offset: 0}, {Offset: 1}}}}
	if err := bad.validate(); err == nil {
		t.Fatalf("expected validation error for missing records")
	}
	bad = &Index{records: 2, systems: []int{1, 2}, entries: map[int][]Entry{1: {{Offset: 0}}, 2: {{Offset: 0}}}}
	if err := bad.validate(); err == nil {
		t.Fatalf("expected validation error for an offset shared by two systems")
	}
	good := &Index{records: 2, systems: []int{1, 2}, entries: map[int][]Entry{1: {{Offset: 1}}, 2: {{Offset: 0}}}}
	if err := good.validate(); err != nil {
		t.Fatalf("valid index rejected: %v", err)
	}
}
