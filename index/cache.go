package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/minio/highwayhash"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/bintly"
)

// cacheVersion changes whenever the encoded layout changes.
const cacheVersion = 1

// ErrCacheMiss is returned by LoadCache when no usable cache exists at the
// URL: missing, unreadable, or built for a different log.
var ErrCacheMiss = errors.New("index: cache miss")

var hashKey = []byte("SWARMDB-INDEX-CACHE-FINGERPRINT!")

// Fingerprint hashes the given parts into the identity a cache is bound to.
func Fingerprint(parts ...[]byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	for _, part := range parts {
		if _, err = h.Write(part); err != nil {
			return 0, err
		}
	}
	return h.Sum64(), nil
}

// cached is the persisted form of an index.
type cached struct {
	fingerprint uint64
	index       *Index
}

// EncodeBinary encodes the index to a bintly stream.
func (c *cached) EncodeBinary(stream *bintly.Writer) error {
	x := c.index
	stream.Int(cacheVersion)
	stream.Uint64(c.fingerprint)
	stream.Int(x.records)
	stream.Ints(x.systems)
	for _, id := range x.systems {
		list := x.entries[id]
		offsets := make([]int, len(list))
		times := make([]float64, len(list))
		for i, e := range list {
			offsets[i] = e.Offset
			times[i] = e.Time
		}
		stream.Ints(offsets)
		stream.Float64s(times)
	}
	return nil
}

// DecodeBinary decodes the index from a bintly stream.
func (c *cached) DecodeBinary(stream *bintly.Reader) error {
	var version int
	stream.Int(&version)
	if version != cacheVersion {
		return fmt.Errorf("cache version %d", version)
	}
	stream.Uint64(&c.fingerprint)
	x := &Index{entries: make(map[int][]Entry)}
	stream.Int(&x.records)
	stream.Ints(&x.systems)
	for _, id := range x.systems {
		var offsets []int
		var times []float64
		stream.Ints(&offsets)
		stream.Float64s(&times)
		if len(offsets) != len(times) {
			return fmt.Errorf("system %d: %d offsets, %d times", id, len(offsets), len(times))
		}
		list := make([]Entry, len(offsets))
		for i := range offsets {
			list[i] = Entry{Offset: offsets[i], Time: times[i]}
		}
		x.entries[id] = list
	}
	c.index = x
	return nil
}

// validate checks the decoded index could have come from Build: every
// record offset belongs to exactly one entry.
func (x *Index) validate() error {
	total := 0
	for _, id := range x.systems {
		total += len(x.entries[id])
	}
	if total != x.records || len(x.entries) != len(x.systems) {
		return fmt.Errorf("%d entries for %d records", total, x.records)
	}
	seen := make([]bool, x.records)
	for i, id := range x.systems {
		if i > 0 && x.systems[i-1] >= id {
			return fmt.Errorf("systems out of order at %d", id)
		}
		list := x.entries[id]
		if len(list) == 0 {
			return fmt.Errorf("system %d has no entries", id)
		}
		for j, e := range list {
			if e.Offset < 0 || e.Offset >= x.records {
				return fmt.Errorf("system %d: offset %d outside %d records", id, e.Offset, x.records)
			}
			if seen[e.Offset] {
				return fmt.Errorf("system %d: offset %d indexed twice", id, e.Offset)
			}
			seen[e.Offset] = true
			if j > 0 && byTime(list[j-1], e) > 0 {
				return fmt.Errorf("system %d: entries out of time order", id)
			}
		}
	}
	return nil
}

// SaveCache writes idx to URL, bound to fingerprint.
func SaveCache(ctx context.Context, URL string, fingerprint uint64, idx *Index) error {
	writers := bintly.NewWriters()
	writer := writers.Get()
	defer writers.Put(writer)
	if err := (&cached{fingerprint: fingerprint, index: idx}).EncodeBinary(writer); err != nil {
		return fmt.Errorf("index: encode cache: %w", err)
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	defer encoder.Close()
	data := encoder.EncodeAll(writer.Bytes(), nil)

	fs := afs.New()
	if ok, _ := fs.Exists(ctx, URL); ok {
		_ = fs.Delete(ctx, URL)
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("index: upload cache %s: %w", URL, err)
	}
	return nil
}

// LoadCache reads an index saved by SaveCache. Anything short of a valid
// cache for fingerprint yields an error wrapping ErrCacheMiss.
func LoadCache(ctx context.Context, URL string, fingerprint uint64) (idx *Index, err error) {
	fs := afs.New()
	if ok, _ := fs.Exists(ctx, URL); !ok {
		return nil, fmt.Errorf("%w: %s does not exist", ErrCacheMiss, URL)
	}
	compressed, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %v", ErrCacheMiss, URL, err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()
	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s: %v", ErrCacheMiss, URL, err)
	}

	// bintly panics on truncated input
	defer func() {
		if r := recover(); r != nil {
			idx, err = nil, fmt.Errorf("%w: decode %s: %v", ErrCacheMiss, URL, r)
		}
	}()
	readers := bintly.NewReaders()
	reader := readers.Get()
	defer readers.Put(reader)
	if err := reader.FromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCacheMiss, URL, err)
	}
	c := &cached{}
	if err := c.DecodeBinary(reader); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCacheMiss, URL, err)
	}
	if c.fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: %s belongs to another log", ErrCacheMiss, URL)
	}
	if err := c.index.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheMiss, URL, err)
	}
	return c.index, nil
}
