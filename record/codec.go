package record

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// Record layout (little-endian):
//   [event:4][system:4][time:8][nbod:4][flags:4] nbod*[x y z vx vy vz mass:8 each] [crc32:4]
// The checksum covers every preceding byte of the record.

const (
	// HeaderSize is the size of the fixed prefix preceding the bodies.
	HeaderSize = 24
	// BodySize is the encoded size of one body.
	BodySize = 7 * 8
	// TrailerSize is the size of the checksum.
	TrailerSize = 4
)

// Size returns the encoded size of a record holding nbod bodies.
func Size(nbod int) int {
	return HeaderSize + nbod*BodySize + TrailerSize
}

// Encode returns the binary form of r.
func Encode(r *Record) ([]byte, error) {
	return AppendEncode(make([]byte, 0, Size(len(r.Bodies))), r)
}

// AppendEncode appends the binary form of r to dst.
func AppendEncode(dst []byte, r *Record) ([]byte, error) {
	if r.SystemID < 0 || r.SystemID > math.MaxInt32 {
		return dst, fmt.Errorf("%w: system id %d out of range", ErrInvalidRecord, r.SystemID)
	}
	start := len(dst)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.EventID))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.SystemID))
	dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(r.Time))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(r.Bodies)))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.Flags))
	for i := range r.Bodies {
		b := &r.Bodies[i]
		for _, v := range [...]float64{b.Pos[0], b.Pos[1], b.Pos[2], b.Vel[0], b.Vel[1], b.Vel[2], b.Mass} {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
	}
	crc := crc32.ChecksumIEEE(dst[start:])
	return binary.LittleEndian.AppendUint32(dst, crc), nil
}

// DecodeKey reads the record prefix without touching the bodies or the
// checksum. Only a negative system id is rejected here; a bad body count
// is left for Decode.
func DecodeKey(b []byte) (Key, error) {
	if len(b) < HeaderSize {
		return Key{}, fmt.Errorf("%w: %d bytes is shorter than the record header", ErrCorruptRecord, len(b))
	}
	sys := int32(binary.LittleEndian.Uint32(b[4:8]))
	if sys < 0 {
		return Key{}, fmt.Errorf("%w: negative system id %d", ErrCorruptRecord, sys)
	}
	nbod := int32(binary.LittleEndian.Uint32(b[16:20]))
	return Key{
		EventID:   EventID(int32(binary.LittleEndian.Uint32(b[0:4]))),
		SystemID:  int(sys),
		Time:      math.Float64frombits(binary.LittleEndian.Uint64(b[8:16])),
		BodyCount: int(nbod),
	}, nil
}

// Decode is the exact inverse of Encode. It never retains b.
func Decode(b []byte) (Record, error) {
	key, err := DecodeKey(b)
	if err != nil {
		return Record{}, err
	}
	if key.BodyCount < 0 {
		return Record{}, fmt.Errorf("%w: negative body count %d", ErrCorruptRecord, key.BodyCount)
	}
	if want := Size(key.BodyCount); len(b) != want {
		return Record{}, fmt.Errorf("%w: %d bytes for %d bodies, want %d", ErrCorruptRecord, len(b), key.BodyCount, want)
	}
	end := len(b) - TrailerSize
	if want, got := binary.LittleEndian.Uint32(b[end:]), crc32.ChecksumIEEE(b[:end]); want != got {
		return Record{}, fmt.Errorf("%w: checksum mismatch (system %d, time %g)", ErrCorruptRecord, key.SystemID, key.Time)
	}
	r := Record{
		SystemID: key.SystemID,
		Time:     key.Time,
		EventID:  key.EventID,
		Flags:    int32(binary.LittleEndian.Uint32(b[20:24])),
		Bodies:   make([]Body, key.BodyCount),
	}
	off := HeaderSize
	for i := range r.Bodies {
		var v [7]float64
		for j := range v {
			v[j] = math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
			off += 8
		}
		r.Bodies[i] = Body{Pos: [3]float64{v[0], v[1], v[2]}, Vel: [3]float64{v[3], v[4], v[5]}, Mass: v[6]}
	}
	return r, nil
}
