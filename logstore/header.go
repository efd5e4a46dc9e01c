package logstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/google/uuid"
)

// File layout: [header:64] followed by RecordCount fixed-size records.
//
// Header layout (little-endian):
//   [magic:8][version:4][nbod:4][count:8][flags:4][run:16][created:8][reserved:8][crc32:4]

const (
	// SchemaVersion is the only layout this package reads and writes.
	SchemaVersion = 1
	// HeaderSize is the size of the file header.
	HeaderSize = 64

	flagSealed = 1 << 0
)

var magic = []byte("SWARMLOG")

// Header describes a log file.
type Header struct {
	Version     uint32
	BodyCount   int
	RecordCount int
	Sealed      bool
	RunID       uuid.UUID
	CreatedAt   time.Time
}

// MarshalBinary returns the on-disk form of the header.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.encode(), nil
}

func (h *Header) encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], magic)
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.BodyCount))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.RecordCount))
	var flags uint32
	if h.Sealed {
		flags |= flagSealed
	}
	binary.LittleEndian.PutUint32(buf[24:28], flags)
	copy(buf[28:44], h.RunID[:])
	binary.LittleEndian.PutUint64(buf[44:52], uint64(h.CreatedAt.UnixNano()))
	binary.LittleEndian.PutUint32(buf[60:64], crc32.ChecksumIEEE(buf[:60]))
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: file shorter than header (%d bytes)", ErrFormat, len(buf))
	}
	if !bytes.Equal(buf[0:8], magic) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrFormat, buf[0:8])
	}
	if want, got := binary.LittleEndian.Uint32(buf[60:64]), crc32.ChecksumIEEE(buf[:60]); want != got {
		return Header{}, fmt.Errorf("%w: header checksum mismatch", ErrFormat)
	}
	h := Header{Version: binary.LittleEndian.Uint32(buf[8:12])}
	if h.Version != SchemaVersion {
		return Header{}, fmt.Errorf("%w: schema version %d (supported: %d)", ErrFormat, h.Version, SchemaVersion)
	}
	nbod := binary.LittleEndian.Uint32(buf[12:16])
	count := binary.LittleEndian.Uint64(buf[16:24])
	if int32(nbod) < 0 || int64(count) < 0 {
		return Header{}, fmt.Errorf("%w: body count %d, record count %d", ErrFormat, nbod, count)
	}
	h.BodyCount = int(nbod)
	h.RecordCount = int(count)
	h.Sealed = binary.LittleEndian.Uint32(buf[24:28])&flagSealed != 0
	copy(h.RunID[:], buf[28:44])
	h.CreatedAt = time.Unix(0, int64(binary.LittleEndian.Uint64(buf[44:52])))
	return h, nil
}
