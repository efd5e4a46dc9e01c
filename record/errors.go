package record

import "errors"

var (
	// ErrCorruptRecord indicates the encoded bytes of a record are inconsistent
	// with its declared body count or checksum.
	ErrCorruptRecord = errors.New("record: corrupt record")

	// ErrInvalidRecord is returned when a record cannot be encoded.
	ErrInvalidRecord = errors.New("record: invalid record")
)
