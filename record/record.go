// Package record defines a single logged snapshot of an N-body system and
// its fixed-width binary encoding.
package record

// Body is the state of one body at the time of a snapshot.
type Body struct {
	Pos  [3]float64
	Vel  [3]float64
	Mass float64
}

// Record is an immutable snapshot of one system.
//
// Bodies are kept in logged order; body 0 is the reference body (typically
// the central star).
type Record struct {
	SystemID int
	Time     float64
	EventID  EventID
	Flags    int32
	Bodies   []Body
}

// NumBodies returns the number of bodies in the snapshot.
func (r *Record) NumBodies() int {
	return len(r.Bodies)
}

// Body returns the i-th body and whether it exists.
func (r *Record) Body(i int) (Body, bool) {
	if i < 0 || i >= len(r.Bodies) {
		return Body{}, false
	}
	return r.Bodies[i], true
}

// Key is the part of a record needed to place it in an index.
type Key struct {
	SystemID  int
	Time      float64
	EventID   EventID
	// BodyCount is as declared by the record and may be invalid.
	BodyCount int
}

// Key returns the index key of the record.
func (r *Record) Key() Key {
	return Key{SystemID: r.SystemID, Time: r.Time, EventID: r.EventID, BodyCount: len(r.Bodies)}
}
