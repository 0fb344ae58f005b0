package flatview

import "github.com/meigma/flatview/internal/view"

// Referrable is a read-only view of a referrable record.
//
// A Referrable aliases the index buffer and is only valid while the Index
// that produced it remains alive. The zero value reports ID 0 and Valid false.
type Referrable struct {
	t view.View
}

// ID returns the record id.
func (r Referrable) ID() uint64 {
	if !r.t.Valid() {
		return 0
	}
	return r.t.Uint64Field(fieldID, 0)
}

// Offset returns the absolute byte offset of the record's table in the
// index buffer.
func (r Referrable) Offset() uint32 {
	return uint32(r.t.Pos())
}

// Valid reports whether r refers to a record.
func (r Referrable) Valid() bool {
	return r.t.Valid()
}
