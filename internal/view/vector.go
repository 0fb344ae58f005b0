package view

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// Vector is a read-only view of a vector of table offsets.
//
// Each element holds an offset relative to its own position that locates a
// table. The element count is stored in the four bytes preceding the first
// element.
type Vector struct {
	buf   []byte
	start flatbuffers.UOffsetT
	n     flatbuffers.UOffsetT
}

// NewVector returns a Vector whose first element is at start.
func NewVector(buf []byte, start flatbuffers.UOffsetT) Vector {
	return Vector{
		buf:   buf,
		start: start,
		n:     flatbuffers.GetUOffsetT(buf[start-flatbuffers.SizeUOffsetT:]),
	}
}

// Len returns the number of elements.
func (vec Vector) Len() int {
	return int(vec.n)
}

// Count returns the number of elements as stored in the buffer.
func (vec Vector) Count() flatbuffers.UOffsetT {
	return vec.n
}

// Start returns the absolute offset of the first element.
func (vec Vector) Start() flatbuffers.UOffsetT {
	return vec.start
}

// Bytes returns the underlying buffer.
func (vec Vector) Bytes() []byte {
	return vec.buf
}

// Elem returns the absolute offset of the table referenced by element i.
func (vec Vector) Elem(i flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	slot := vec.start + i*flatbuffers.SizeUOffsetT
	return slot + flatbuffers.GetUOffsetT(vec.buf[slot:])
}

// At binds dst to the table referenced by element i.
func (vec Vector) At(i int, dst *View) {
	dst.Init(vec.buf, vec.Elem(flatbuffers.UOffsetT(i))) //nolint:gosec // callers index within Len
}
