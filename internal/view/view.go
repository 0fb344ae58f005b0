package view

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// vtableMetadata is the byte size of the two leading vtable fields:
// the vtable size and the table size.
const vtableMetadata = flatbuffers.VtableMetadataFields * flatbuffers.SizeVOffsetT

// View is a read-only view of a single table inside a FlatBuffers buffer.
//
// A View borrows its buffer. It never copies or retains anything beyond the
// slice header, so it is cheap to pass by value and to rebind with Init.
// The buffer must not be modified while any View over it is in use.
//
// Offsets outside the buffer are a caller contract violation and panic
// through the runtime's bounds checks. Use the verify package at ingestion
// time when the buffer is untrusted.
type View struct {
	buf    []byte
	pos    flatbuffers.UOffsetT
	vtable flatbuffers.UOffsetT
	vtSize flatbuffers.VOffsetT
}

// New returns a View bound to the table at pos.
func New(buf []byte, pos flatbuffers.UOffsetT) View {
	var v View
	v.Init(buf, pos)
	return v
}

// Root returns a View of the root table, located by the leading offset at
// the start of buf.
func Root(buf []byte) View {
	return New(buf, flatbuffers.GetUOffsetT(buf))
}

// Init binds the view to the table at pos, resolving its vtable.
func (v *View) Init(buf []byte, pos flatbuffers.UOffsetT) {
	v.buf = buf
	v.pos = pos
	v.vtable = flatbuffers.UOffsetT(flatbuffers.SOffsetT(pos) - flatbuffers.GetSOffsetT(buf[pos:]))
	v.vtSize = flatbuffers.GetVOffsetT(buf[v.vtable:])
}

// Bytes returns the underlying buffer.
func (v View) Bytes() []byte {
	return v.buf
}

// Pos returns the absolute offset of the table.
func (v View) Pos() flatbuffers.UOffsetT {
	return v.pos
}

// Valid reports whether the view has been bound to a buffer.
func (v View) Valid() bool {
	return v.buf != nil
}

// Slot converts a zero-based field index into its vtable byte offset.
func Slot(field int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(vtableMetadata + field*flatbuffers.SizeVOffsetT)
}

// Field returns the absolute offset of the given field.
//
// ok is false when the field is not present in this table, either because
// the vtable is too short to contain it or because its slot is zero. The
// caller should then use the schema default.
func (v View) Field(field int) (off flatbuffers.UOffsetT, ok bool) {
	slot := Slot(field)
	if slot >= v.vtSize {
		return 0, false
	}
	rel := flatbuffers.GetVOffsetT(v.buf[v.vtable+flatbuffers.UOffsetT(slot):])
	if rel == 0 {
		return 0, false
	}
	return v.pos + flatbuffers.UOffsetT(rel), true
}

// Indirect dereferences the relative offset stored at off.
func (v View) Indirect(off flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	return off + flatbuffers.GetUOffsetT(v.buf[off:])
}

// Uint8 decodes a uint8 at off.
func (v View) Uint8(off flatbuffers.UOffsetT) uint8 {
	return flatbuffers.GetUint8(v.buf[off:])
}

// Bool decodes a bool at off.
func (v View) Bool(off flatbuffers.UOffsetT) bool {
	return flatbuffers.GetBool(v.buf[off:])
}

// Uint16 decodes a little-endian uint16 at off.
func (v View) Uint16(off flatbuffers.UOffsetT) uint16 {
	return flatbuffers.GetUint16(v.buf[off:])
}

// Uint32 decodes a little-endian uint32 at off.
func (v View) Uint32(off flatbuffers.UOffsetT) uint32 {
	return flatbuffers.GetUint32(v.buf[off:])
}

// Int32 decodes a little-endian int32 at off.
func (v View) Int32(off flatbuffers.UOffsetT) int32 {
	return flatbuffers.GetInt32(v.buf[off:])
}

// Uint64 decodes a little-endian uint64 at off.
func (v View) Uint64(off flatbuffers.UOffsetT) uint64 {
	return flatbuffers.GetUint64(v.buf[off:])
}

// Int64 decodes a little-endian int64 at off.
func (v View) Int64(off flatbuffers.UOffsetT) int64 {
	return flatbuffers.GetInt64(v.buf[off:])
}

// Float64 decodes a little-endian float64 at off.
func (v View) Float64(off flatbuffers.UOffsetT) float64 {
	return flatbuffers.GetFloat64(v.buf[off:])
}

// Uint32Field returns the uint32 field, or def when it is absent.
func (v View) Uint32Field(field int, def uint32) uint32 {
	if off, ok := v.Field(field); ok {
		return v.Uint32(off)
	}
	return def
}

// Uint64Field returns the uint64 field, or def when it is absent.
func (v View) Uint64Field(field int, def uint64) uint64 {
	if off, ok := v.Field(field); ok {
		return v.Uint64(off)
	}
	return def
}

// Int64Field returns the int64 field, or def when it is absent.
func (v View) Int64Field(field int, def int64) int64 {
	if off, ok := v.Field(field); ok {
		return v.Int64(off)
	}
	return def
}

// BytesField returns the string or byte vector stored in field.
//
// The returned slice aliases the buffer and must be treated as immutable.
func (v View) BytesField(field int) ([]byte, bool) {
	off, ok := v.Field(field)
	if !ok {
		return nil, false
	}
	off = v.Indirect(off)
	n := flatbuffers.GetUOffsetT(v.buf[off:])
	start := off + flatbuffers.SizeUOffsetT
	return v.buf[start : start+n], true
}

// VectorField returns the vector of offsets stored in field.
func (v View) VectorField(field int) (Vector, bool) {
	off, ok := v.Field(field)
	if !ok {
		return Vector{}, false
	}
	return NewVector(v.buf, v.Indirect(off)+flatbuffers.SizeUOffsetT), true
}

// MutateUint64Field overwrites a uint64 field in place.
//
// Fields that are absent from the table have no storage and cannot be
// written; MutateUint64Field reports false for them and leaves the buffer
// untouched.
func (v View) MutateUint64Field(field int, n uint64) bool {
	off, ok := v.Field(field)
	if !ok {
		return false
	}
	flatbuffers.WriteUint64(v.buf[off:], n)
	return true
}
