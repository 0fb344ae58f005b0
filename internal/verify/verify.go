// Package verify checks collection buffers before they are trusted.
//
// Readers in the view and lookup packages assume a well-formed buffer and
// panic on out-of-range offsets. Verification runs once, where buffers enter
// the process, and is the only place bounds and key order are checked.
package verify

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/meigma/flatview/internal/fb"
	"github.com/meigma/flatview/internal/view"
)

// Sentinel errors returned (wrapped) by Collection.
var (
	// ErrTruncated is returned when the buffer is too short to hold a root.
	ErrTruncated = errors.New("verify: buffer truncated")

	// ErrIdentifier is returned when the file identifier does not match.
	ErrIdentifier = errors.New("verify: file identifier mismatch")

	// ErrOutOfBounds is returned when an offset points outside the buffer.
	ErrOutOfBounds = errors.New("verify: offset out of bounds")

	// ErrMisaligned is returned when a table, vtable or vector is not aligned.
	ErrMisaligned = errors.New("verify: misaligned offset")

	// ErrUnsorted is returned when referrables are not in ascending id order.
	ErrUnsorted = errors.New("verify: referrables not sorted by id")
)

// Schema field indexes.
const (
	fieldVersion     = 0
	fieldName        = 1
	fieldReferrables = 2
	fieldID          = 0
)

// minSize covers the root offset and the file identifier.
const minSize = flatbuffers.SizeUOffsetT + 4

// Stats summarizes a verified buffer.
type Stats struct {
	Tables      int
	Referrables int
}

// Collection verifies buf as a Collection buffer.
func Collection(buf []byte) (Stats, error) {
	v := verifier{buf: buf, size: uint64(len(buf))}
	return v.collection()
}

type verifier struct {
	buf   []byte
	size  uint64
	stats Stats
}

func (v *verifier) collection() (Stats, error) {
	if v.size < minSize {
		return v.stats, fmt.Errorf("%w: %d bytes", ErrTruncated, v.size)
	}
	if !fb.CollectionBufferHasIdentifier(v.buf) {
		return v.stats, fmt.Errorf("%w: got %q", ErrIdentifier, v.buf[4:8])
	}

	rootPos := uint64(flatbuffers.GetUOffsetT(v.buf))
	root, err := v.table(rootPos)
	if err != nil {
		return v.stats, fmt.Errorf("root: %w", err)
	}
	if err := v.scalar(root, fieldVersion, flatbuffers.SizeUint32); err != nil {
		return v.stats, fmt.Errorf("version: %w", err)
	}
	if err := v.str(root, fieldName); err != nil {
		return v.stats, fmt.Errorf("name: %w", err)
	}
	if err := v.referrables(root); err != nil {
		return v.stats, fmt.Errorf("referrables: %w", err)
	}
	return v.stats, nil
}

// table checks the table at pos and its vtable, returning a bound view.
func (v *verifier) table(pos uint64) (view.View, error) {
	if pos%flatbuffers.SizeUOffsetT != 0 {
		return view.View{}, fmt.Errorf("%w: table at %d", ErrMisaligned, pos)
	}
	if err := v.within(pos, flatbuffers.SizeSOffsetT); err != nil {
		return view.View{}, err
	}
	vtable := int64(pos) - int64(flatbuffers.GetSOffsetT(v.buf[pos:])) //nolint:gosec // pos < len(buf)
	if vtable < 0 {
		return view.View{}, fmt.Errorf("%w: vtable at %d", ErrOutOfBounds, vtable)
	}
	vt := uint64(vtable)
	if vt%flatbuffers.SizeVOffsetT != 0 {
		return view.View{}, fmt.Errorf("%w: vtable at %d", ErrMisaligned, vt)
	}
	if err := v.within(vt, 2*flatbuffers.SizeVOffsetT); err != nil {
		return view.View{}, err
	}
	vtSize := uint64(flatbuffers.GetVOffsetT(v.buf[vt:]))
	if vtSize < 2*flatbuffers.SizeVOffsetT || vtSize%flatbuffers.SizeVOffsetT != 0 {
		return view.View{}, fmt.Errorf("%w: vtable size %d", ErrMisaligned, vtSize)
	}
	if err := v.within(vt, vtSize); err != nil {
		return view.View{}, err
	}
	tableSize := uint64(flatbuffers.GetVOffsetT(v.buf[vt+flatbuffers.SizeVOffsetT:]))
	if err := v.within(pos, tableSize); err != nil {
		return view.View{}, err
	}
	v.stats.Tables++
	return view.New(v.buf, flatbuffers.UOffsetT(pos)), nil
}

// scalar checks that an optional fixed-width field fits in the buffer.
func (v *verifier) scalar(t view.View, field int, width uint64) error {
	off, ok := t.Field(field)
	if !ok {
		return nil
	}
	return v.within(uint64(off), width)
}

// str checks an optional string field, including its terminator.
func (v *verifier) str(t view.View, field int) error {
	start, n, ok, err := v.vector(t, field, 1)
	if err != nil || !ok {
		return err
	}
	return v.within(start, n+1)
}

// vector checks an optional vector field whose elements are width bytes and
// returns the offset of its first element and its length.
func (v *verifier) vector(t view.View, field int, width uint64) (start, n uint64, ok bool, err error) {
	off, ok := t.Field(field)
	if !ok {
		return 0, 0, false, nil
	}
	if err := v.within(uint64(off), flatbuffers.SizeUOffsetT); err != nil {
		return 0, 0, false, err
	}
	pos := uint64(off) + uint64(flatbuffers.GetUOffsetT(v.buf[off:]))
	if pos%flatbuffers.SizeUOffsetT != 0 {
		return 0, 0, false, fmt.Errorf("%w: vector at %d", ErrMisaligned, pos)
	}
	if err := v.within(pos, flatbuffers.SizeUOffsetT); err != nil {
		return 0, 0, false, err
	}
	n = uint64(flatbuffers.GetUOffsetT(v.buf[pos:]))
	start = pos + flatbuffers.SizeUOffsetT
	if err := v.within(start, n*width); err != nil {
		return 0, 0, false, err
	}
	return start, n, true, nil
}

func (v *verifier) referrables(root view.View) error {
	start, n, ok, err := v.vector(root, fieldReferrables, flatbuffers.SizeUOffsetT)
	if err != nil || !ok {
		return err
	}

	var prev uint64
	for i := range n {
		slot := start + i*flatbuffers.SizeUOffsetT
		t, err := v.table(slot + uint64(flatbuffers.GetUOffsetT(v.buf[slot:])))
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if err := v.scalar(t, fieldID, flatbuffers.SizeUint64); err != nil {
			return fmt.Errorf("element %d id: %w", i, err)
		}
		id := t.Uint64Field(fieldID, 0)
		if i > 0 && id < prev {
			return fmt.Errorf("%w: element %d id %d follows %d", ErrUnsorted, i, id, prev)
		}
		prev = id
		v.stats.Referrables++
	}
	return nil
}

// within reports whether [off, off+n) lies inside the buffer.
func (v *verifier) within(off, n uint64) error {
	if off > v.size || n > v.size-off {
		return fmt.Errorf("%w: [%d, +%d) in %d bytes", ErrOutOfBounds, off, n, v.size)
	}
	return nil
}
