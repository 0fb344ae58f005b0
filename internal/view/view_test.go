package view

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/flatview/internal/fb"
	"github.com/meigma/flatview/internal/testutil"
)

// twoSlotTable lays out a root table whose vtable declares two slots:
// slot 0 holds a uint64 and slot 1 is present in the vtable but zero.
//
//	0:  u32 root offset (12)
//	4:  vtable [size=8][table=12][slot0=4][slot1=0]
//	12: table  [soffset=8][u64 value]
func twoSlotTable(t *testing.T, value uint64) []byte {
	t.Helper()
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint32(buf[0:], 12)
	binary.LittleEndian.PutUint16(buf[4:], 8)
	binary.LittleEndian.PutUint16(buf[6:], 12)
	binary.LittleEndian.PutUint16(buf[8:], 4)
	binary.LittleEndian.PutUint16(buf[10:], 0)
	binary.LittleEndian.PutUint32(buf[12:], 8)
	binary.LittleEndian.PutUint64(buf[16:], value)
	return buf
}

func TestViewField(t *testing.T) {
	t.Parallel()

	buf := twoSlotTable(t, 42)
	v := Root(buf)
	require.True(t, v.Valid())
	assert.EqualValues(t, 12, v.Pos())

	t.Run("present field", func(t *testing.T) {
		t.Parallel()
		off, ok := v.Field(0)
		require.True(t, ok)
		assert.EqualValues(t, 16, off)
		assert.Equal(t, uint64(42), v.Uint64(off))
	})

	t.Run("zero slot is absent", func(t *testing.T) {
		t.Parallel()
		_, ok := v.Field(1)
		assert.False(t, ok)
	})

	t.Run("slot past vtable is absent", func(t *testing.T) {
		t.Parallel()
		_, ok := v.Field(2)
		assert.False(t, ok)
		_, ok = v.Field(100)
		assert.False(t, ok)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, uint64(42), v.Uint64Field(0, 7))
		assert.Equal(t, uint64(7), v.Uint64Field(1, 7))
		assert.Equal(t, int64(-1), v.Int64Field(2, -1))
		assert.Equal(t, uint32(9), v.Uint32Field(1, 9))
		_, ok := v.BytesField(1)
		assert.False(t, ok)
		_, ok = v.VectorField(2)
		assert.False(t, ok)
	})
}

func TestViewZeroValue(t *testing.T) {
	t.Parallel()
	var v View
	assert.False(t, v.Valid())
}

func TestViewRawReaders(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 32)
	binary.LittleEndian.PutUint16(buf[0:], 0xBEEF)
	binary.LittleEndian.PutUint32(buf[2:], 0xDEADBEEF)
	binary.LittleEndian.PutUint64(buf[6:], 0x0102030405060708)
	binary.LittleEndian.PutUint32(buf[14:], 0xFFFFFFFE)
	buf[18] = 1
	binary.LittleEndian.PutUint64(buf[19:], 0xFFFFFFFFFFFFFFFD)

	v := View{buf: buf}
	assert.Equal(t, uint16(0xBEEF), v.Uint16(0))
	assert.Equal(t, uint32(0xDEADBEEF), v.Uint32(2))
	assert.Equal(t, uint64(0x0102030405060708), v.Uint64(6))
	assert.Equal(t, int32(-2), v.Int32(14))
	assert.Equal(t, uint8(1), v.Uint8(18))
	assert.True(t, v.Bool(18))
	assert.Equal(t, int64(-3), v.Int64(19))
}

func TestViewIndirect(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[4:], 8)
	v := View{buf: buf}
	assert.EqualValues(t, 12, v.Indirect(4))
}

func TestViewMutateUint64Field(t *testing.T) {
	t.Parallel()

	buf := twoSlotTable(t, 42)
	v := Root(buf)

	assert.True(t, v.MutateUint64Field(0, 77))
	assert.Equal(t, uint64(77), v.Uint64Field(0, 0))

	before := append([]byte(nil), buf...)
	assert.False(t, v.MutateUint64Field(1, 5), "absent field has no storage")
	assert.False(t, v.MutateUint64Field(3, 5), "field outside vtable")
	assert.Equal(t, before, buf, "failed mutation must not touch the buffer")
}

func TestViewMatchesGeneratedAccessors(t *testing.T) {
	t.Parallel()

	buf := testutil.BuildCollection(t, "fixtures", 3, 1, 2)
	root := Root(buf)
	coll := fb.GetRootAsCollection(buf, 0)

	assert.Equal(t, coll.Version(), root.Uint32Field(0, 0))

	name, ok := root.BytesField(1)
	require.True(t, ok)
	assert.Equal(t, "fixtures", string(name))
	assert.Equal(t, coll.Name(), name)

	vec, ok := root.VectorField(2)
	require.True(t, ok)
	require.Equal(t, coll.ReferrablesLength(), vec.Len())

	var elem View
	var gen fb.Referrable
	for i := range vec.Len() {
		vec.At(i, &elem)
		require.True(t, coll.Referrables(&gen, i))
		assert.Equal(t, gen.Id(), elem.Uint64Field(0, 0), "element %d", i)
		assert.Equal(t, uint64(i+1), elem.Uint64Field(0, 0), "element %d", i)
	}
}

func TestViewUnnamedCollection(t *testing.T) {
	t.Parallel()

	buf := testutil.BuildCollection(t, "")
	root := Root(buf)
	_, ok := root.BytesField(1)
	assert.False(t, ok)

	vec, ok := root.VectorField(2)
	require.True(t, ok, "an empty vector is still present")
	assert.Equal(t, 0, vec.Len())
}
