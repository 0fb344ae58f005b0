package verify

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/flatview/internal/fb"
	"github.com/meigma/flatview/internal/testutil"
	"github.com/meigma/flatview/internal/view"
)

func TestCollectionValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ids  []uint64
	}{
		{name: "empty", ids: nil},
		{name: "single", ids: []uint64{7}},
		{name: "zero id", ids: []uint64{0, 1}},
		{name: "duplicates", ids: []uint64{4, 4, 4, 9}},
		{name: "many", ids: []uint64{99, 1, 42, 20, 10}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			buf := testutil.BuildCollection(t, "valid", tc.ids...)
			stats, err := Collection(buf)
			require.NoError(t, err)
			assert.Equal(t, len(tc.ids), stats.Referrables)
			assert.Equal(t, len(tc.ids)+1, stats.Tables)
		})
	}
}

func TestCollectionUnnamed(t *testing.T) {
	t.Parallel()
	buf := testutil.BuildCollection(t, "", 1, 2)
	_, err := Collection(buf)
	assert.NoError(t, err)
}

func TestCollectionTruncated(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 7} {
		_, err := Collection(make([]byte, n))
		assert.ErrorIs(t, err, ErrTruncated, "size %d", n)
	}
}

func TestCollectionIdentifier(t *testing.T) {
	t.Parallel()

	buf := testutil.BuildCollection(t, "x", 1)
	copy(buf[4:8], "NOPE")
	_, err := Collection(buf)
	assert.ErrorIs(t, err, ErrIdentifier)
}

func TestCollectionUnsorted(t *testing.T) {
	t.Parallel()

	buf := testutil.BuildCollection(t, "x", 1, 2, 3)
	coll := fb.GetRootAsCollection(buf, 0)
	var r fb.Referrable
	require.True(t, coll.Referrables(&r, 0))
	require.True(t, r.MutateId(5))

	_, err := Collection(buf)
	assert.ErrorIs(t, err, ErrUnsorted)
}

func TestCollectionRootOutOfBounds(t *testing.T) {
	t.Parallel()

	buf := testutil.BuildCollection(t, "x", 1)
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(buf))&^3+64) //nolint:gosec // small buffer

	_, err := Collection(buf)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCollectionRootMisaligned(t *testing.T) {
	t.Parallel()

	buf := testutil.BuildCollection(t, "x", 1)
	root := binary.LittleEndian.Uint32(buf[0:])
	binary.LittleEndian.PutUint32(buf[0:], root+1)

	_, err := Collection(buf)
	assert.ErrorIs(t, err, ErrMisaligned)
}

func TestCollectionVectorCountOverflow(t *testing.T) {
	t.Parallel()

	buf := testutil.BuildCollection(t, "x", 1, 2)
	vec, ok := view.Root(buf).VectorField(2)
	require.True(t, ok)
	binary.LittleEndian.PutUint32(buf[vec.Start()-4:], 1<<30)

	_, err := Collection(buf)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCollectionElementOutOfBounds(t *testing.T) {
	t.Parallel()

	buf := testutil.BuildCollection(t, "x", 1, 2)
	vec, ok := view.Root(buf).VectorField(2)
	require.True(t, ok)
	binary.LittleEndian.PutUint32(buf[vec.Start():], 1<<20)

	_, err := Collection(buf)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCollectionDoesNotPanic(t *testing.T) {
	t.Parallel()

	// Flipping any single byte must produce an error or a valid buffer,
	// never a panic.
	base := testutil.BuildCollection(t, "fuzz", 1, 10, 20, 42, 99)
	for i := range base {
		for _, b := range []byte{0x00, 0x7f, 0xff} {
			buf := append([]byte(nil), base...)
			buf[i] = b
			assert.NotPanics(t, func() {
				_, _ = Collection(buf)
			}, "byte %d = %#x", i, b)
		}
	}
}

func FuzzCollection(f *testing.F) {
	f.Add(testutil.BuildCollection(f, "seed", 1, 2, 3))
	f.Add(testutil.BuildCollection(f, ""))
	f.Fuzz(func(t *testing.T, buf []byte) {
		_, _ = Collection(buf)
	})
}
