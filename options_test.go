package flatview

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/flatview/internal/compress"
	"github.com/meigma/flatview/internal/testutil"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := newConfig(nil)
	assert.Equal(t, DefaultMaxSize, cfg.maxSize)
	assert.Equal(t, DefaultMaxDecoderMemory, cfg.maxDecoderMemory)
	assert.Equal(t, DefaultLoadConcurrency, cfg.loadConcurrency)
	assert.False(t, cfg.decoderLowmem)
	assert.NotNil(t, cfg.log())

	cfg = newConfig([]Option{
		WithMaxSize(0),
		WithLoadConcurrency(-1),
		WithDecoderConcurrency(-3),
		WithDecoderLowmem(true),
	})
	assert.Equal(t, DefaultMaxSize, cfg.maxSize)
	assert.Equal(t, DefaultLoadConcurrency, cfg.loadConcurrency)
	assert.Equal(t, 0, cfg.decoderConcurrency)
	assert.True(t, cfg.decoderLowmem)
}

func TestDecoderPoolCreatedOnDemand(t *testing.T) {
	t.Parallel()

	raw := testutil.BuildCollection(t, "lazy", 1, 2, 3)
	enc, err := compress.Encode(raw, zstd.SpeedFastest)
	require.NoError(t, err)

	cfg := newConfig(nil)
	_, err = decode(raw, cfg)
	require.NoError(t, err)
	assert.Nil(t, cfg.pool, "uncompressed input needs no decoder pool")

	_, err = decode(enc, cfg)
	require.NoError(t, err)
	pool := cfg.pool
	require.NotNil(t, pool)

	_, err = decode(enc, cfg)
	require.NoError(t, err)
	assert.Same(t, pool, cfg.pool, "pool is reused across decodes")
}

func TestStoreSharesDecoderPool(t *testing.T) {
	t.Parallel()

	c := testutil.NewMockCache()
	s, err := NewStore(c)
	require.NoError(t, err)

	for _, id := range []uint64{1, 2} {
		enc, err := compress.Encode(testutil.BuildCollection(t, "", id), zstd.SpeedFastest)
		require.NoError(t, err)
		_, err = s.Put(enc)
		require.NoError(t, err)
		if id == 1 {
			require.NotNil(t, s.cfg.pool)
		}
	}
	first := s.cfg.pool
	assert.Same(t, first, s.cfg.decoders())
}

func TestDecodeLowmem(t *testing.T) {
	t.Parallel()

	raw := testutil.BuildCollection(t, "lowmem", 7, 8, 9)
	enc, err := compress.Encode(raw, zstd.SpeedDefault)
	require.NoError(t, err)

	idx, err := Decode(bytes.NewReader(enc), WithDecoderLowmem(true), WithDecoderConcurrency(2))
	require.NoError(t, err)
	_, ok := idx.Lookup(8)
	assert.True(t, ok)
}
