package testutil

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/flatview/internal/encode"
)

// BuildCollection encodes a collection buffer holding one Referrable per id.
// Ids are sorted by the encoder (required for keyed lookup).
func BuildCollection(tb testing.TB, name string, ids ...uint64) []byte {
	tb.Helper()
	return encode.Collection(name, ids)
}

// RawVector hand-lays a buffer holding a vector of tables, each with a
// single uint64 field in slot 0, in the given order (not sorted).
//
// Layout: [u32 count][u32 rel]*n [shared vtable, 8 bytes][table, 12 bytes]*n.
// It returns the buffer and the absolute offset of the first element.
func RawVector(tb testing.TB, keys []uint64) (buf []byte, start flatbuffers.UOffsetT) {
	tb.Helper()

	n := flatbuffers.UOffsetT(len(keys)) //nolint:gosec // test sizes are small
	start = 4
	vtable := start + 4*n
	tables := vtable + 8
	buf = make([]byte, tables+12*n)

	binary.LittleEndian.PutUint32(buf[0:], uint32(n))

	binary.LittleEndian.PutUint16(buf[vtable:], 6)    // vtable size
	binary.LittleEndian.PutUint16(buf[vtable+2:], 12) // table size
	binary.LittleEndian.PutUint16(buf[vtable+4:], 4)  // slot 0

	for i, k := range keys {
		idx := flatbuffers.UOffsetT(i) //nolint:gosec // test sizes are small
		slot := start + 4*idx
		table := tables + 12*idx
		binary.LittleEndian.PutUint32(buf[slot:], uint32(table-slot))
		binary.LittleEndian.PutUint32(buf[table:], uint32(table-vtable))
		binary.LittleEndian.PutUint64(buf[table+4:], k)
	}
	return buf, start
}

// RawEmptyVector returns a buffer that ends immediately after a zero count.
// Any read past the count field panics.
func RawEmptyVector(tb testing.TB) (buf []byte, start flatbuffers.UOffsetT) {
	tb.Helper()
	return make([]byte, 4), 4
}

// MockCache implements a basic concurrency-safe cache for tests.
type MockCache struct {
	mu   sync.RWMutex
	data map[digest.Digest][]byte
	gets atomic.Int64
}

// NewMockCache constructs an empty in-memory cache.
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[digest.Digest][]byte)}
}

// Get retrieves data by digest.
func (c *MockCache) Get(dgst digest.Digest) ([]byte, bool) {
	c.gets.Add(1)
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.data[dgst]
	return data, ok
}

// Put stores data by digest.
func (c *MockCache) Put(dgst digest.Digest, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[dgst] = data
	return nil
}

// Delete removes data by digest.
func (c *MockCache) Delete(dgst digest.Digest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, dgst)
	return nil
}

// MaxBytes returns 0 (unlimited).
func (c *MockCache) MaxBytes() int64 { return 0 }

// SizeBytes returns the total size of stored data.
func (c *MockCache) SizeBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, d := range c.data {
		n += int64(len(d))
	}
	return n
}

// Prune is a no-op.
func (c *MockCache) Prune(int64) (int64, error) { return 0, nil }

// Gets returns the number of Get calls made so far.
func (c *MockCache) Gets() int64 {
	return c.gets.Load()
}
