// Package cache defines content-addressed storage for collection buffers.
package cache

import "github.com/opencontainers/go-digest"

// Cache stores collection buffers by content digest.
//
// Keys are digests of the stored bytes. Callers that need integrity
// guarantees verify content against the key after Get; implementations are
// not required to.
//
// Implementations should handle their own size limits and eviction policies.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the buffer stored under dgst.
	// Returns nil, false if the buffer is not cached.
	Get(dgst digest.Digest) ([]byte, bool)

	// Put stores data under dgst. Storing an existing digest is a no-op.
	Put(dgst digest.Digest, data []byte) error

	// Delete removes the buffer stored under dgst.
	// Implementations should treat missing entries as a no-op.
	Delete(dgst digest.Digest) error

	// MaxBytes returns the configured cache size limit (0 = unlimited).
	MaxBytes() int64

	// SizeBytes returns the current cache size in bytes.
	SizeBytes() int64

	// Prune removes cached entries until the cache is at or below targetBytes.
	// Returns the number of bytes freed.
	Prune(targetBytes int64) (int64, error)
}
