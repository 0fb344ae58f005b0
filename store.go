package flatview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/flatview/cache"
)

// Store loads collection buffers from a content-addressed cache.
//
// Buffers are keyed by the digest of their stored bytes, which may be
// zstd-compressed. Each digest is read, verified and loaded once; later
// calls return the same *Index. Concurrent Get calls for the same digest
// are deduplicated. Store is safe for concurrent use.
type Store struct {
	cache cache.Cache
	cfg   *config
	group singleflight.Group // zero value is valid

	mu     sync.RWMutex
	loaded map[digest.Digest]*Index
}

// NewStore creates a Store backed by c.
func NewStore(c cache.Cache, opts ...Option) (*Store, error) {
	if c == nil {
		return nil, errors.New("flatview: nil cache")
	}
	return &Store{
		cache:  c,
		cfg:    newConfig(opts),
		loaded: make(map[digest.Digest]*Index),
	}, nil
}

// Put verifies data, stores it and returns its digest.
//
// data may be zstd-compressed. It is loaded before being stored, so a
// buffer that Get would reject is never written.
func (s *Store) Put(data []byte) (digest.Digest, error) {
	idx, err := decode(data, s.cfg)
	if err != nil {
		return "", err
	}
	dgst := digest.FromBytes(data)
	if err := s.cache.Put(dgst, data); err != nil {
		return "", fmt.Errorf("flatview: store %s: %w", dgst, err)
	}
	s.remember(dgst, idx)
	s.cfg.log().Debug("stored buffer", "digest", dgst, "size", len(data), "referrables", idx.Len())
	return dgst, nil
}

// Get returns the index stored under dgst.
//
// ErrNotFound is returned when the cache has no such buffer, and
// ErrDigestMismatch when the cached bytes do not hash to dgst; the corrupt
// entry is then removed from the cache.
func (s *Store) Get(dgst digest.Digest) (*Index, error) {
	if idx, ok := s.lookup(dgst); ok {
		return idx, nil
	}

	v, err, shared := s.group.Do(string(dgst), func() (any, error) {
		if idx, ok := s.lookup(dgst); ok {
			return idx, nil
		}
		return s.load(dgst)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.cfg.log().Debug("shared load", "digest", dgst)
	}
	idx, _ := v.(*Index)
	return idx, nil
}

func (s *Store) load(dgst digest.Digest) (*Index, error) {
	if err := dgst.Validate(); err != nil {
		return nil, fmt.Errorf("flatview: invalid digest %q: %w", dgst, err)
	}
	data, ok := s.cache.Get(dgst)
	if !ok {
		s.cfg.log().Debug("store miss", "digest", dgst)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dgst)
	}
	if err := Verify(data, dgst); err != nil {
		s.cfg.log().Warn("corrupt cache entry", "digest", dgst, "error", err)
		_ = s.cache.Delete(dgst) //nolint:errcheck // best-effort eviction of corrupt entry
		return nil, err
	}
	idx, err := decode(data, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("flatview: load %s: %w", dgst, err)
	}
	s.remember(dgst, idx)
	s.cfg.log().Debug("store load", "digest", dgst, "size", len(data), "referrables", idx.Len())
	return idx, nil
}

// LoadAll loads every digest, returning indexes in the same order.
//
// Loads run concurrently, bounded by WithLoadConcurrency. The first error
// cancels the remaining loads and is returned.
func (s *Store) LoadAll(ctx context.Context, digests []digest.Digest) ([]*Index, error) {
	out := make([]*Index, len(digests))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.loadConcurrency)
	for i, dgst := range digests {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, err := s.Get(dgst)
			if err != nil {
				return err
			}
			out[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Forget drops the loaded index for dgst, keeping the cached bytes.
func (s *Store) Forget(dgst digest.Digest) {
	s.mu.Lock()
	delete(s.loaded, dgst)
	s.mu.Unlock()
}

// Delete removes dgst from the store and the underlying cache.
func (s *Store) Delete(dgst digest.Digest) error {
	s.Forget(dgst)
	return s.cache.Delete(dgst)
}

// Loaded returns the number of indexes currently held in memory.
func (s *Store) Loaded() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loaded)
}

func (s *Store) lookup(dgst digest.Digest) (*Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.loaded[dgst]
	return idx, ok
}

func (s *Store) remember(dgst digest.Digest, idx *Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loaded[dgst]; !ok {
		s.loaded[dgst] = idx
	}
}
