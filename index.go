package flatview

import (
	_ "crypto/sha256" // registers digest.SHA256
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/flatview/internal/compress"
	"github.com/meigma/flatview/internal/fb"
	"github.com/meigma/flatview/internal/lookup"
	"github.com/meigma/flatview/internal/sizing"
	"github.com/meigma/flatview/internal/verify"
	"github.com/meigma/flatview/internal/view"
)

// Collection and Referrable field indexes, in schema order.
const (
	fieldVersion     = 0
	fieldName        = 1
	fieldReferrables = 2

	fieldID = 0
)

// byID searches referrables by id. An absent id field reads as the schema
// default, 0.
var byID = lookup.Ordered(func(t *view.View) uint64 {
	return t.Uint64Field(fieldID, 0)
})

// Index provides keyed access to a collection buffer.
//
// Index is backed by the serialized FlatBuffers bytes and provides O(log n)
// lookups by id. Referrables are sorted by id, so iteration order is id order.
//
// Accessors return read-only Referrable values that alias the buffer. An
// Index is safe for concurrent use as long as the buffer is not modified.
type Index struct {
	data []byte
	root view.View
	refs view.Vector

	digestOnce sync.Once
	digest     digest.Digest
}

// Load parses a FlatBuffers-encoded collection buffer.
//
// The provided data is retained by the index; callers must not modify it
// after calling Load. Unless WithSkipVerify is set, the buffer is verified
// first and ErrInvalid is returned for malformed input.
func Load(data []byte, opts ...Option) (*Index, error) {
	return load(data, newConfig(opts))
}

// Decode reads a collection buffer from r and loads it.
//
// zstd-framed input is decompressed transparently. Both the raw and the
// decompressed size are bounded by WithMaxSize.
func Decode(r io.Reader, opts ...Option) (*Index, error) {
	cfg := newConfig(opts)
	data, err := sizing.ReadAllWithLimit(r, cfg.limit(), ErrTooLarge)
	if err != nil {
		return nil, err
	}
	return decode(data, cfg)
}

// decode decompresses data when it is zstd-framed, then loads it.
func decode(data []byte, cfg *config) (*Index, error) {
	if compress.IsZstd(data) {
		raw, err := cfg.decoders().DecodeAll(data, cfg.limit(), ErrTooLarge)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
		}
		cfg.log().Debug("decompressed buffer",
			"compressed", len(data),
			"size", len(raw))
		data = raw
	}
	return load(data, cfg)
}

func load(data []byte, cfg *config) (idx *Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("%w: %v", ErrInvalid, r)
		}
	}()
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if uint64(len(data)) > cfg.limit() {
		return nil, ErrTooLarge
	}

	if cfg.skipVerify {
		cfg.log().Debug("skipping verification", "size", len(data))
	} else {
		stats, verr := verify.Collection(data)
		if verr != nil {
			cfg.log().Debug("verification failed", "size", len(data), "error", verr)
			return nil, fmt.Errorf("%w: %w", ErrInvalid, verr)
		}
		cfg.log().Debug("verified buffer",
			"size", len(data),
			"tables", stats.Tables,
			"referrables", stats.Referrables)
	}

	idx = &Index{data: data, root: view.Root(data)}
	if refs, ok := idx.root.VectorField(fieldReferrables); ok {
		idx.refs = refs
	}
	return idx, nil
}

// limit caps the configured size at what 32-bit offsets can address.
func (c *config) limit() uint64 {
	return min(c.maxSize, sizing.MaxBuffer)
}

// Version returns the format version recorded in the buffer.
func (idx *Index) Version() uint32 {
	return idx.root.Uint32Field(fieldVersion, 0)
}

// Name returns the collection name, or "" if none was recorded.
func (idx *Index) Name() string {
	name, _ := idx.root.BytesField(fieldName)
	return string(name)
}

// Bytes returns the underlying buffer. It must be treated as immutable.
func (idx *Index) Bytes() []byte {
	return idx.data
}

// Len returns the number of referrables.
func (idx *Index) Len() int {
	return idx.refs.Len()
}

// At returns the i-th referrable in id order. It panics if i is out of range.
func (idx *Index) At(i int) Referrable {
	if i < 0 || i >= idx.refs.Len() {
		panic(fmt.Sprintf("flatview: index %d out of range [0, %d)", i, idx.refs.Len()))
	}
	var r Referrable
	idx.refs.At(i, &r.t)
	return r
}

// Lookup returns a referrable with the given id.
//
// Lookup uses binary search and completes in O(log n) time. When several
// referrables share the id, any one of them may be returned.
func (idx *Index) Lookup(id uint64) (Referrable, bool) {
	var r Referrable
	if !byID.FindInto(idx.refs, id, &r.t) {
		return Referrable{}, false
	}
	return r, true
}

// LookupFirst returns the first referrable, in vector order, with the given id.
func (idx *Index) LookupFirst(id uint64) (Referrable, bool) {
	lo, hi := byID.EqualRange(idx.refs, id)
	if lo == hi {
		return Referrable{}, false
	}
	return idx.At(lo), true
}

// LookupAll returns an iterator over every referrable with the given id.
func (idx *Index) LookupAll(id uint64) iter.Seq[Referrable] {
	return func(yield func(Referrable) bool) {
		lo, hi := byID.EqualRange(idx.refs, id)
		for i := lo; i < hi; i++ {
			if !yield(idx.At(i)) {
				return
			}
		}
	}
}

// LookupName returns a referrable whose id is the fnv1a_64 hash of name.
func (idx *Index) LookupName(name string) (Referrable, bool) {
	return idx.Lookup(fb.HashID(name))
}

// Contains reports whether a referrable with the given id exists.
func (idx *Index) Contains(id uint64) bool {
	var t view.View
	return byID.FindInto(idx.refs, id, &t)
}

// Entries returns an iterator over all referrables in id order.
func (idx *Index) Entries() iter.Seq[Referrable] {
	return func(yield func(Referrable) bool) {
		var r Referrable
		for i := range idx.refs.Len() {
			idx.refs.At(i, &r.t)
			if !yield(r) {
				return
			}
		}
	}
}

// Range returns an iterator over referrables with lo <= id < hi, in id order.
func (idx *Index) Range(lo, hi uint64) iter.Seq[Referrable] {
	return func(yield func(Referrable) bool) {
		if lo >= hi {
			return
		}
		start := byID.LowerBound(idx.refs, lo)
		end := byID.LowerBound(idx.refs, hi)
		for i := start; i < end; i++ {
			if !yield(idx.At(i)) {
				return
			}
		}
	}
}

// Digest returns the SHA-256 digest of the buffer.
func (idx *Index) Digest() digest.Digest {
	idx.digestOnce.Do(func() {
		idx.digest = digest.FromBytes(idx.data)
	})
	return idx.digest
}

// Verify checks that data hashes to dgst.
func Verify(data []byte, dgst digest.Digest) error {
	if err := dgst.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrDigestMismatch, err)
	}
	if got := dgst.Algorithm().FromBytes(data); got != dgst {
		return fmt.Errorf("%w: got %s, want %s", ErrDigestMismatch, got, dgst)
	}
	return nil
}
