// Package compress decodes zstd-framed collection buffers.
package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/flatview/internal/sizing"
)

// magic is the zstd frame magic number, little-endian.
var magic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// IsZstd reports whether data starts with a zstd frame header.
func IsZstd(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Pool manages reusable zstd decoders to reduce allocation overhead.
type Pool struct {
	pool               *sync.Pool
	maxDecoderMemory   uint64
	decoderConcurrency int
	decoderLowmem      bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithDecoderConcurrency sets the decoder concurrency level.
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) Option {
	return func(p *Pool) {
		if n < 0 {
			n = 0
		}
		p.decoderConcurrency = n
	}
}

// WithDecoderLowmem enables or disables low-memory mode for decoders.
func WithDecoderLowmem(b bool) Option {
	return func(p *Pool) {
		p.decoderLowmem = b
	}
}

// NewPool creates a new pool for zstd decoders.
// If maxMemory is 0, no memory limit is applied to decoders.
func NewPool(maxMemory uint64, opts ...Option) *Pool {
	p := &Pool{
		maxDecoderMemory:   maxMemory,
		decoderConcurrency: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.pool = &sync.Pool{
		New: func() any {
			dec, err := p.newDecoder(nil)
			if err != nil {
				return nil
			}
			return dec
		},
	}
	return p
}

// Get returns a decoder configured to read from r.
// The caller must call the returned release function when done.
// If an error is returned, no release function needs to be called.
func (p *Pool) Get(r io.Reader) (*zstd.Decoder, func(), error) {
	dec, ok := p.pool.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		dec, err := p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	}

	if err := dec.Reset(r); err != nil {
		dec.Close()
		dec, err = p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	}

	return dec, func() {
		_ = dec.Reset(nil) //nolint:errcheck // clearing state before pool return
		p.pool.Put(dec)
	}, nil
}

// DecodeAll decompresses data, returning tooLarge when the output would
// exceed maxSize bytes.
func (p *Pool) DecodeAll(data []byte, maxSize uint64, tooLarge error) ([]byte, error) {
	dec, release, err := p.Get(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer release()
	return sizing.ReadAllWithLimit(dec, maxSize, tooLarge)
}

func (p *Pool) newDecoder(r io.Reader) (*zstd.Decoder, error) {
	opts := []zstd.DOption{
		zstd.WithDecoderConcurrency(p.decoderConcurrency),
		zstd.WithDecoderLowmem(p.decoderLowmem),
	}
	if p.maxDecoderMemory != 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(p.maxDecoderMemory))
	}
	return zstd.NewReader(r, opts...)
}

// Encode compresses data as a single zstd frame.
func Encode(data []byte, level zstd.EncoderLevel) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}
