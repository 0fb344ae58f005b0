package flatview

import (
	"log/slog"
	"sync"

	"github.com/meigma/flatview/internal/compress"
)

// Default limits.
const (
	// DefaultMaxSize is the default limit on decoded buffer size.
	DefaultMaxSize uint64 = 64 << 20 // 64 MB

	// DefaultMaxDecoderMemory is the default zstd decoder memory limit.
	DefaultMaxDecoderMemory uint64 = 256 << 20 // 256 MB

	// DefaultLoadConcurrency is the default number of concurrent loads in
	// Store.LoadAll.
	DefaultLoadConcurrency = 4
)

// Option configures loading.
type Option func(*config)

type config struct {
	logger             *slog.Logger
	skipVerify         bool
	maxSize            uint64
	maxDecoderMemory   uint64
	decoderConcurrency int
	decoderLowmem      bool
	loadConcurrency    int

	poolOnce sync.Once
	pool     *compress.Pool
}

func newConfig(opts []Option) *config {
	cfg := &config{
		maxSize:            DefaultMaxSize,
		maxDecoderMemory:   DefaultMaxDecoderMemory,
		decoderConcurrency: 1,
		loadConcurrency:    DefaultLoadConcurrency,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// decoders returns the zstd decoder pool, creating it on first use.
func (c *config) decoders() *compress.Pool {
	c.poolOnce.Do(func() {
		c.pool = compress.NewPool(c.maxDecoderMemory,
			compress.WithDecoderConcurrency(c.decoderConcurrency),
			compress.WithDecoderLowmem(c.decoderLowmem))
	})
	return c.pool
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// WithLogger sets the logger for load, verification and store events.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSkipVerify disables buffer verification on load.
//
// Only use this for buffers that were verified before, such as buffers
// produced by this process. Lookups over a malformed unverified buffer may
// panic or return wrong results.
func WithSkipVerify(skip bool) Option {
	return func(c *config) {
		c.skipVerify = skip
	}
}

// WithMaxSize limits the size of a buffer, after decompression.
// Set limit to 0 to use DefaultMaxSize.
func WithMaxSize(limit uint64) Option {
	return func(c *config) {
		if limit == 0 {
			limit = DefaultMaxSize
		}
		c.maxSize = limit
	}
}

// WithMaxDecoderMemory limits the maximum memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(c *config) {
		c.maxDecoderMemory = limit
	}
}

// WithDecoderConcurrency sets the zstd decoder concurrency (default: 1).
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) Option {
	return func(c *config) {
		c.decoderConcurrency = max(n, 0)
	}
}

// WithDecoderLowmem enables zstd low-memory mode, trading speed for smaller
// decoder buffers.
func WithDecoderLowmem(enabled bool) Option {
	return func(c *config) {
		c.decoderLowmem = enabled
	}
}

// WithLoadConcurrency sets how many buffers Store.LoadAll loads at once.
// Values <= 0 use DefaultLoadConcurrency.
func WithLoadConcurrency(n int) Option {
	return func(c *config) {
		if n <= 0 {
			n = DefaultLoadConcurrency
		}
		c.loadConcurrency = n
	}
}
