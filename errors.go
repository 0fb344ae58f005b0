package flatview

import "errors"

// Sentinel errors returned (possibly wrapped) by this package.
var (
	// ErrEmpty is returned when a buffer has no data.
	ErrEmpty = errors.New("flatview: empty buffer")

	// ErrTooLarge is returned when a buffer, compressed or not, exceeds the
	// configured maximum size.
	ErrTooLarge = errors.New("flatview: buffer too large")

	// ErrInvalid is returned when a buffer fails verification. The verifier's
	// error is wrapped alongside it.
	ErrInvalid = errors.New("flatview: invalid buffer")

	// ErrDecompression is returned when a zstd-framed buffer cannot be decoded.
	ErrDecompression = errors.New("flatview: decompression failed")

	// ErrDigestMismatch is returned when stored content does not match its digest.
	ErrDigestMismatch = errors.New("flatview: digest mismatch")

	// ErrNotFound is returned when a Store has no buffer for a digest.
	ErrNotFound = errors.New("flatview: not found")
)
