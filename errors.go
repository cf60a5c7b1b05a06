// Package squish implements the ANCF1 container format: a block-structured
// file layout with a streaming Writer and a random-access Reader, built so
// any single block can be decompressed without touching its neighbors.
package squish

import "errors"

// ErrCodecMismatch is returned by Open when the codec passed by the caller
// doesn't match the codec_id stored in the file header.
var ErrCodecMismatch = errors.New("squish: codec mismatch between file header and provided codec")

// ErrOutOfRange is returned by ReadBlock when the requested index is beyond
// the file's block count, and by ReadRange when start is beyond the file's
// total raw size.
var ErrOutOfRange = errors.New("squish: block index out of range")

// ErrChecksumMismatch is returned by ReadBlock when the stored xxh3-64
// checksum of a block's compressed payload doesn't match what was read from
// disk.
var ErrChecksumMismatch = errors.New("squish: block checksum mismatch")

// ErrMetadataLenMismatch is returned by ReadBlock when the on-disk metadata
// length prefix of a block disagrees with the length recorded in its index
// entry.
var ErrMetadataLenMismatch = errors.New("squish: block metadata length mismatch")

// ErrSizeMismatch is returned by ReadBlock when a codec decompresses a block
// to a size that disagrees with the raw length recorded in its index entry.
var ErrSizeMismatch = errors.New("squish: decompressed size mismatch")

// ErrUnsupportedVersion is returned by Open when the file header's version
// field isn't one this package understands.
var ErrUnsupportedVersion = errors.New("squish: unsupported file version")
