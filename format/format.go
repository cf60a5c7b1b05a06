// Package format defines the on-disk byte layout of an ANCF1 container:
// the fixed header, the block index entries, and the footer. Every type in
// this package encodes to and decodes from fixed-width little-endian buffers
// and never allocates beyond what the caller supplies.
package format

import "errors"

const (
	// HeaderSize is the fixed size of the ANCF1 file header in bytes.
	HeaderSize = 56

	// BlockEntrySize is the fixed size of a single block index entry in bytes.
	BlockEntrySize = 32

	// FooterSize is the fixed size of the trailing index-offset footer.
	FooterSize = 8

	// DefaultBlockSize is the nominal raw bytes per block when the caller
	// doesn't specify one.
	DefaultBlockSize = 64 * 1024

	// Version is the only file format version this package understands.
	Version = 1
)

// magic is the 14-byte tag at offset 0 of every ANCF1 file: "ANCF1\n" followed
// by eight zero bytes.
var magic = [14]byte{'A', 'N', 'C', 'F', '1', '\n'}

// Flag bits stored in Header.Flags.
const (
	// FlagHasChecksum indicates every block carries an xxh3-64 checksum over
	// its compressed payload that readers must verify before decoding.
	FlagHasChecksum uint64 = 1 << 0

	// FlagPerBlockMeta is informational only; the authoritative per-block
	// indicator is BlockEntry.MetadataLen > 0.
	FlagPerBlockMeta uint64 = 1 << 1
)

// Codec identifiers stored in Header.CodecID. IDs 3-6 are the domain codecs;
// of those, FloatQuant (4) and Bitpack (5) use the per-block metadata
// sidecar, DeltaInt (3) and RLE (6) do not. Additional IDs are reserved.
const (
	CodecPassthrough uint16 = 0
	CodecZstd        uint16 = 1
	CodecLZ4         uint16 = 2
	CodecDeltaInt    uint16 = 3
	CodecFloatQuant  uint16 = 4
	CodecBitpack     uint16 = 5
	CodecRLE         uint16 = 6
)

// ErrInvalidMagic is returned by DecodeHeader when the first 14 bytes of a
// file do not match the ANCF1 magic tag.
var ErrInvalidMagic = errors.New("format: invalid magic tag")

// ErrUnsupportedVersion names a header whose version field is not Version.
// DecodeHeader does not return it (it validates only the magic tag); the
// squish reader reports a version mismatch with squish.ErrUnsupportedVersion.
var ErrUnsupportedVersion = errors.New("format: unsupported version")

// ErrShortBuffer is returned by the Decode functions when the supplied buffer
// is smaller than the fixed-width record it's meant to hold.
var ErrShortBuffer = errors.New("format: buffer too short")
