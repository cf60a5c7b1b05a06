// Package codec provides the block-independent compression capability used
// by the squish writer and reader, plus a small roster of concrete codecs.
//
// A Codec implementation must compress and decompress each block entirely on
// its own: no state may carry across calls, regardless of call order or
// interleaving across goroutines. This is what lets a reader seek straight to
// any block and decode it without touching any other block.
package codec

import (
	"errors"
	"fmt"

	"github.com/wesleyscholl/squish/format"
)

// BlockMeta carries optional per-block sidecar bytes between CompressBlock
// and DecompressBlock. For codecs that don't need domain-specific per-block
// state (PassThrough, Zstd, LZ4) it's always empty.
type BlockMeta struct {
	Sidecar []byte
}

// Codec is the core compression abstraction. Implementations are identified
// by a stable ID persisted in the container header.
type Codec interface {
	// ID is the stable codec identifier stored in the container header.
	ID() uint16

	// Name is a human-readable label for display purposes.
	Name() string

	// CompressBlock compresses a single independent block. Implementations
	// may append bytes to meta.Sidecar; those bytes are stored alongside the
	// compressed payload and handed back verbatim to DecompressBlock.
	CompressBlock(raw []byte, meta *BlockMeta) ([]byte, error)

	// DecompressBlock is the inverse of CompressBlock. It must not reference
	// any state from any other block.
	DecompressBlock(compressed []byte, meta BlockMeta) ([]byte, error)
}

// ErrUnknownCodecID is returned by ByID for any id outside the registered
// roster.
var ErrUnknownCodecID = errors.New("codec: unknown codec id")

// ErrCodecError wraps an internal codec failure (a compressor/decompressor
// library returning an error).
var ErrCodecError = errors.New("codec: internal codec error")

// ByID resolves a Codec from its on-disk codec_id, e.g. for a reader that
// doesn't know its file's codec ahead of time and has just read the header.
func ByID(id uint16) (Codec, error) {
	switch id {
	case format.CodecPassthrough:
		return PassthroughCodec{}, nil
	case format.CodecZstd:
		return NewZstdCodec(DefaultZstdLevel)
	case format.CodecLZ4:
		return LZ4Codec{}, nil
	case format.CodecDeltaInt:
		return DeltaIntCodec{}, nil
	case format.CodecFloatQuant:
		return FloatQuantCodec{}, nil
	case format.CodecBitpack:
		return BitpackCodec{}, nil
	case format.CodecRLE:
		return RLECodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodecID, id)
	}
}
