package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/wesleyscholl/squish/format"
)

// LZ4Codec compresses each block independently with raw LZ4 block framing
// (no streaming-frame envelope), using github.com/pierrec/lz4/v4's low-level
// block API. This is the fastest-decompressing codec on the roster — best
// for hot data and low-latency random access workloads.
//
// Each compressed payload is self-describing, the same way lz4_flex's
// compress_prepend_size/decompress_size_prepended pair works: a 4-byte
// little-endian raw length followed by a 1-byte stored/compressed marker,
// so a block can be decompressed without any side channel.
type LZ4Codec struct{}

const (
	lz4StoredMarker     = 0
	lz4CompressedMarker = 1
)

func (LZ4Codec) ID() uint16 { return format.CodecLZ4 }

func (LZ4Codec) Name() string { return "lz4" }

func (LZ4Codec) CompressBlock(raw []byte, _ *BlockMeta) ([]byte, error) {
	header := make([]byte, 5)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(raw)))

	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	var c lz4.Compressor
	n, err := c.CompressBlock(raw, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 compress: %v", ErrCodecError, err)
	}
	if n == 0 || n >= len(raw) {
		// Incompressible (or empty): store verbatim.
		header[4] = lz4StoredMarker
		out := make([]byte, 0, len(header)+len(raw))
		out = append(out, header...)
		out = append(out, raw...)
		return out, nil
	}
	header[4] = lz4CompressedMarker
	out := make([]byte, 0, len(header)+n)
	out = append(out, header...)
	out = append(out, dst[:n]...)
	return out, nil
}

func (LZ4Codec) DecompressBlock(compressed []byte, _ BlockMeta) ([]byte, error) {
	if len(compressed) < 5 {
		return nil, fmt.Errorf("%w: lz4 block too short", ErrCodecError)
	}
	rawLen := binary.LittleEndian.Uint32(compressed[0:4])
	marker := compressed[4]
	payload := compressed[5:]

	if marker == lz4StoredMarker {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}

	dst := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(payload, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 decompress: %v", ErrCodecError, err)
	}
	return dst[:n], nil
}
