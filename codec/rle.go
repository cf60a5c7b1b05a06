package codec

import (
	"fmt"

	"github.com/wesleyscholl/squish/format"
)

// RLECodec run-length encodes an arbitrary byte stream as a sequence of
// (count, value) pairs, count encoded as a single byte capped at 255 (a
// longer run is split across multiple pairs). Good for sparse or
// highly-repetitive byte streams such as bitmaps or padded fixed-width
// fields; no sidecar metadata is needed.
type RLECodec struct{}

func (RLECodec) ID() uint16 { return format.CodecRLE }

func (RLECodec) Name() string { return "rle" }

func (RLECodec) CompressBlock(raw []byte, _ *BlockMeta) ([]byte, error) {
	out := make([]byte, 0, len(raw)/2+2)
	i := 0
	for i < len(raw) {
		v := raw[i]
		runLen := 1
		for i+runLen < len(raw) && raw[i+runLen] == v && runLen < 255 {
			runLen++
		}
		out = append(out, byte(runLen), v)
		i += runLen
	}
	return out, nil
}

func (RLECodec) DecompressBlock(compressed []byte, _ BlockMeta) ([]byte, error) {
	if len(compressed)%2 != 0 {
		return nil, fmt.Errorf("%w: rle stream length %d not a multiple of 2", ErrCodecError, len(compressed))
	}
	out := make([]byte, 0, len(compressed))
	for i := 0; i < len(compressed); i += 2 {
		count, v := compressed[i], compressed[i+1]
		for j := byte(0); j < count; j++ {
			out = append(out, v)
		}
	}
	return out, nil
}
