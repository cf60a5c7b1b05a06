package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/wesleyscholl/squish/format"
)

// DeltaIntCodec treats a block as a sequence of little-endian int64 values
// and stores the first value as a zig-zag varint followed by zig-zag varint deltas
// between consecutive values. It's a good fit for monotonic or slowly
// changing integer columns (timestamps, sequence counters, row ids), where
// deltas are far smaller than the absolute values.
//
// No sidecar metadata is needed: the delta chain is self-contained within
// the block, so independence holds without any cross-block state.
type DeltaIntCodec struct{}

func (DeltaIntCodec) ID() uint16 { return format.CodecDeltaInt }

func (DeltaIntCodec) Name() string { return "delta-int" }

func (DeltaIntCodec) CompressBlock(raw []byte, _ *BlockMeta) ([]byte, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("%w: delta-int block length %d not a multiple of 8", ErrCodecError, len(raw))
	}
	n := len(raw) / 8
	out := make([]byte, 0, len(raw)+n)

	var prev int64
	var varintBuf [binary.MaxVarintLen64]byte
	for i := 0; i < n; i++ {
		v := int64(binary.LittleEndian.Uint64(raw[i*8 : i*8+8]))
		var delta int64
		if i == 0 {
			delta = v
		} else {
			delta = v - prev
		}
		prev = v
		m := binary.PutVarint(varintBuf[:], delta)
		out = append(out, varintBuf[:m]...)
	}
	return out, nil
}

func (DeltaIntCodec) DecompressBlock(compressed []byte, _ BlockMeta) ([]byte, error) {
	out := make([]byte, 0, len(compressed)*2)
	var prev int64
	first := true
	rest := compressed
	for len(rest) > 0 {
		delta, m := binary.Varint(rest)
		if m <= 0 {
			return nil, fmt.Errorf("%w: delta-int malformed varint", ErrCodecError)
		}
		rest = rest[m:]
		var v int64
		if first {
			v = delta
			first = false
		} else {
			v = prev + delta
		}
		prev = v
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		out = append(out, buf[:]...)
	}
	return out, nil
}
