package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/wesleyscholl/squish/format"
	"github.com/wesleyscholl/squish/internal/cpufeat"
)

// BitpackCodec treats a block as a sequence of little-endian uint64 values
// and packs each one, minus the block's own minimum, into the smallest
// uniform bit width that holds the block's value range. The minimum and bit
// width are carried in the per-block metadata sidecar so every block
// dequantizes independently of its neighbors.
type BitpackCodec struct{}

func (BitpackCodec) ID() uint16 { return format.CodecBitpack }

func (BitpackCodec) Name() string { return "bitpack" }

func (BitpackCodec) CompressBlock(raw []byte, meta *BlockMeta) ([]byte, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("%w: bitpack block length %d not a multiple of 8", ErrCodecError, len(raw))
	}
	n := len(raw) / 8
	values := make([]uint64, n)
	var min, max uint64
	if n > 0 {
		min, max = ^uint64(0), 0
	}
	for i := 0; i < n; i++ {
		v := binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
		values[i] = v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if n == 0 {
		min = 0
	}

	width := bitWidth(max - min)
	sidecar := make([]byte, 13)
	sidecar[0] = width
	binary.LittleEndian.PutUint64(sidecar[1:9], min)
	binary.LittleEndian.PutUint32(sidecar[9:13], uint32(n))
	meta.Sidecar = sidecar

	out := make([]byte, bitpackedLen(n, width))
	var bitPos int
	for _, v := range values {
		writeBits(out, bitPos, v-min, width)
		bitPos += int(width)
	}
	return out, nil
}

func (BitpackCodec) DecompressBlock(compressed []byte, meta BlockMeta) ([]byte, error) {
	if len(meta.Sidecar) < 13 {
		return nil, fmt.Errorf("%w: bitpack missing width/min/count sidecar", ErrCodecError)
	}
	width := meta.Sidecar[0]
	min := binary.LittleEndian.Uint64(meta.Sidecar[1:9])
	n := int(binary.LittleEndian.Uint32(meta.Sidecar[9:13]))

	out := make([]byte, n*8)
	wide := cpufeat.HasWideUnpack()
	var bitPos int
	for i := 0; i < n; i++ {
		var delta uint64
		if wide {
			delta = readBitsWide(compressed, bitPos, width)
		} else {
			delta = readBits(compressed, bitPos, width)
		}
		bitPos += int(width)
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], min+delta)
	}
	return out, nil
}

// bitWidth returns the minimum number of bits needed to represent span.
func bitWidth(span uint64) uint8 {
	var w uint8
	for span > 0 {
		w++
		span >>= 1
	}
	return w
}

func bitpackedLen(n int, width uint8) int {
	totalBits := n * int(width)
	return (totalBits + 7) / 8
}

func writeBits(dst []byte, bitPos int, v uint64, width uint8) {
	for b := uint8(0); b < width; b++ {
		if v&(1<<b) != 0 {
			pos := bitPos + int(b)
			dst[pos/8] |= 1 << uint(pos%8)
		}
	}
}

// readBits is the straightforward bit-at-a-time unpack path.
func readBits(src []byte, bitPos int, width uint8) uint64 {
	var v uint64
	for b := uint8(0); b < width; b++ {
		pos := bitPos + int(b)
		if src[pos/8]&(1<<uint(pos%8)) != 0 {
			v |= 1 << b
		}
	}
	return v
}

// readBitsWide unpacks by loading a full 64-bit window starting at bitPos's
// containing byte, then masking and shifting in one step instead of looping
// bit by bit. Falls back to the bit-at-a-time path near the end of src where
// a full 8-byte window isn't available. Produces identical output to
// readBits; it's only a throughput optimization on CPUs with cheap
// unaligned 64-bit loads.
func readBitsWide(src []byte, bitPos int, width uint8) uint64 {
	if width == 0 {
		return 0
	}
	byteOff := bitPos / 8
	bitOff := uint(bitPos % 8)
	if byteOff+8 > len(src) || bitOff+uint(width) > 64 {
		return readBits(src, bitPos, width)
	}
	window := binary.LittleEndian.Uint64(src[byteOff : byteOff+8])
	window >>= bitOff
	if width == 64 {
		return window
	}
	mask := uint64(1)<<width - 1
	return window & mask
}
