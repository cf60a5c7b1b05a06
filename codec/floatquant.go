package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wesleyscholl/squish/format"
)

// FloatQuantCodec treats a block as a sequence of little-endian float64
// values and stores each one quantized to a uint16 fraction of the block's
// own [min, max] range. The min/max pair is written to the per-block
// metadata sidecar rather than anywhere global, so every block carries
// everything needed to dequantize itself — exactly the reason the format's
// sidecar mechanism exists: a codec whose parameters vary per block must
// still decode each block independently of every other.
type FloatQuantCodec struct{}

func (FloatQuantCodec) ID() uint16 { return format.CodecFloatQuant }

func (FloatQuantCodec) Name() string { return "float-quant" }

func (FloatQuantCodec) CompressBlock(raw []byte, meta *BlockMeta) ([]byte, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("%w: float-quant block length %d not a multiple of 8", ErrCodecError, len(raw))
	}
	n := len(raw) / 8
	values := make([]float64, n)
	min, max := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
		v := math.Float64frombits(bits)
		values[i] = v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if n == 0 {
		min, max = 0, 0
	}

	sidecar := make([]byte, 16)
	binary.LittleEndian.PutUint64(sidecar[0:8], math.Float64bits(min))
	binary.LittleEndian.PutUint64(sidecar[8:16], math.Float64bits(max))
	meta.Sidecar = sidecar

	out := make([]byte, n*2)
	span := max - min
	for i, v := range values {
		var q uint16
		if span > 0 {
			frac := (v - min) / span
			q = uint16(math.Round(frac * 65535))
		}
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], q)
	}
	return out, nil
}

func (FloatQuantCodec) DecompressBlock(compressed []byte, meta BlockMeta) ([]byte, error) {
	if len(meta.Sidecar) < 16 {
		return nil, fmt.Errorf("%w: float-quant missing min/max sidecar", ErrCodecError)
	}
	if len(compressed)%2 != 0 {
		return nil, fmt.Errorf("%w: float-quant block length %d not a multiple of 2", ErrCodecError, len(compressed))
	}
	min := math.Float64frombits(binary.LittleEndian.Uint64(meta.Sidecar[0:8]))
	max := math.Float64frombits(binary.LittleEndian.Uint64(meta.Sidecar[8:16]))
	span := max - min

	n := len(compressed) / 2
	out := make([]byte, n*8)
	for i := 0; i < n; i++ {
		q := binary.LittleEndian.Uint16(compressed[i*2 : i*2+2])
		v := min
		if span > 0 {
			v = min + (float64(q)/65535)*span
		}
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], math.Float64bits(v))
	}
	return out, nil
}
