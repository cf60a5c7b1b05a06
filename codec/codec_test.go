package codec

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// lcgStream reproduces the spec's deterministic pseudo-random generator:
// state *= 6364136223846793005; state += 1442695040888963407; byte = state>>56.
func lcgStream(seed uint64, n int) []byte {
	const mul = 6364136223846793005
	const inc = 1442695040888963407
	state := seed
	out := make([]byte, n)
	for i := range out {
		state = state*mul + inc
		out[i] = byte(state >> 56)
	}
	return out
}

func genericCodecs(t *testing.T) []Codec {
	t.Helper()
	zstd, err := NewZstdCodec(DefaultZstdLevel)
	if err != nil {
		t.Fatalf("NewZstdCodec: %v", err)
	}
	return []Codec{PassthroughCodec{}, zstd, LZ4Codec{}}
}

func TestGenericCodecRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 46, 1024, 65536}
	for _, c := range genericCodecs(t) {
		c := c
		t.Run(c.Name(), func(t *testing.T) {
			for _, size := range sizes {
				data := lcgStream(0xDEADBEEF, size)
				var meta BlockMeta
				compressed, err := c.CompressBlock(data, &meta)
				if err != nil {
					t.Fatalf("CompressBlock(size=%d): %v", size, err)
				}
				got, err := c.DecompressBlock(compressed, meta)
				if err != nil {
					t.Fatalf("DecompressBlock(size=%d): %v", size, err)
				}
				if !bytes.Equal(got, data) && !(len(got) == 0 && len(data) == 0) {
					t.Fatalf("round trip mismatch at size %d", size)
				}
			}
		})
	}
}

func TestGenericCodecCompressibleData(t *testing.T) {
	pattern := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)
	for _, c := range genericCodecs(t) {
		c := c
		t.Run(c.Name(), func(t *testing.T) {
			var meta BlockMeta
			compressed, err := c.CompressBlock(pattern, &meta)
			if err != nil {
				t.Fatalf("CompressBlock: %v", err)
			}
			got, err := c.DecompressBlock(compressed, meta)
			if err != nil {
				t.Fatalf("DecompressBlock: %v", err)
			}
			if !bytes.Equal(got, pattern) {
				t.Fatalf("round trip mismatch for compressible data")
			}
		})
	}
}

func TestBlockIndependence(t *testing.T) {
	// Compress two distinct blocks, then decompress them in reverse order
	// using fresh BlockMeta for each, as a reader would when serving
	// out-of-order read_block calls.
	for _, c := range genericCodecs(t) {
		c := c
		t.Run(c.Name(), func(t *testing.T) {
			a := lcgStream(1, 4096)
			b := lcgStream(2, 4096)

			var metaA, metaB BlockMeta
			compA, err := c.CompressBlock(a, &metaA)
			if err != nil {
				t.Fatalf("compress a: %v", err)
			}
			compB, err := c.CompressBlock(b, &metaB)
			if err != nil {
				t.Fatalf("compress b: %v", err)
			}

			gotB, err := c.DecompressBlock(compB, metaB)
			if err != nil {
				t.Fatalf("decompress b: %v", err)
			}
			if !bytes.Equal(gotB, b) {
				t.Fatalf("decoding b after a was compressed first produced wrong bytes")
			}
			gotA, err := c.DecompressBlock(compA, metaA)
			if err != nil {
				t.Fatalf("decompress a: %v", err)
			}
			if !bytes.Equal(gotA, a) {
				t.Fatalf("decoding a out of order produced wrong bytes")
			}
		})
	}
}

func TestPassthroughCodecID(t *testing.T) {
	if (PassthroughCodec{}).ID() != 0 {
		t.Fatalf("passthrough id = %d, want 0", PassthroughCodec{}.ID())
	}
}

func TestByID(t *testing.T) {
	for id, want := range map[uint16]string{
		0: "passthrough", 1: "zstd", 2: "lz4", 3: "delta-int", 4: "float-quant", 5: "bitpack", 6: "rle",
	} {
		c, err := ByID(id)
		if err != nil {
			t.Fatalf("ByID(%d): %v", id, err)
		}
		if c.Name() != want {
			t.Fatalf("ByID(%d).Name() = %q, want %q", id, c.Name(), want)
		}
	}
	if _, err := ByID(999); err == nil {
		t.Fatalf("ByID(999) should fail")
	}
}

func int64sToBytes(vals []int64) []byte {
	out := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], uint64(v))
	}
	return out
}

func TestDeltaIntCodecRoundTrip(t *testing.T) {
	c := DeltaIntCodec{}
	raw := int64sToBytes([]int64{1000, 1001, 1003, 1002, -5, -6, 0, 1 << 40})
	var meta BlockMeta
	compressed, err := c.CompressBlock(raw, &meta)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	got, err := c.DecompressBlock(compressed, meta)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDeltaIntCodecRejectsMisalignedInput(t *testing.T) {
	c := DeltaIntCodec{}
	var meta BlockMeta
	if _, err := c.CompressBlock(make([]byte, 7), &meta); err == nil {
		t.Fatalf("expected error for non-multiple-of-8 input")
	}
}

func float64sToBytes(vals []float64) []byte {
	out := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], math.Float64bits(v))
	}
	return out
}

func TestFloatQuantCodecApproxRoundTrip(t *testing.T) {
	c := FloatQuantCodec{}
	vals := []float64{-10.5, 0, 3.25, 7.75, 100, -100}
	raw := float64sToBytes(vals)

	var meta BlockMeta
	compressed, err := c.CompressBlock(raw, &meta)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	if len(meta.Sidecar) != 16 {
		t.Fatalf("sidecar length = %d, want 16", len(meta.Sidecar))
	}

	decoded, err := c.DecompressBlock(compressed, meta)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if len(decoded) != len(raw) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(raw))
	}

	span := 200.0
	tolerance := span / 65535 * 1.01
	for i, want := range vals {
		got := math.Float64frombits(binary.LittleEndian.Uint64(decoded[i*8 : i*8+8]))
		if math.Abs(got-want) > tolerance {
			t.Fatalf("value %d: got %v, want ~%v (tolerance %v)", i, got, want, tolerance)
		}
	}
}

func TestFloatQuantCodecRequiresSidecarOnDecode(t *testing.T) {
	c := FloatQuantCodec{}
	if _, err := c.DecompressBlock([]byte{0, 0}, BlockMeta{}); err == nil {
		t.Fatalf("expected error when sidecar is missing")
	}
}

func uint64sToBytes(vals []uint64) []byte {
	out := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], v)
	}
	return out
}

func TestBitpackCodecRoundTrip(t *testing.T) {
	tests := [][]uint64{
		{5, 5, 5, 5},
		{0, 1, 2, 3, 4, 5, 6, 7},
		{1000, 2000, 1500, 1999, 1000},
		{0, math.MaxUint64, 1 << 33},
		{},
	}
	c := BitpackCodec{}
	for _, vals := range tests {
		raw := uint64sToBytes(vals)
		var meta BlockMeta
		compressed, err := c.CompressBlock(raw, &meta)
		if err != nil {
			t.Fatalf("CompressBlock(%v): %v", vals, err)
		}
		got, err := c.DecompressBlock(compressed, meta)
		if err != nil {
			t.Fatalf("DecompressBlock(%v): %v", vals, err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("round trip mismatch for %v: got %v", vals, got)
		}
	}
}

func TestRLECodecRoundTrip(t *testing.T) {
	tests := [][]byte{
		{},
		{1, 1, 1, 1, 1},
		bytes.Repeat([]byte{0xAB}, 1000),
		[]byte("abcabcabc"),
		lcgStream(7, 500),
	}
	c := RLECodec{}
	for _, raw := range tests {
		var meta BlockMeta
		compressed, err := c.CompressBlock(raw, &meta)
		if err != nil {
			t.Fatalf("CompressBlock: %v", err)
		}
		got, err := c.DecompressBlock(compressed, meta)
		if err != nil {
			t.Fatalf("DecompressBlock: %v", err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("round trip mismatch")
		}
	}
}

func TestEntropyFloor(t *testing.T) {
	// Documents (does not strictly assert beyond the stated bound) that
	// compressing codecs can't meaningfully compress uniformly random data.
	data := lcgStream(0x1234, 4*65536)
	for _, c := range genericCodecs(t) {
		c := c
		if c.Name() == "passthrough" {
			continue
		}
		t.Run(c.Name(), func(t *testing.T) {
			var meta BlockMeta
			compressed, err := c.CompressBlock(data, &meta)
			if err != nil {
				t.Fatalf("CompressBlock: %v", err)
			}
			ratio := float64(len(data)) / float64(len(compressed))
			if ratio > 1.10 {
				t.Fatalf("compression ratio on random data = %.3f, want <= 1.10", ratio)
			}
		})
	}
}
