package format

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{"zero", Header{}},
		{"typical", Header{Version: 1, CodecID: CodecZstd, BlockSize: DefaultBlockSize, BlockCount: 42, Flags: FlagHasChecksum}},
		{"all flags", Header{Version: 1, CodecID: CodecBitpack, BlockSize: 1024, BlockCount: 1 << 40, Flags: FlagHasChecksum | FlagPerBlockMeta}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, HeaderSize)
			if err := tt.h.Encode(buf); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if len(buf) != HeaderSize {
				t.Fatalf("encoded length = %d, want %d", len(buf), HeaderSize)
			}
			got, err := DecodeHeader(buf)
			if err != nil {
				t.Fatalf("DecodeHeader: %v", err)
			}
			if got != tt.h {
				t.Fatalf("round trip mismatch: got %+v, want %+v", got, tt.h)
			}
		})
	}
}

func TestHeaderMagicBytes(t *testing.T) {
	buf := make([]byte, HeaderSize)
	if err := (Header{Version: 1}).Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := append([]byte("ANCF1\n"), make([]byte, 8)...)
	if !bytes.Equal(buf[:14], want) {
		t.Fatalf("magic = %q, want %q", buf[:14], want)
	}
}

func TestHeaderReservedBytesAreZero(t *testing.T) {
	buf := make([]byte, HeaderSize)
	for i := range buf {
		buf[i] = 0xFF
	}
	if err := (Header{Version: 1, CodecID: 2}).Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 38; i < HeaderSize; i++ {
		if buf[i] != 0 {
			t.Fatalf("reserved byte %d = %#x, want 0", i, buf[i])
		}
	}
}

func TestDecodeHeaderInvalidMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf, []byte("NOTANCF1"))
	if _, err := DecodeHeader(buf); err != ErrInvalidMagic {
		t.Fatalf("DecodeHeader error = %v, want %v", err, ErrInvalidMagic)
	}
}

func TestDecodeHeaderShortBuffer(t *testing.T) {
	if _, err := DecodeHeader(make([]byte, HeaderSize-1)); err != ErrShortBuffer {
		t.Fatalf("DecodeHeader error = %v, want %v", err, ErrShortBuffer)
	}
}

func TestBlockEntryRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		e    BlockEntry
	}{
		{"zero", BlockEntry{}},
		{"typical", BlockEntry{Offset: 56, CompressedLen: 120, RawLen: 65536, Checksum: 0xDEADBEEFCAFEBABE, MetadataLen: 0}},
		{"with sidecar", BlockEntry{Offset: 1 << 30, CompressedLen: 4096, RawLen: 65536, Checksum: 1, MetadataLen: 18}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, BlockEntrySize)
			if err := tt.e.Encode(buf); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := DecodeBlockEntry(buf)
			if err != nil {
				t.Fatalf("DecodeBlockEntry: %v", err)
			}
			if got != tt.e {
				t.Fatalf("round trip mismatch: got %+v, want %+v", got, tt.e)
			}
		})
	}
}

func TestBlockEntryReservedBytesAreZero(t *testing.T) {
	buf := make([]byte, BlockEntrySize)
	for i := range buf {
		buf[i] = 0xFF
	}
	if err := (BlockEntry{Offset: 1}).Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 26; i < BlockEntrySize; i++ {
		if buf[i] != 0 {
			t.Fatalf("reserved byte %d = %#x, want 0", i, buf[i])
		}
	}
}

func TestBlockEntryShortBuffer(t *testing.T) {
	if _, err := DecodeBlockEntry(make([]byte, BlockEntrySize-1)); err != ErrShortBuffer {
		t.Fatalf("DecodeBlockEntry error = %v, want %v", err, ErrShortBuffer)
	}
	if err := (BlockEntry{}).Encode(make([]byte, BlockEntrySize-1)); err != ErrShortBuffer {
		t.Fatalf("Encode error = %v, want %v", err, ErrShortBuffer)
	}
}
