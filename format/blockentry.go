package format

import "encoding/binary"

// BlockEntry describes and locates a single block in the on-disk index.
type BlockEntry struct {
	// Offset is the absolute file offset of the block's first on-disk byte:
	// the start of the metadata prefix if MetadataLen > 0, else of the
	// compressed payload.
	Offset uint64
	// CompressedLen is the length of the compressed payload only, excluding
	// any metadata prefix.
	CompressedLen uint32
	// RawLen is the original size of the block's decompressed bytes.
	RawLen uint32
	// Checksum is the xxh3-64 of the compressed payload.
	Checksum uint64
	// MetadataLen is the number of sidecar bytes preceding the compressed
	// payload on disk; zero when the block carries no sidecar.
	MetadataLen uint16
}

// Encode writes e to exactly BlockEntrySize bytes of buf, little-endian. buf
// must be at least BlockEntrySize bytes long.
func (e BlockEntry) Encode(buf []byte) error {
	if len(buf) < BlockEntrySize {
		return ErrShortBuffer
	}
	binary.LittleEndian.PutUint64(buf[0:8], e.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], e.CompressedLen)
	binary.LittleEndian.PutUint32(buf[12:16], e.RawLen)
	binary.LittleEndian.PutUint64(buf[16:24], e.Checksum)
	binary.LittleEndian.PutUint16(buf[24:26], e.MetadataLen)
	for i := 26; i < BlockEntrySize; i++ {
		buf[i] = 0
	}
	return nil
}

// DecodeBlockEntry reads a BlockEntry from exactly BlockEntrySize bytes of buf.
func DecodeBlockEntry(buf []byte) (BlockEntry, error) {
	if len(buf) < BlockEntrySize {
		return BlockEntry{}, ErrShortBuffer
	}
	return BlockEntry{
		Offset:        binary.LittleEndian.Uint64(buf[0:8]),
		CompressedLen: binary.LittleEndian.Uint32(buf[8:12]),
		RawLen:        binary.LittleEndian.Uint32(buf[12:16]),
		Checksum:      binary.LittleEndian.Uint64(buf[16:24]),
		MetadataLen:   binary.LittleEndian.Uint16(buf[24:26]),
	}, nil
}
