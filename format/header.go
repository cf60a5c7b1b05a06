package format

import (
	"encoding/binary"
)

// Header is the decoded representation of the 56-byte ANCF1 file header.
type Header struct {
	Version    uint16
	CodecID    uint16
	BlockSize  uint32
	BlockCount uint64
	Flags      uint64
}

// HasFlag reports whether all bits of flag are set in h.Flags.
func (h Header) HasFlag(flag uint64) bool {
	return h.Flags&flag == flag
}

// Encode writes h to exactly HeaderSize bytes of buf, little-endian. buf must
// be at least HeaderSize bytes long.
func (h Header) Encode(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrShortBuffer
	}
	copy(buf[0:14], magic[:])
	binary.LittleEndian.PutUint16(buf[14:16], h.Version)
	binary.LittleEndian.PutUint16(buf[16:18], h.CodecID)
	binary.LittleEndian.PutUint32(buf[18:22], h.BlockSize)
	binary.LittleEndian.PutUint64(buf[22:30], h.BlockCount)
	binary.LittleEndian.PutUint64(buf[30:38], h.Flags)
	for i := 38; i < HeaderSize; i++ {
		buf[i] = 0
	}
	return nil
}

// DecodeHeader reads a Header from exactly HeaderSize bytes of buf. It fails
// with ErrInvalidMagic if the first 14 bytes don't match the ANCF1 magic tag.
// Callers that care about the version field (most should) check it themselves
// via Header.Version — DecodeHeader only validates the magic, matching the
// format's narrow decode contract.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortBuffer
	}
	for i := range magic {
		if buf[i] != magic[i] {
			return Header{}, ErrInvalidMagic
		}
	}
	h := Header{
		Version:    binary.LittleEndian.Uint16(buf[14:16]),
		CodecID:    binary.LittleEndian.Uint16(buf[16:18]),
		BlockSize:  binary.LittleEndian.Uint32(buf[18:22]),
		BlockCount: binary.LittleEndian.Uint64(buf[22:30]),
		Flags:      binary.LittleEndian.Uint64(buf[30:38]),
	}
	return h, nil
}
