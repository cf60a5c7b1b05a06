package codec

import "github.com/wesleyscholl/squish/format"

// PassthroughCodec stores blocks verbatim, with no compression. Useful for
// verifying the container format round-trip independently of any codec, or
// for data that's already compressed (JPEG, MP4, ...) where recompressing
// would only expand it.
type PassthroughCodec struct{}

func (PassthroughCodec) ID() uint16 { return format.CodecPassthrough }

func (PassthroughCodec) Name() string { return "passthrough" }

func (PassthroughCodec) CompressBlock(raw []byte, _ *BlockMeta) ([]byte, error) {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (PassthroughCodec) DecompressBlock(compressed []byte, _ BlockMeta) ([]byte, error) {
	out := make([]byte, len(compressed))
	copy(out, compressed)
	return out, nil
}
