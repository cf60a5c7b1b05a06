package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/wesleyscholl/squish/format"
)

// DefaultZstdLevel is used by ByID when resolving codec id 1 from an on-disk
// header, where no level preference is available.
const DefaultZstdLevel = zstd.SpeedDefault

// ZstdCodec compresses each block independently with github.com/klauspost/
// compress/zstd. Every call to CompressBlock emits a complete, self-contained
// zstd frame, so every block decodes without any cross-block state — exactly
// the independence this format requires. Best for general text, JSON, logs,
// and mixed structured data.
//
// Encoder.EncodeAll and Decoder.DecodeAll are safe for concurrent use, so a
// single ZstdCodec can be shared by reference across writer/reader goroutines
// per the codec-sharing model.
type ZstdCodec struct {
	level zstd.EncoderLevel
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewZstdCodec creates a ZstdCodec at the given compression level.
func NewZstdCodec(level zstd.EncoderLevel) (*ZstdCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd encoder init: %v", ErrCodecError, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decoder init: %v", ErrCodecError, err)
	}
	return &ZstdCodec{level: level, enc: enc, dec: dec}, nil
}

func (c *ZstdCodec) ID() uint16 { return format.CodecZstd }

func (c *ZstdCodec) Name() string { return "zstd" }

func (c *ZstdCodec) CompressBlock(raw []byte, _ *BlockMeta) ([]byte, error) {
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
}

func (c *ZstdCodec) DecompressBlock(compressed []byte, _ BlockMeta) ([]byte, error) {
	raw, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decompress: %v", ErrCodecError, err)
	}
	return raw, nil
}
