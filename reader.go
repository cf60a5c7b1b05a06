package squish

import (
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/wesleyscholl/squish/codec"
	"github.com/wesleyscholl/squish/format"
)

// Reader is a random-access reader for ANCF1 files.
//
// Open reads the header and loads the full block index into memory; a 100 GB
// file with 64 KB blocks has roughly 1.6 million blocks, whose index is about
// 50 MB — comfortably resident for typical usage. ReadBlock and ReadRange
// each seek directly to the blocks they need and touch nothing else.
//
// A Reader is not safe for concurrent use; open one Reader per goroutine that
// needs one. Codec instances are cheap to share, but each Reader opens its own
// *os.File, and that file's cursor is not safe to share.
type Reader struct {
	file    *os.File
	header  format.Header
	entries []format.BlockEntry
	codec   codec.Codec
}

// Open opens an ANCF1 file at path. c must match the codec_id stored in the
// file's header; use OpenAuto to resolve the codec automatically from the
// header instead.
func Open(path string, c codec.Codec) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("squish: open %s: %w", path, err)
	}

	headerBuf := make([]byte, format.HeaderSize)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("squish: read header: %w", err)
	}
	header, err := format.DecodeHeader(headerBuf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("squish: decode header: %w", err)
	}
	if header.Version != format.Version {
		f.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}
	if header.CodecID != c.ID() {
		f.Close()
		return nil, fmt.Errorf("%w: file uses codec %d but provided codec has id %d", ErrCodecMismatch, header.CodecID, c.ID())
	}

	footerBuf := make([]byte, format.FooterSize)
	if _, err := f.Seek(-int64(format.FooterSize), io.SeekEnd); err != nil {
		f.Close()
		return nil, fmt.Errorf("squish: seek to footer: %w", err)
	}
	if _, err := io.ReadFull(f, footerBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("squish: read footer: %w", err)
	}
	var indexOffset uint64
	for i := format.FooterSize - 1; i >= 0; i-- {
		indexOffset = indexOffset<<8 | uint64(footerBuf[i])
	}

	if _, err := f.Seek(int64(indexOffset), io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("squish: seek to block index: %w", err)
	}
	entries := make([]format.BlockEntry, header.BlockCount)
	entryBuf := make([]byte, format.BlockEntrySize)
	for i := range entries {
		if _, err := io.ReadFull(f, entryBuf); err != nil {
			f.Close()
			return nil, fmt.Errorf("squish: read block index entry %d: %w", i, err)
		}
		entry, err := format.DecodeBlockEntry(entryBuf)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("squish: decode block index entry %d: %w", i, err)
		}
		entries[i] = entry
	}

	return &Reader{file: f, header: header, entries: entries, codec: c}, nil
}

// OpenAuto opens an ANCF1 file at path and resolves the codec from the
// codec_id stored in its header, without requiring the caller to already
// know which codec was used to write it.
func OpenAuto(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("squish: open %s: %w", path, err)
	}
	headerBuf := make([]byte, format.HeaderSize)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("squish: read header: %w", err)
	}
	header, err := format.DecodeHeader(headerBuf)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("squish: decode header: %w", err)
	}

	c, err := codec.ByID(header.CodecID)
	if err != nil {
		return nil, fmt.Errorf("squish: resolve codec for %s: %w", path, err)
	}
	return Open(path, c)
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// BlockCount reports the total number of blocks in the file.
func (r *Reader) BlockCount() uint64 { return r.header.BlockCount }

// BlockSize reports the nominal raw bytes per block; the last block may be
// smaller.
func (r *Reader) BlockSize() uint32 { return r.header.BlockSize }

// RawSize reports the total uncompressed size of all blocks in bytes.
func (r *Reader) RawSize() uint64 {
	var total uint64
	for _, e := range r.entries {
		total += uint64(e.RawLen)
	}
	return total
}

// CompressedSize reports the total size of all block payloads and metadata
// sidecars in bytes, excluding the header, index, and footer. The 2-byte
// length prefix written before each sidecar on disk is not counted.
func (r *Reader) CompressedSize() uint64 {
	var total uint64
	for _, e := range r.entries {
		total += uint64(e.CompressedLen) + uint64(e.MetadataLen)
	}
	return total
}

// Ratio reports the compression ratio (raw / compressed). It returns 1.0 for
// an empty file to avoid dividing by zero.
func (r *Reader) Ratio() float64 {
	compressed := r.CompressedSize()
	if compressed == 0 {
		return 1.0
	}
	return float64(r.RawSize()) / float64(compressed)
}

// Entries returns the file's block index, for inspection or benchmarking.
func (r *Reader) Entries() []format.BlockEntry {
	out := make([]format.BlockEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ReadBlock decompresses and returns the raw bytes of block idx. Only the
// single block at entries[idx].Offset is read from disk; no other block is
// touched.
func (r *Reader) ReadBlock(idx uint64) ([]byte, error) {
	if idx >= uint64(len(r.entries)) {
		return nil, fmt.Errorf("%w: block %d (total %d)", ErrOutOfRange, idx, len(r.entries))
	}
	entry := r.entries[idx]

	if _, err := r.file.Seek(int64(entry.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("squish: seek to block %d: %w", idx, err)
	}

	var meta codec.BlockMeta
	if entry.MetadataLen > 0 {
		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(r.file, lenBuf); err != nil {
			return nil, fmt.Errorf("squish: read block %d metadata length: %w", idx, err)
		}
		onDiskLen := uint16(lenBuf[0]) | uint16(lenBuf[1])<<8
		if onDiskLen != entry.MetadataLen {
			return nil, fmt.Errorf("%w: block %d index says %d but on-disk prefix says %d", ErrMetadataLenMismatch, idx, entry.MetadataLen, onDiskLen)
		}
		sidecar := make([]byte, entry.MetadataLen)
		if _, err := io.ReadFull(r.file, sidecar); err != nil {
			return nil, fmt.Errorf("squish: read block %d metadata sidecar: %w", idx, err)
		}
		meta.Sidecar = sidecar
	}

	compressed := make([]byte, entry.CompressedLen)
	if _, err := io.ReadFull(r.file, compressed); err != nil {
		return nil, fmt.Errorf("squish: read block %d payload: %w", idx, err)
	}

	if r.header.HasFlag(format.FlagHasChecksum) {
		computed := xxh3.Hash(compressed)
		if computed != entry.Checksum {
			return nil, fmt.Errorf("%w: block %d expected %016x, got %016x", ErrChecksumMismatch, idx, entry.Checksum, computed)
		}
	}

	raw, err := r.codec.DecompressBlock(compressed, meta)
	if err != nil {
		return nil, fmt.Errorf("squish: decompress block %d: %w", idx, err)
	}
	if uint32(len(raw)) != entry.RawLen {
		return nil, fmt.Errorf("%w: block %d decompressed to %d bytes but index says %d", ErrSizeMismatch, idx, len(raw), entry.RawLen)
	}
	return raw, nil
}

// ReadRange decompresses and returns length bytes starting at raw byte
// offset start within the logical (uncompressed) file; a range that runs
// past the end of the file is cut off at the end. It resolves to the
// minimal set of blocks covering the range, decodes only those, and slices
// the result precisely.
func (r *Reader) ReadRange(start, length uint64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}

	rawTotal := r.RawSize()
	if start >= rawTotal {
		return nil, fmt.Errorf("%w: read_range start %d is beyond raw size %d", ErrOutOfRange, start, rawTotal)
	}

	end := start + length
	if end > rawTotal {
		end = rawTotal
	}
	blockSize := uint64(r.header.BlockSize)

	firstBlock := start / blockSize
	lastBlock := (end - 1) / blockSize

	result := make([]byte, 0, length)
	for blockIdx := firstBlock; blockIdx <= lastBlock; blockIdx++ {
		blockRaw, err := r.ReadBlock(blockIdx)
		if err != nil {
			return nil, err
		}
		blockStartInFile := blockIdx * blockSize

		sliceStart := 0
		if blockIdx == firstBlock {
			sliceStart = int(start - blockStartInFile)
		}
		sliceEnd := len(blockRaw)
		if blockIdx == lastBlock {
			if v := int(end - blockStartInFile); v < sliceEnd {
				sliceEnd = v
			}
		}
		result = append(result, blockRaw[sliceStart:sliceEnd]...)
	}
	return result, nil
}
