package squish

import (
	"fmt"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/wesleyscholl/squish/codec"
	"github.com/wesleyscholl/squish/format"
)

// Writer is a streaming writer for ANCF1 files.
//
// Call Write any number of times with arbitrary-sized byte slices; the
// writer accumulates data and flushes independent compressed blocks whenever
// blockSize bytes of raw data have been gathered. Call Finish to flush any
// remaining partial block, append the block index and footer, and seal the
// file by writing back the final header.
//
// A Writer is not safe for concurrent use; its file cursor is shared mutable
// state. See CreateParallel for ingesting many blocks concurrently.
type Writer struct {
	file      *os.File
	codec     codec.Codec
	blockSize uint32

	pending []byte
	entries []format.BlockEntry

	currentOffset uint64
}

// Create creates a new ANCF1 file at path, overwriting any existing file.
// blockSize controls the nominal raw bytes per compressed block; use
// format.DefaultBlockSize if unsure.
func Create(path string, c codec.Codec, blockSize uint32) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("squish: create %s: %w", path, err)
	}

	// Placeholder header, overwritten with real values in Finish.
	if _, err := f.Write(make([]byte, format.HeaderSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf("squish: write placeholder header: %w", err)
	}

	return &Writer{
		file:          f,
		codec:         c,
		blockSize:     blockSize,
		pending:       make([]byte, 0, blockSize*2),
		currentOffset: format.HeaderSize,
	}, nil
}

// Write buffers data and flushes complete blocks as they fill up.
func (w *Writer) Write(data []byte) error {
	w.pending = append(w.pending, data...)
	for uint32(len(w.pending)) >= w.blockSize {
		raw := w.pending[:w.blockSize]
		if err := w.flushBlock(raw); err != nil {
			return err
		}
		// Compact the remainder to the front so pending's backing array
		// doesn't grow without bound across many Write calls.
		remaining := len(w.pending) - int(w.blockSize)
		copy(w.pending, w.pending[w.blockSize:])
		w.pending = w.pending[:remaining]
	}
	return nil
}

// flushBlock compresses raw as a single independent block and appends it to
// the file.
func (w *Writer) flushBlock(raw []byte) error {
	var meta codec.BlockMeta
	compressed, err := w.codec.CompressBlock(raw, &meta)
	if err != nil {
		return fmt.Errorf("squish: compress block %d: %w", len(w.entries), err)
	}
	return w.appendCompressedBlock(len(raw), compressed, meta)
}

// appendCompressedBlock writes an already-compressed block's on-disk bytes
// (optional sidecar prefix, then payload) and records its index entry.
// rawLen is the length of the original uncompressed block the codec
// produced compressed from. Used directly by ParallelWriter, which computes
// compressed/meta ahead of time across a worker pool.
func (w *Writer) appendCompressedBlock(rawLen int, compressed []byte, meta codec.BlockMeta) error {
	checksum := xxh3.Hash(compressed)

	blockOffset := w.currentOffset
	metadataLen := uint16(len(meta.Sidecar))

	if metadataLen > 0 {
		lenPrefix := []byte{byte(metadataLen), byte(metadataLen >> 8)}
		if _, err := w.file.Write(lenPrefix); err != nil {
			return fmt.Errorf("squish: write metadata length: %w", err)
		}
		if _, err := w.file.Write(meta.Sidecar); err != nil {
			return fmt.Errorf("squish: write metadata sidecar: %w", err)
		}
		w.currentOffset += 2 + uint64(metadataLen)
	}

	if _, err := w.file.Write(compressed); err != nil {
		return fmt.Errorf("squish: write block payload: %w", err)
	}
	w.currentOffset += uint64(len(compressed))

	w.entries = append(w.entries, format.BlockEntry{
		Offset:        blockOffset,
		CompressedLen: uint32(len(compressed)),
		RawLen:        uint32(rawLen),
		Checksum:      checksum,
		MetadataLen:   metadataLen,
	})
	return nil
}

// Finish flushes any remaining buffered data, writes the block index and
// footer, seals the file with the final header, and closes it. The Writer
// must not be used after Finish returns. It reports the total number of
// blocks written.
func (w *Writer) Finish() (uint64, error) {
	if len(w.pending) > 0 {
		remaining := w.pending
		w.pending = nil
		if err := w.flushBlock(remaining); err != nil {
			w.file.Close()
			return 0, err
		}
	}
	return w.seal()
}

// seal writes the block index, footer, and final header, then closes the
// file. Shared by Writer.Finish and ParallelWriter.Finish, both of which have
// already flushed every block by the time they call it.
func (w *Writer) seal() (uint64, error) {
	indexOffset := w.currentOffset
	entryBuf := make([]byte, format.BlockEntrySize)
	for _, e := range w.entries {
		if err := e.Encode(entryBuf); err != nil {
			w.file.Close()
			return 0, fmt.Errorf("squish: encode block entry: %w", err)
		}
		if _, err := w.file.Write(entryBuf); err != nil {
			w.file.Close()
			return 0, fmt.Errorf("squish: write block index: %w", err)
		}
	}
	w.currentOffset += uint64(len(w.entries)) * format.BlockEntrySize

	footer := make([]byte, format.FooterSize)
	for i := 0; i < format.FooterSize; i++ {
		footer[i] = byte(indexOffset >> (8 * i))
	}
	if _, err := w.file.Write(footer); err != nil {
		w.file.Close()
		return 0, fmt.Errorf("squish: write footer: %w", err)
	}

	blockCount := uint64(len(w.entries))
	header := format.Header{
		Version:    format.Version,
		CodecID:    w.codec.ID(),
		BlockSize:  w.blockSize,
		BlockCount: blockCount,
		Flags:      format.FlagHasChecksum,
	}
	headerBuf := make([]byte, format.HeaderSize)
	if err := header.Encode(headerBuf); err != nil {
		w.file.Close()
		return 0, fmt.Errorf("squish: encode header: %w", err)
	}
	if _, err := w.file.Seek(0, 0); err != nil {
		w.file.Close()
		return 0, fmt.Errorf("squish: seek to header: %w", err)
	}
	if _, err := w.file.Write(headerBuf); err != nil {
		w.file.Close()
		return 0, fmt.Errorf("squish: rewrite header: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return 0, fmt.Errorf("squish: close file: %w", err)
	}
	return blockCount, nil
}
