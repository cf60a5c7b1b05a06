package squish

import (
	"fmt"

	"github.com/wesleyscholl/squish/codec"
	"github.com/wesleyscholl/squish/parallel"
)

// ParallelOptions configures CreateParallel.
type ParallelOptions struct {
	// NumWorkers is the size of the compression worker pool. <= 0 selects
	// runtime.GOMAXPROCS(0).
	NumWorkers int
	// BatchBlocks is how many blocks to buffer before dispatching them to
	// the worker pool together. Larger batches give the pool more to chew on
	// per round-trip at the cost of holding more raw bytes in memory at once.
	BatchBlocks int
}

// DefaultBatchBlocks is the batch size CreateParallel uses when
// ParallelOptions.BatchBlocks is <= 0.
const DefaultBatchBlocks = 32

// ParallelWriter ingests bulk data into an ANCF1 file, compressing batches of
// independent blocks concurrently across a worker pool before writing them to
// disk in order. It's legal only because Codec implementations guarantee
// each block compresses without referencing any other block's state, so the
// worker pool can run CompressBlock for many blocks at once against a single
// shared Codec instance.
//
// The on-disk result is byte-for-byte what a plain Writer would have
// produced from the same input; ParallelWriter only changes how the
// compression work is scheduled, not the format.
type ParallelWriter struct {
	w          *Writer
	dispatcher *parallel.Dispatcher

	pending []byte
	batch   [][]byte
}

// CreateParallel creates a new ANCF1 file at path and returns a ParallelWriter
// that compresses incoming blocks across a worker pool.
func CreateParallel(path string, c codec.Codec, blockSize uint32, opts ParallelOptions) (*ParallelWriter, error) {
	w, err := Create(path, c, blockSize)
	if err != nil {
		return nil, err
	}

	batchBlocks := opts.BatchBlocks
	if batchBlocks <= 0 {
		batchBlocks = DefaultBatchBlocks
	}

	return &ParallelWriter{
		w:          w,
		dispatcher: parallel.NewDispatcher(opts.NumWorkers, c),
		pending:    make([]byte, 0, int(blockSize)*2),
		batch:      make([][]byte, 0, batchBlocks),
	}, nil
}

// Write buffers data and, once enough whole blocks have accumulated to fill
// a batch, compresses that batch concurrently and writes it to disk in
// order.
func (pw *ParallelWriter) Write(data []byte) error {
	pw.pending = append(pw.pending, data...)

	blockSize := int(pw.w.blockSize)
	for len(pw.pending) >= blockSize {
		block := make([]byte, blockSize)
		copy(block, pw.pending[:blockSize])
		pw.batch = append(pw.batch, block)

		remaining := len(pw.pending) - blockSize
		copy(pw.pending, pw.pending[blockSize:])
		pw.pending = pw.pending[:remaining]

		if len(pw.batch) == cap(pw.batch) {
			if err := pw.flushBatch(); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushBatch compresses every buffered whole block concurrently and appends
// the results to the file in original order.
func (pw *ParallelWriter) flushBatch() error {
	if len(pw.batch) == 0 {
		return nil
	}
	results, err := pw.dispatcher.CompressBlocks(pw.batch)
	if err != nil {
		return fmt.Errorf("squish: parallel compress: %w", err)
	}
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("squish: parallel compress block %d: %w", r.Index, r.Err)
		}
		if err := pw.w.appendCompressedBlock(r.RawLen, r.Compressed, r.Meta); err != nil {
			return err
		}
	}
	pw.batch = pw.batch[:0]
	return nil
}

// Finish flushes any buffered whole blocks and any trailing partial block,
// writes the index and footer, seals the file with the final header, stops
// the worker pool, and closes the file. It reports the total number of
// blocks written.
func (pw *ParallelWriter) Finish() (uint64, error) {
	if err := pw.flushBatch(); err != nil {
		pw.dispatcher.Stop()
		return 0, err
	}
	pw.dispatcher.Stop()

	if len(pw.pending) > 0 {
		remaining := pw.pending
		pw.pending = nil
		var meta codec.BlockMeta
		compressed, err := pw.w.codec.CompressBlock(remaining, &meta)
		if err != nil {
			pw.w.file.Close()
			return 0, fmt.Errorf("squish: compress final partial block: %w", err)
		}
		if err := pw.w.appendCompressedBlock(len(remaining), compressed, meta); err != nil {
			return 0, err
		}
	}

	return pw.w.seal()
}
