// Package parallel provides a worker pool that compresses independent blocks
// concurrently. It exists because a Codec's CompressBlock is safe to call
// from multiple goroutines at once — block independence is exactly what
// makes that safe — so bulk ingest doesn't have to serialize on a single
// core the way a plain Writer.Write does.
package parallel

import (
	"errors"
	"runtime"
	"sync"

	"github.com/wesleyscholl/squish/codec"
)

// DefaultNumWorkers is the numWorkers value that selects the default pool
// size, runtime.GOMAXPROCS(0).
const DefaultNumWorkers = 0

// Result is the outcome of compressing a single indexed block.
type Result struct {
	// Index is the block's position in the original submission order.
	Index int
	// Compressed is the compressed payload. Nil if Err is non-nil.
	Compressed []byte
	// Meta carries any sidecar bytes the codec attached during compression.
	Meta codec.BlockMeta
	// RawLen is the length of the original uncompressed block.
	RawLen int
	// Err is non-nil if compression of this block failed.
	Err error
}

type job struct {
	index int
	raw   []byte
}

// Dispatcher runs a fixed pool of worker goroutines that compress blocks
// against a single shared Codec instance.
type Dispatcher struct {
	codec      codec.Codec
	numWorkers int

	jobChan    chan job
	resultChan chan Result

	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// NewDispatcher creates a Dispatcher that compresses blocks using c.
// numWorkers <= 0 selects runtime.GOMAXPROCS(0).
func NewDispatcher(numWorkers int, c codec.Codec) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Dispatcher{
		codec:      c,
		numWorkers: numWorkers,
	}
}

// Start launches the worker goroutines. It's called automatically by
// CompressBlocks if not already running.
func (d *Dispatcher) Start() error {
	d.runningMu.Lock()
	defer d.runningMu.Unlock()

	if d.running {
		return errors.New("parallel: dispatcher already running")
	}

	d.jobChan = make(chan job, d.numWorkers*2)
	d.resultChan = make(chan Result, d.numWorkers*2)

	d.wg.Add(d.numWorkers)
	for i := 0; i < d.numWorkers; i++ {
		go d.worker()
	}
	d.running = true
	return nil
}

// Stop shuts down the worker goroutines. Safe to call on an already-stopped
// Dispatcher.
func (d *Dispatcher) Stop() {
	d.runningMu.Lock()
	defer d.runningMu.Unlock()

	if !d.running {
		return
	}
	close(d.jobChan)
	d.wg.Wait()
	d.running = false
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobChan {
		d.resultChan <- d.compress(j)
	}
}

func (d *Dispatcher) compress(j job) Result {
	var meta codec.BlockMeta
	compressed, err := d.codec.CompressBlock(j.raw, &meta)
	return Result{
		Index:      j.index,
		Compressed: compressed,
		Meta:       meta,
		RawLen:     len(j.raw),
		Err:        err,
	}
}

// NumWorkers reports the worker goroutine count.
func (d *Dispatcher) NumWorkers() int { return d.numWorkers }

// CompressBlocks compresses every block in raws concurrently across the
// worker pool and returns their Results ordered by original index. The first
// per-block error encountered, if any, is also returned; all blocks are still
// compressed and returned even when one fails, so the caller can decide how
// to handle partial failures.
func (d *Dispatcher) CompressBlocks(raws [][]byte) ([]Result, error) {
	if len(raws) == 0 {
		return []Result{}, nil
	}

	d.runningMu.Lock()
	if !d.running {
		d.runningMu.Unlock()
		if err := d.Start(); err != nil {
			return nil, err
		}
	} else {
		d.runningMu.Unlock()
	}

	collector := NewResultsCollector(len(raws))
	go func() {
		for i, raw := range raws {
			d.jobChan <- job{index: i, raw: raw}
		}
	}()

	var firstErr error
	for range raws {
		result := <-d.resultChan
		if result.Err != nil && firstErr == nil {
			firstErr = result.Err
		}
		collector.AddResult(result)
	}
	collector.WaitForCompletion()

	results, err := collector.GetAllResults()
	if err != nil {
		return nil, err
	}
	return results, firstErr
}
