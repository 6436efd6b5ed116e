package arenajson

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// BatchResult is the outcome of decoding one buffer in a DecodeBatch
// call, indexed identically to the input slice so callers can match
// results back to their source buffer without any channel bookkeeping.
type BatchResult struct {
	Value interface{}
	Err   error
}

// BatchOptions configures DecodeBatch. ArenaSize sizes the long-lived
// arena handed to each worker's decode calls; ScratchSize sizes the
// throwaway arena used for ArrayPtr counting passes. Both default to
// 64KiB when zero.
type BatchOptions struct {
	DecodeOptions
	ArenaSize   int
	ScratchSize int
	Workers     int
}

const defaultBatchArenaSize = 64 << 10

// DecodeBatch decodes each buffer independently against typ, running
// by default half as many workers as the host has logical cores
// (rounded up), sized the way the teacher
// sizes its own stream concurrency off runtime.GOMAXPROCS. Each worker
// owns a private pair of arenas for its whole lifetime and reuses them
// (Reset between buffers) rather than allocating one pair per buffer,
// since Decode itself is synchronous and single-threaded per call.
//
// newRoot must return a fresh, zeroed pointer to typ.GoType's Go type
// on every call; it is invoked once per buffer.
func DecodeBatch(buffers [][]byte, typ *TypeDescriptor, newRoot func() interface{}, opts *BatchOptions) []BatchResult {
	o := BatchOptions{}
	if opts != nil {
		o = *opts
	}
	if o.ArenaSize <= 0 {
		o.ArenaSize = defaultBatchArenaSize
	}
	if o.ScratchSize <= 0 {
		o.ScratchSize = defaultBatchArenaSize
	}
	workers := o.Workers
	if workers <= 0 {
		workers = (cpuid.CPU.LogicalCores + 1) / 2
		if workers < 1 {
			workers = (runtime.GOMAXPROCS(0) + 1) / 2
		}
		if workers < 1 {
			workers = 1
		}
	}
	if workers > len(buffers) {
		workers = len(buffers)
	}
	if workers < 1 {
		return nil
	}

	results := make([]BatchResult, len(buffers))
	jobs := make(chan int, len(buffers))
	for i := range buffers {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			longArena := NewArena(o.ArenaSize, "batch-long")
			scratchArena := NewArena(o.ScratchSize, "batch-scratch")
			for i := range jobs {
				longArena.Reset()
				scratchArena.Reset()
				root := newRoot()
				decodeOpts := o.DecodeOptions
				err := DecodeInto(buffers[i], root, typ, longArena, scratchArena, &decodeOpts)
				if err != nil {
					results[i] = BatchResult{Err: err}
					continue
				}
				results[i] = BatchResult{Value: root}
			}
		}()
	}
	wg.Wait()
	return results
}
