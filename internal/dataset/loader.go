package dataset

import (
	"context"
	"math/rand/v2"
	"sync"

	"blobtrain/internal/model"
)

const defaultQueueSize = 10

// LoaderOptions configures the prefetching loader.
type LoaderOptions struct {
	BatchSize  int
	Seed       uint64
	NumWorkers int
	QueueSize  int
}

// StartLoader launches NumWorkers generator goroutines and returns a stream of
// batches buffered up to QueueSize. Worker w owns a generator seeded with
// (Seed, w); batches are emitted round robin across workers so the stream is
// a pure function of (Seed, NumWorkers). Both channels close once ctx is done
// or a worker fails.
func StartLoader(parent context.Context, opts LoaderOptions) (<-chan model.Batch, <-chan error, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	gens := make([]*Generator, opts.NumWorkers)
	for i := range gens {
		gen, err := NewGenerator(opts.BatchSize, WorkerSource(opts.Seed, i))
		if err != nil {
			return nil, nil, err
		}
		gens[i] = gen
	}

	ctx, cancel := context.WithCancel(parent)

	slots := make([]chan model.Batch, opts.NumWorkers)
	out := make(chan model.Batch, opts.QueueSize)
	errCh := make(chan error, opts.NumWorkers)

	var wg sync.WaitGroup
	for i, gen := range gens {
		slots[i] = make(chan model.Batch, 1)
		wg.Add(1)
		go func(gen *Generator, slot chan<- model.Batch) {
			defer wg.Done()
			defer close(slot)
			if err := worker(ctx, gen, slot); err != nil {
				errCh <- err
				cancel()
			}
		}(gen, slots[i])
	}

	go func() {
		defer close(errCh)
		defer close(out)
		defer cancel()
		runAggregator(ctx, slots, out)
		wg.Wait()
	}()

	return out, errCh, nil
}

// WorkerSource returns the random source used by loader worker id.
func WorkerSource(seed uint64, id int) rand.Source {
	return rand.NewPCG(seed, uint64(id))
}

func worker(ctx context.Context, gen *Generator, slot chan<- model.Batch) error {
	for {
		batch, err := gen.Next()
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case slot <- batch:
		}
	}
}

func runAggregator(ctx context.Context, slots []chan model.Batch, out chan<- model.Batch) {
	for next := 0; ; next = (next + 1) % len(slots) {
		var batch model.Batch
		select {
		case <-ctx.Done():
			return
		case b, ok := <-slots[next]:
			if !ok {
				return
			}
			batch = b
		}
		select {
		case <-ctx.Done():
			return
		case out <- batch:
		}
	}
}
