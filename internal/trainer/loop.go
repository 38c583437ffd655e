package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"blobtrain/internal/dataset"
	"blobtrain/internal/metrics"
	"blobtrain/internal/model"
)

// evalStream is the worker id reserved for the held-out evaluation generator.
// Loader workers use ids 0..NumWorkers-1, so this never collides.
const evalStream = math.MaxInt32

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Epochs        int
	StepsPerEpoch int
	BatchSize     int
	NumWorkers    int
	QueueSize     int
	Hidden        int
	LearningRate  float64
	Optimizer     string
	Seed          uint64
	LogEvery      int
	EvalBatches   int
}

// Run executes the training workload.
func Run(ctx context.Context, cfg RunConfig) (metrics.History, error) {
	var hist metrics.History
	if cfg.Epochs <= 0 {
		return hist, errors.New("trainer: epochs must be > 0")
	}
	if cfg.StepsPerEpoch <= 0 {
		return hist, errors.New("trainer: steps per epoch must be > 0")
	}
	if cfg.BatchSize < 2 {
		return hist, fmt.Errorf("trainer: %w (got %d)", dataset.ErrBatchSize, cfg.BatchSize)
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 50
	}
	if cfg.BatchSize%2 != 0 {
		log.Printf("batch_size=%d is odd: batches carry %d signal and %d background rows",
			cfg.BatchSize, cfg.BatchSize/2, cfg.BatchSize-cfg.BatchSize/2)
	}

	mdl, err := model.NewMLP(model.MLPOptions{
		Inputs:       dataset.NumFeatures,
		Hidden:       cfg.Hidden,
		LearningRate: cfg.LearningRate,
		Optimizer:    cfg.Optimizer,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return hist, fmt.Errorf("trainer: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches, loaderErr, err := dataset.StartLoader(ctx, dataset.LoaderOptions{
		BatchSize:  cfg.BatchSize,
		Seed:       cfg.Seed,
		NumWorkers: cfg.NumWorkers,
		QueueSize:  cfg.QueueSize,
	})
	if err != nil {
		return hist, fmt.Errorf("trainer: %w", err)
	}

	var window metrics.Window
	var epochAcc metrics.Accumulator
	step := 0

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		for i := 0; i < cfg.StepsPerEpoch; i++ {
			step++
			startData := time.Now()
			batch, err := nextBatch(ctx, batches, loaderErr)
			if err != nil {
				return hist, err
			}
			dataTime := time.Since(startData)

			startCompute := time.Now()
			res, err := mdl.TrainStep(batch)
			if err != nil {
				return hist, fmt.Errorf("trainer: step %d: %w", step, err)
			}
			computeTime := time.Since(startCompute)

			window.Record(batch.Rows(), dataTime, computeTime, res.Loss, res.Accuracy)
			epochAcc.Add(res.Loss, res.Accuracy)

			if step%cfg.LogEvery == 0 {
				snap := window.Snapshot()
				log.Printf("epoch=%d step=%d samples_per_sec=%.1f data_ms=%.2f compute_ms=%.2f loss=%.4f acc=%.4f",
					epoch,
					step,
					snap.SamplesPerSec,
					snap.AvgDataMS,
					snap.AvgComputeMS,
					snap.LastLoss,
					snap.AvgAccuracy,
				)
			}
		}
		stats := epochAcc.Close(epoch)
		hist.Epochs = append(hist.Epochs, stats)
		log.Printf("epoch=%d/%d loss=%.4f acc=%.4f", epoch, cfg.Epochs, stats.Loss, stats.Accuracy)
	}

	if cfg.EvalBatches > 0 {
		eval, err := evaluate(ctx, mdl, cfg)
		if err != nil {
			return hist, err
		}
		hist.Eval = &eval
		log.Printf("eval batches=%d loss=%.4f acc=%.4f", cfg.EvalBatches, eval.Loss, eval.Accuracy)
	}

	return hist, nil
}

func nextBatch(ctx context.Context, batches <-chan model.Batch, errs <-chan error) (model.Batch, error) {
	for {
		select {
		case <-ctx.Done():
			return model.Batch{}, ctx.Err()
		case err, ok := <-errs:
			if ok && err != nil {
				return model.Batch{}, fmt.Errorf("trainer: loader: %w", err)
			}
			if !ok {
				errs = nil
			}
		case batch, ok := <-batches:
			if !ok {
				if err := ctx.Err(); err != nil {
					return model.Batch{}, err
				}
				return model.Batch{}, errors.New("trainer: loader closed")
			}
			return batch, nil
		}
	}
}

func evaluate(ctx context.Context, mdl model.Model, cfg RunConfig) (metrics.EpochStats, error) {
	gen, err := dataset.NewGenerator(cfg.BatchSize, dataset.WorkerSource(cfg.Seed, evalStream))
	if err != nil {
		return metrics.EpochStats{}, fmt.Errorf("trainer: %w", err)
	}
	var acc metrics.Accumulator
	for i := 0; i < cfg.EvalBatches; i++ {
		if err := ctx.Err(); err != nil {
			return metrics.EpochStats{}, err
		}
		batch, err := gen.Next()
		if err != nil {
			return metrics.EpochStats{}, fmt.Errorf("trainer: eval: %w", err)
		}
		res, err := mdl.Evaluate(batch)
		if err != nil {
			return metrics.EpochStats{}, fmt.Errorf("trainer: eval: %w", err)
		}
		acc.Add(res.Loss, res.Accuracy)
	}
	return acc.Close(0), nil
}
