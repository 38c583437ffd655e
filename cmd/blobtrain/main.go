package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"blobtrain/internal/config"
	"blobtrain/internal/hw"
	"blobtrain/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "configs/demo.yaml", "Path to YAML config")
	epochs := flag.Int("epochs", 0, "Number of training epochs")
	stepsPerEpoch := flag.Int("steps-per-epoch", 0, "Training steps per epoch")
	batchSize := flag.Int("batch-size", 0, "Batch size (>= 2, even recommended)")
	workers := flag.Int("workers", 0, "Number of batch generator workers")
	maxQueueSize := flag.Int("max-queue-size", 0, "Prefetch queue depth")
	hidden := flag.Int("hidden", 0, "Hidden layer width")
	lr := flag.Float64("lr", 0, "Learning rate")
	optimizer := flag.String("optimizer", "", "Optimizer: adam or sgd")
	seed := flag.Uint64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Log every N steps")
	evalBatches := flag.Int("eval-batches", 0, "Held-out batches evaluated after training")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cfg.ApplyOverrides(config.Overrides{
		Epochs:        *epochs,
		StepsPerEpoch: *stepsPerEpoch,
		BatchSize:     *batchSize,
		Workers:       *workers,
		MaxQueueSize:  *maxQueueSize,
		Hidden:        *hidden,
		LearningRate:  *lr,
		Optimizer:     *optimizer,
		Seed:          *seed,
		LogEvery:      *logEvery,
		EvalBatches:   *evalBatches,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Print(hw.Describe())
	log.Printf("epochs=%d steps_per_epoch=%d batch_size=%d workers=%d max_queue_size=%d optimizer=%s",
		cfg.Epochs, cfg.StepsPerEpoch, cfg.BatchSize, cfg.Workers, cfg.MaxQueueSize, cfg.Optimizer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCfg := trainer.RunConfig{
		Epochs:        cfg.Epochs,
		StepsPerEpoch: cfg.StepsPerEpoch,
		BatchSize:     cfg.BatchSize,
		NumWorkers:    cfg.Workers,
		QueueSize:     cfg.MaxQueueSize,
		Hidden:        cfg.Hidden,
		LearningRate:  cfg.LearningRate,
		Optimizer:     cfg.Optimizer,
		Seed:          cfg.Seed,
		LogEvery:      cfg.LogEvery,
		EvalBatches:   cfg.EvalBatches,
	}

	hist, err := trainer.Run(ctx, runCfg)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}
	if last, ok := hist.Last(); ok {
		log.Printf("done epochs=%d final_loss=%.4f final_acc=%.4f", len(hist.Epochs), last.Loss, last.Accuracy)
	}
}
