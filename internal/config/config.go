package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"blobtrain/internal/hw"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Epochs        int     `yaml:"epochs"`
	StepsPerEpoch int     `yaml:"steps_per_epoch"`
	BatchSize     int     `yaml:"batch_size"`
	Workers       int     `yaml:"workers"`
	MaxQueueSize  int     `yaml:"max_queue_size"`
	Hidden        int     `yaml:"hidden"`
	LearningRate  float64 `yaml:"learning_rate"`
	Optimizer     string  `yaml:"optimizer"`
	Seed          uint64  `yaml:"seed"`
	LogEvery      int     `yaml:"log_every"`
	EvalBatches   int     `yaml:"eval_batches"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Epochs        int
	StepsPerEpoch int
	BatchSize     int
	Workers       int
	MaxQueueSize  int
	Hidden        int
	LearningRate  float64
	Optimizer     string
	Seed          uint64
	LogEvery      int
	EvalBatches   int
}

// Load reads and validates a Config from YAML.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parseYAML(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.StepsPerEpoch > 0 {
		c.StepsPerEpoch = o.StepsPerEpoch
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.MaxQueueSize > 0 {
		c.MaxQueueSize = o.MaxQueueSize
	}
	if o.Hidden > 0 {
		c.Hidden = o.Hidden
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.EvalBatches > 0 {
		c.EvalBatches = o.EvalBatches
	}
}

// Validate verifies the config is runnable and fills defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.StepsPerEpoch <= 0 {
		return fmt.Errorf("steps_per_epoch must be > 0 (got %d)", c.StepsPerEpoch)
	}
	if c.BatchSize < 2 {
		return fmt.Errorf("batch_size must be >= 2 (got %d)", c.BatchSize)
	}
	if c.MaxQueueSize < 0 {
		return fmt.Errorf("max_queue_size must be >= 0 (got %d)", c.MaxQueueSize)
	}
	if c.LearningRate < 0 {
		return fmt.Errorf("learning_rate must be >= 0 (got %g)", c.LearningRate)
	}
	if c.EvalBatches < 0 {
		return fmt.Errorf("eval_batches must be >= 0 (got %d)", c.EvalBatches)
	}
	switch strings.ToLower(c.Optimizer) {
	case "":
		c.Optimizer = "adam"
	case "adam", "sgd":
		c.Optimizer = strings.ToLower(c.Optimizer)
	default:
		return fmt.Errorf("optimizer must be adam or sgd (got %q)", c.Optimizer)
	}
	if c.Workers <= 0 {
		c.Workers = hw.DefaultWorkers()
	}
	if c.MaxQueueSize == 0 {
		c.MaxQueueSize = 10
	}
	if c.Hidden <= 0 {
		c.Hidden = 16
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.01
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 50
	}
	return nil
}

func parseYAML(r io.Reader) (*Config, error) {
	cfg := &Config{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: missing ':'", lineNo)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if i := strings.Index(value, " #"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
		value = strings.Trim(value, "\"'")

		var err error
		switch key {
		case "epochs":
			cfg.Epochs, err = strconv.Atoi(value)
		case "steps_per_epoch":
			cfg.StepsPerEpoch, err = strconv.Atoi(value)
		case "batch_size":
			cfg.BatchSize, err = strconv.Atoi(value)
		case "workers":
			cfg.Workers, err = strconv.Atoi(value)
		case "max_queue_size":
			cfg.MaxQueueSize, err = strconv.Atoi(value)
		case "hidden":
			cfg.Hidden, err = strconv.Atoi(value)
		case "learning_rate":
			cfg.LearningRate, err = strconv.ParseFloat(value, 64)
		case "optimizer":
			cfg.Optimizer = value
		case "seed":
			cfg.Seed, err = strconv.ParseUint(value, 10, 64)
		case "log_every":
			cfg.LogEvery, err = strconv.Atoi(value)
		case "eval_batches":
			cfg.EvalBatches, err = strconv.Atoi(value)
		default:
			return nil, fmt.Errorf("line %d: unknown key %s", lineNo, key)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
