package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const demo = `# demo
epochs: 5
steps_per_epoch: 100
batch_size: 100
workers: 1
max_queue_size: 10 # prefetch depth
hidden: 16
learning_rate: 0.01
optimizer: "adam"
seed: 42
log_every: 25
eval_batches: 3
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte(demo), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Epochs:        5,
		StepsPerEpoch: 100,
		BatchSize:     100,
		Workers:       1,
		MaxQueueSize:  10,
		Hidden:        16,
		LearningRate:  0.01,
		Optimizer:     "adam",
		Seed:          42,
		LogEvery:      25,
		EvalBatches:   3,
	}
	if *cfg != want {
		t.Fatalf("unexpected config %+v", *cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := map[string]string{
		"missing colon": "epochs 5\n",
		"unknown key":   "colour: blue\n",
		"bad int":       "batch_size: many\n",
		"bad float":     "learning_rate: fast\n",
		"negative seed": "seed: -1\n",
	}
	for name, body := range tests {
		if _, err := parseYAML(strings.NewReader(body)); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Epochs: 1, StepsPerEpoch: 1, BatchSize: 2}
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Workers < 1 || cfg.MaxQueueSize != 10 || cfg.Hidden != 16 || cfg.LogEvery != 50 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Optimizer != "adam" || cfg.LearningRate != 0.01 {
		t.Fatalf("optimizer defaults not applied: %+v", cfg)
	}

	bad := []func(c *Config){
		func(c *Config) { c.Epochs = 0 },
		func(c *Config) { c.StepsPerEpoch = -1 },
		func(c *Config) { c.BatchSize = 1 },
		func(c *Config) { c.BatchSize = 0 },
		func(c *Config) { c.MaxQueueSize = -2 },
		func(c *Config) { c.Optimizer = "lbfgs" },
		func(c *Config) { c.EvalBatches = -1 },
	}
	for i, mutate := range bad {
		cfg := base()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, cfg)
		}
	}

	var nilCfg *Config
	if err := nilCfg.Validate(); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{Epochs: 5, BatchSize: 100, Optimizer: "adam", Seed: 42}
	cfg.ApplyOverrides(Overrides{BatchSize: 32, Optimizer: "sgd", Workers: 4})
	if cfg.BatchSize != 32 || cfg.Optimizer != "sgd" || cfg.Workers != 4 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Epochs != 5 || cfg.Seed != 42 {
		t.Fatalf("zero overrides clobbered values: %+v", cfg)
	}
}
