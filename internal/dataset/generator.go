package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"blobtrain/internal/model"
)

// NumFeatures is the width of every generated feature row.
const NumFeatures = 2

// ErrBatchSize indicates a batch size too small to hold one sample per class.
var ErrBatchSize = errors.New("dataset: batch size must be >= 2")

var (
	signalMean     = []float64{1, 1}
	backgroundMean = []float64{-1, -1}
)

// Generator produces an endless sequence of labeled two-class blob batches.
// Signal samples are drawn from N((1,1), I) and labeled 1; background samples
// from N((-1,-1), I) and labeled 0.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	batchSize  int
	signal     *distmv.Normal
	background *distmv.Normal
}

// NewGenerator returns a Generator that draws from src. The signal half of
// each batch holds batchSize/2 rows (integer division) and the background
// half holds the remainder, so odd sizes carry one extra background row.
func NewGenerator(batchSize int, src rand.Source) (*Generator, error) {
	if batchSize < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrBatchSize, batchSize)
	}
	if src == nil {
		return nil, errors.New("dataset: nil random source")
	}
	identity := mat.NewSymDense(NumFeatures, []float64{1, 0, 0, 1})
	signal, ok := distmv.NewNormal(signalMean, identity, src)
	if !ok {
		return nil, errors.New("dataset: signal covariance not positive definite")
	}
	background, ok := distmv.NewNormal(backgroundMean, identity, src)
	if !ok {
		return nil, errors.New("dataset: background covariance not positive definite")
	}
	return &Generator{batchSize: batchSize, signal: signal, background: background}, nil
}

// BatchSize returns the number of rows in every batch.
func (g *Generator) BatchSize() int {
	return g.batchSize
}

// Split returns the per-class row counts of every batch.
func (g *Generator) Split() (signal, background int) {
	signal = g.batchSize / 2
	return signal, g.batchSize - signal
}

// Next draws a fresh batch. The sequence never ends.
func (g *Generator) Next() (model.Batch, error) {
	nSignal, _ := g.Split()
	x := mat.NewDense(g.batchSize, NumFeatures, nil)
	y := mat.NewDense(g.batchSize, 1, nil)
	for i := 0; i < g.batchSize; i++ {
		if i < nSignal {
			g.signal.Rand(x.RawRowView(i))
			y.Set(i, 0, 1)
			continue
		}
		g.background.Rand(x.RawRowView(i))
	}
	return model.Batch{X: x, Y: y}, nil
}
