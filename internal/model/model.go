package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyBatch is returned when a batch carries no rows.
var ErrEmptyBatch = errors.New("model: empty batch")

// Batch represents a minibatch of features and labels.
// X has one row per example; Y is a single column of 0/1 labels.
type Batch struct {
	X *mat.Dense
	Y *mat.Dense
}

// Rows returns the number of examples in the batch.
func (b Batch) Rows() int {
	if b.X == nil {
		return 0
	}
	r, _ := b.X.Dims()
	return r
}

// StepResult carries the loss and accuracy measured on one batch.
type StepResult struct {
	Loss     float64
	Accuracy float64
}

// Model defines the minimal training functionality required by the demo.
type Model interface {
	TrainStep(batch Batch) (StepResult, error)
	Evaluate(batch Batch) (StepResult, error)
}

func checkBatch(batch Batch, inputs int) error {
	if batch.X == nil || batch.Y == nil {
		return ErrEmptyBatch
	}
	rows, cols := batch.X.Dims()
	if rows == 0 {
		return ErrEmptyBatch
	}
	if cols != inputs {
		return fmt.Errorf("model: expected %d features, got %d", inputs, cols)
	}
	yRows, yCols := batch.Y.Dims()
	if yCols != 1 {
		return fmt.Errorf("model: expected 1 label column, got %d", yCols)
	}
	if yRows != rows {
		return fmt.Errorf("model: %d feature rows but %d labels", rows, yRows)
	}
	return nil
}
