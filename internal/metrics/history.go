package metrics

import "gonum.org/v1/gonum/floats"

// EpochStats summarises one epoch.
type EpochStats struct {
	Epoch    int
	Loss     float64
	Accuracy float64
}

// History is the per-epoch record of a training run plus the optional
// held-out evaluation.
type History struct {
	Epochs []EpochStats
	Eval   *EpochStats
}

// Accumulator collects per-step loss and accuracy for one epoch.
type Accumulator struct {
	losses []float64
	accs   []float64
}

// Add records one step.
func (a *Accumulator) Add(loss, accuracy float64) {
	a.losses = append(a.losses, loss)
	a.accs = append(a.accs, accuracy)
}

// Len returns the number of recorded steps.
func (a *Accumulator) Len() int {
	return len(a.losses)
}

// Close returns the epoch means and resets the accumulator.
func (a *Accumulator) Close(epoch int) EpochStats {
	stats := EpochStats{Epoch: epoch}
	if n := float64(len(a.losses)); n > 0 {
		stats.Loss = floats.Sum(a.losses) / n
		stats.Accuracy = floats.Sum(a.accs) / n
	}
	a.losses = a.losses[:0]
	a.accs = a.accs[:0]
	return stats
}

// Last returns the most recent epoch, or false when nothing was recorded.
func (h History) Last() (EpochStats, bool) {
	if len(h.Epochs) == 0 {
		return EpochStats{}, false
	}
	return h.Epochs[len(h.Epochs)-1], true
}
