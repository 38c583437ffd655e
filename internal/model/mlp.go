package model

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

const probEpsilon = 1e-7

// MLPOptions configures NewMLP. Zero values fall back to the demo defaults.
type MLPOptions struct {
	Inputs       int
	Hidden       int
	LearningRate float64
	Optimizer    string
	Seed         uint64
}

// MLP is a two-layer binary classifier: Dense(hidden, relu) followed by
// Dense(1, sigmoid), trained with binary cross-entropy.
type MLP struct {
	inputs int
	hidden int

	w1 *mat.Dense // inputs x hidden
	b1 []float64
	w2 *mat.Dense // hidden x 1
	b2 []float64

	opt Optimizer
}

// NewMLP constructs the model with Glorot-uniform weights and zero biases.
func NewMLP(opts MLPOptions) (*MLP, error) {
	if opts.Inputs <= 0 {
		opts.Inputs = 2
	}
	if opts.Hidden <= 0 {
		opts.Hidden = 16
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.01
	}
	opt, err := NewOptimizer(opts.Optimizer, opts.LearningRate)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(opts.Seed, 0x6d6c70))
	return &MLP{
		inputs: opts.Inputs,
		hidden: opts.Hidden,
		w1:     glorot(rng, opts.Inputs, opts.Hidden),
		b1:     make([]float64, opts.Hidden),
		w2:     glorot(rng, opts.Hidden, 1),
		b2:     make([]float64, 1),
		opt:    opt,
	}, nil
}

func glorot(rng *rand.Rand, fanIn, fanOut int) *mat.Dense {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	data := make([]float64, fanIn*fanOut)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return mat.NewDense(fanIn, fanOut, data)
}

type activations struct {
	z1 *mat.Dense // pre-activation of the hidden layer
	a1 *mat.Dense
	p  *mat.Dense
}

func (m *MLP) forward(x *mat.Dense) activations {
	rows, _ := x.Dims()

	z1 := mat.NewDense(rows, m.hidden, nil)
	z1.Mul(x, m.w1)
	z1.Apply(func(_, j int, v float64) float64 { return v + m.b1[j] }, z1)

	a1 := mat.NewDense(rows, m.hidden, nil)
	a1.Apply(func(_, _ int, v float64) float64 { return math.Max(v, 0) }, z1)

	p := mat.NewDense(rows, 1, nil)
	p.Mul(a1, m.w2)
	p.Apply(func(_, _ int, v float64) float64 { return sigmoid(v + m.b2[0]) }, p)

	return activations{z1: z1, a1: a1, p: p}
}

// Predict returns the positive-class probability for each row of x.
func (m *MLP) Predict(x *mat.Dense) *mat.Dense {
	return m.forward(x).p
}

// TrainStep runs one forward/backward pass over batch and updates weights.
func (m *MLP) TrainStep(batch Batch) (StepResult, error) {
	if err := checkBatch(batch, m.inputs); err != nil {
		return StepResult{}, err
	}
	act := m.forward(batch.X)
	res := score(act.p, batch.Y)

	rows, _ := batch.X.Dims()
	n := float64(rows)

	// dL/dz2 for sigmoid + BCE collapses to (p - y) / n.
	dz2 := mat.NewDense(rows, 1, nil)
	dz2.Sub(act.p, batch.Y)
	dz2.Scale(1/n, dz2)

	dw2 := mat.NewDense(m.hidden, 1, nil)
	dw2.Mul(act.a1.T(), dz2)
	db2 := []float64{mat.Sum(dz2)}

	dz1 := mat.NewDense(rows, m.hidden, nil)
	dz1.Mul(dz2, m.w2.T())
	dz1.Apply(func(i, j int, v float64) float64 {
		if act.z1.At(i, j) <= 0 {
			return 0
		}
		return v
	}, dz1)

	dw1 := mat.NewDense(m.inputs, m.hidden, nil)
	dw1.Mul(batch.X.T(), dz1)
	db1 := make([]float64, m.hidden)
	for j := range db1 {
		db1[j] = mat.Sum(dz1.ColView(j))
	}

	m.opt.Update(
		[][]float64{m.w1.RawMatrix().Data, m.b1, m.w2.RawMatrix().Data, m.b2},
		[][]float64{dw1.RawMatrix().Data, db1, dw2.RawMatrix().Data, db2},
	)
	return res, nil
}

// Evaluate scores batch without updating weights.
func (m *MLP) Evaluate(batch Batch) (StepResult, error) {
	if err := checkBatch(batch, m.inputs); err != nil {
		return StepResult{}, err
	}
	return score(m.forward(batch.X).p, batch.Y), nil
}

func score(p, y *mat.Dense) StepResult {
	rows, _ := p.Dims()
	var loss float64
	var correct int
	for i := 0; i < rows; i++ {
		prob := math.Min(math.Max(p.At(i, 0), probEpsilon), 1-probEpsilon)
		label := y.At(i, 0)
		loss -= label*math.Log(prob) + (1-label)*math.Log(1-prob)
		predicted := 0.0
		if prob >= 0.5 {
			predicted = 1
		}
		if predicted == label {
			correct++
		}
	}
	return StepResult{
		Loss:     loss / float64(rows),
		Accuracy: float64(correct) / float64(rows),
	}
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
