package model

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Optimizer applies gradients to parameters in place. params and grads are
// parallel slices; params[i] and grads[i] have equal length.
type Optimizer interface {
	Update(params, grads [][]float64)
}

// NewOptimizer returns the optimizer registered under name.
func NewOptimizer(name string, lr float64) (Optimizer, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("optimizer: learning rate must be > 0 (got %g)", lr)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sgd":
		return &SGD{LR: lr}, nil
	case "", "adam":
		return NewAdam(lr), nil
	default:
		return nil, fmt.Errorf("optimizer: unknown optimizer %q", name)
	}
}

// SGD is plain stochastic gradient descent.
type SGD struct {
	LR float64
}

// Update implements Optimizer.
func (o *SGD) Update(params, grads [][]float64) {
	for i := range params {
		floats.AddScaled(params[i], -o.LR, grads[i])
	}
}

// Adam keeps per-parameter first and second moment estimates.
type Adam struct {
	LR      float64
	Beta1   float64
	Beta2   float64
	Epsilon float64

	step int
	m    [][]float64
	v    [][]float64
}

// NewAdam returns Adam with the usual defaults.
func NewAdam(lr float64) *Adam {
	return &Adam{LR: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-7}
}

// Update implements Optimizer.
func (o *Adam) Update(params, grads [][]float64) {
	if o.m == nil {
		o.m = make([][]float64, len(params))
		o.v = make([][]float64, len(params))
		for i, p := range params {
			o.m[i] = make([]float64, len(p))
			o.v[i] = make([]float64, len(p))
		}
	}
	o.step++
	lrT := o.LR * math.Sqrt(1-math.Pow(o.Beta2, float64(o.step))) / (1 - math.Pow(o.Beta1, float64(o.step)))
	for i, p := range params {
		g := grads[i]
		m, v := o.m[i], o.v[i]
		for j := range p {
			m[j] = o.Beta1*m[j] + (1-o.Beta1)*g[j]
			v[j] = o.Beta2*v[j] + (1-o.Beta2)*g[j]*g[j]
			p[j] -= lrT * m[j] / (math.Sqrt(v[j]) + o.Epsilon)
		}
	}
}
