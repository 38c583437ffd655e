package model

import (
	"math"
	"testing"
)

func TestNewOptimizer(t *testing.T) {
	tests := []struct {
		name    string
		lr      float64
		wantErr bool
	}{
		{"sgd", 0.1, false},
		{"ADAM", 0.1, false},
		{"", 0.1, false},
		{"rmsprop", 0.1, true},
		{"sgd", 0, true},
	}
	for _, tc := range tests {
		_, err := NewOptimizer(tc.name, tc.lr)
		if (err != nil) != tc.wantErr {
			t.Fatalf("NewOptimizer(%q, %g) err=%v wantErr=%v", tc.name, tc.lr, err, tc.wantErr)
		}
	}
}

func TestSGDUpdate(t *testing.T) {
	params := [][]float64{{1, 2}, {3}}
	grads := [][]float64{{0.5, -1}, {2}}
	(&SGD{LR: 0.1}).Update(params, grads)
	want := [][]float64{{0.95, 2.1}, {2.8}}
	for i := range want {
		for j := range want[i] {
			if math.Abs(params[i][j]-want[i][j]) > 1e-12 {
				t.Fatalf("params[%d][%d]=%f want %f", i, j, params[i][j], want[i][j])
			}
		}
	}
}

func TestAdamFirstStepMovesByLR(t *testing.T) {
	params := [][]float64{{0, 0}}
	grads := [][]float64{{3, -0.2}}
	NewAdam(0.01).Update(params, grads)
	// Bias-corrected first step is lr * sign(g) up to epsilon.
	if math.Abs(params[0][0]+0.01) > 1e-6 || math.Abs(params[0][1]-0.01) > 1e-6 {
		t.Fatalf("unexpected first step %v", params[0])
	}
}
