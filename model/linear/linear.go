// Package linear implements a linear value function over observation
// features
package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/model"
)

// Linear predicts w·x + b for an observation x. Its trainable
// parameters are the weight vector and, optionally, the bias.
type Linear struct {
	weights *mat.VecDense
	bias    float64
	useBias bool
}

// New constructs a zero-initialized linear value function over
// features input features
func New(features int, bias bool) *Linear {
	return &Linear{
		weights: mat.NewVecDense(features, nil),
		useBias: bias,
	}
}

// Weights returns the model's weight vector. The returned vector
// shares memory with the model.
func (l *Linear) Weights() *mat.VecDense {
	return l.weights
}

// Bias returns the model's bias term
func (l *Linear) Bias() float64 {
	return l.bias
}

// Value implements model.ValueFunction
func (l *Linear) Value(obs mat.Vector) (float64, error) {
	if obs.Len() != l.weights.Len() {
		return 0, fmt.Errorf("value: observation has %d features, want %d",
			obs.Len(), l.weights.Len())
	}
	v := mat.Dot(l.weights, obs)
	if l.useBias {
		v += l.bias
	}
	return v, nil
}

// Gradient implements model.ValueFunction. For a linear model the
// gradient with respect to the weights is the observation itself, and
// the gradient with respect to the bias is 1.
func (l *Linear) Gradient(obs mat.Vector) (float64, model.Gradients, error) {
	v, err := l.Value(obs)
	if err != nil {
		return 0, nil, err
	}

	wGrad := make([]float64, obs.Len())
	for i := range wGrad {
		wGrad[i] = obs.AtVec(i)
	}

	grads := model.Gradients{wGrad}
	if l.useBias {
		grads = append(grads, []float64{1.0})
	}
	return v, grads, nil
}

// AddScaled implements model.ValueFunction
func (l *Linear) AddScaled(scale float64, grads model.Gradients) error {
	want := 1
	if l.useBias {
		want = 2
	}
	if len(grads) != want {
		return fmt.Errorf("addscaled: have %d gradients, want %d",
			len(grads), want)
	}
	if len(grads[0]) != l.weights.Len() {
		return fmt.Errorf("addscaled: weight gradient has %d elements, "+
			"want %d", len(grads[0]), l.weights.Len())
	}

	l.weights.AddScaledVec(l.weights,
		scale, mat.NewVecDense(len(grads[0]), grads[0]))
	if l.useBias {
		l.bias += scale * grads[1][0]
	}
	return nil
}
