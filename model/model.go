// Package model outlines the value-function approximator consumed by
// prediction algorithms. A model is owned by the caller: algorithms
// that learn a model mutate its parameters in place through AddScaled
// and return the same model they were given.
package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ValueFunction is a differentiable function from observations to a
// scalar value estimate
type ValueFunction interface {
	// Value evaluates the model at a single observation
	Value(obs mat.Vector) (float64, error)

	// Gradient evaluates the model at a single observation and
	// returns the gradient of the prediction with respect to every
	// trainable parameter. The returned gradients are owned by the
	// caller and remain valid after later calls.
	Gradient(obs mat.Vector) (float64, Gradients, error)

	// AddScaled adds scale * grads to the trainable parameters in
	// place. The gradients must come from a Gradient call on the
	// same model.
	AddScaled(scale float64, grads Gradients) error
}

// Gradients holds the gradient of a scalar prediction with respect to
// each trainable parameter tensor, one flat slice per tensor, in the
// model's parameter order.
type Gradients [][]float64

// Norm returns the global norm of the gradients: the L2 norm of all
// parameter gradients concatenated into a single vector.
func (g Gradients) Norm() float64 {
	sum := 0.0
	for _, param := range g {
		n := floats.Norm(param, 2)
		sum += n * n
	}
	return math.Sqrt(sum)
}
