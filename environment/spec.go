package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action or an observation
type SpecType int

const (
	Action SpecType = iota
	Observation
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action or observation in an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification. The shape
// argument outlines the shape of the data described by the
// specification, t outlines what is being described, and the
// cardinality argument describes whether the described values are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewDiscreteSpec constructs a specification for a 1-dimensional
// discrete quantity enumerated as (0, 1, ..., n-1)
func NewDiscreteSpec(t SpecType, n int) Spec {
	shape := mat.NewVecDense(1, []float64{1})
	lower := mat.NewVecDense(1, []float64{0})
	upper := mat.NewVecDense(1, []float64{float64(n - 1)})
	return NewSpec(shape, t, lower, upper, Discrete)
}

// NumActions returns the number of actions available in an environment
// with a 1-dimensional discrete action space. Actions are assumed to be
// enumerated as (0, 1, ..., N).
func NumActions(e Environment) int {
	spec := e.ActionSpec()
	if spec.Cardinality != Discrete {
		panic("numactions: environment does not have discrete actions")
	}
	return int(spec.UpperBound.AtVec(0)) + 1
}

// NumStates returns the number of states in an environment with a
// discrete state space enumerated as (0, 1, ..., N).
func NumStates(e Environment) int {
	spec := e.ObservationSpec()
	if spec.Cardinality != Discrete {
		panic("numstates: environment does not have discrete states")
	}
	return int(spec.UpperBound.AtVec(0)) + 1
}
