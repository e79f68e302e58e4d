// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be: the first
// step in an episode, a middle step, or the last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment. The
// observation is a single state: environments with discrete state
// spaces store the state index in a 1-dimensional vector, while
// environments with feature-vector observations store the full feature
// vector.
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Observation mat.Vector
	Number      int
}

// New constructs a TimeStep of type t with reward r, observation o,
// and in-episode step number n
func New(t StepType, r float64, o mat.Vector, n int) TimeStep {
	return TimeStep{t, r, o, n}
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.stepType == Last
}

// State returns the discrete state index held in the observation.
// Only valid for environments with discrete state spaces.
func (t *TimeStep) State() int {
	return int(t.Observation.AtVec(0))
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Step Number:  %v"
	return fmt.Sprintf(str, t.stepType, t.Reward, t.Number)
}
