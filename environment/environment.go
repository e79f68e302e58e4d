// Package environment outlines the interfaces through which value
// estimation algorithms interact with Markov decision processes.
// Environments are external collaborators: the algorithms in this
// module consume them but place no requirements on their internals.
package environment

import (
	"fmt"

	"github.com/samuelfneumann/govalue/timestep"
)

// Environment implements a simulated Markov decision process with a
// discrete action space. Environments are assumed synchronous: Step
// blocks until the transition completes.
//
// An episode starts with Reset and ends when Step returns a TimeStep
// for which Last() is true. An environment with no terminal condition
// never ends an episode; episodic algorithms run on such an
// environment will loop indefinitely unless they impose their own
// step cap.
type Environment interface {
	// Reset starts a new episode and returns its first timestep
	Reset() timestep.TimeStep

	// Step takes an action in the environment. Errors are propagated
	// unmodified to the caller, for example on out-of-range actions.
	Step(action int) (timestep.TimeStep, error)

	// Seed fixes all randomness of the environment, if any
	Seed(seed uint64)

	ObservationSpec() Spec
	ActionSpec() Spec

	// Close releases any resources the environment holds
	Close() error
}

// Transition describes one possible outcome of taking an action in a
// state of a tabular environment with known dynamics.
type Transition struct {
	Prob      float64
	NextState int
	Reward    float64
	Terminal  bool
}

// Model is an Environment whose transition dynamics are fully known.
// Transitions returns every possible outcome of taking action in
// state; the probabilities of the returned outcomes must sum to 1.
type Model interface {
	Environment
	Transitions(state, action int) []Transition
}

// CheckTransitions verifies that the outcome probabilities of every
// (state, action) pair of a Model sum to 1 within tolerance.
func CheckTransitions(m Model, tol float64) error {
	states := NumStates(m)
	actions := NumActions(m)

	for s := 0; s < states; s++ {
		for a := 0; a < actions; a++ {
			total := 0.0
			for _, tr := range m.Transitions(s, a) {
				total += tr.Prob
			}
			if diff := total - 1.0; diff > tol || diff < -tol {
				return fmt.Errorf("checktransitions: probabilities for "+
					"state %d action %d sum to %v, not 1", s, a, total)
			}
		}
	}
	return nil
}
