// Package chainwalk implements a random-walk chain environment with
// fully known transition dynamics
package chainwalk

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/environment"
	"github.com/samuelfneumann/govalue/timestep"
)

// Actions available in the chain
const (
	Left int = iota
	Right
)

// ChainWalk is a linear chain of states with an absorbing terminal
// state at each end. The agent starts in the middle and moves
// deterministically left or right. Entering the right terminal state
// yields RightReward, entering the left terminal state LeftReward, and
// every other transition yields zero reward.
//
// States are indexed 0 (left terminal) through n+1 (right terminal),
// with interior states 1 through n. The environment's dynamics are
// deterministic, so Seed has no effect.
type ChainWalk struct {
	interior    int
	leftReward  float64
	rightReward float64

	state       int
	currentStep timestep.TimeStep
}

// New creates a chain with the argument number of interior states and
// terminal rewards. The first episode is ready to run after a Reset.
func New(interior int, leftReward, rightReward float64) (*ChainWalk, error) {
	if interior < 1 {
		return nil, fmt.Errorf("chainwalk: need at least 1 interior "+
			"state, have %d", interior)
	}
	c := &ChainWalk{
		interior:    interior,
		leftReward:  leftReward,
		rightReward: rightReward,
	}
	c.Reset()
	return c, nil
}

// start is the middle interior state
func (c *ChainWalk) start() int {
	return (c.interior + 1) / 2
}

func (c *ChainWalk) terminal(state int) bool {
	return state == 0 || state == c.interior+1
}

func (c *ChainWalk) observation(state int) mat.Vector {
	return mat.NewVecDense(1, []float64{float64(state)})
}

// Reset starts a new episode in the middle of the chain
func (c *ChainWalk) Reset() timestep.TimeStep {
	c.state = c.start()
	c.currentStep = timestep.New(timestep.First, 0,
		c.observation(c.state), 0)
	return c.currentStep
}

// Step moves the agent one state left or right
func (c *ChainWalk) Step(action int) (timestep.TimeStep, error) {
	if action != Left && action != Right {
		return timestep.TimeStep{}, fmt.Errorf("step: invalid action %d",
			action)
	}
	if c.terminal(c.state) {
		return timestep.TimeStep{}, fmt.Errorf("step: episode has ended, " +
			"call Reset")
	}

	next := c.state - 1
	if action == Right {
		next = c.state + 1
	}

	reward := 0.0
	stepType := timestep.Mid
	switch next {
	case 0:
		reward = c.leftReward
		stepType = timestep.Last
	case c.interior + 1:
		reward = c.rightReward
		stepType = timestep.Last
	}

	c.state = next
	c.currentStep = timestep.New(stepType, reward, c.observation(next),
		c.currentStep.Number+1)
	return c.currentStep, nil
}

// Seed is a no-op: the chain's dynamics are deterministic
func (c *ChainWalk) Seed(seed uint64) {}

// ObservationSpec returns the specification of the chain's states
func (c *ChainWalk) ObservationSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Observation, c.interior+2)
}

// ActionSpec returns the specification of the chain's actions
func (c *ChainWalk) ActionSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Action, 2)
}

// Close implements environment.Environment
func (c *ChainWalk) Close() error {
	return nil
}

// Transitions implements environment.Model. Terminal states absorb:
// they transition to themselves with probability 1 and zero reward.
func (c *ChainWalk) Transitions(state, action int) []environment.Transition {
	if c.terminal(state) {
		return []environment.Transition{
			{Prob: 1, NextState: state, Reward: 0, Terminal: true},
		}
	}

	next := state - 1
	if action == Right {
		next = state + 1
	}

	reward := 0.0
	switch next {
	case 0:
		reward = c.leftReward
	case c.interior + 1:
		reward = c.rightReward
	}

	return []environment.Transition{
		{
			Prob:      1,
			NextState: next,
			Reward:    reward,
			Terminal:  c.terminal(next),
		},
	}
}

func (c *ChainWalk) String() string {
	return fmt.Sprintf("ChainWalk | At: %d  |  States: %d", c.state,
		c.interior+2)
}
