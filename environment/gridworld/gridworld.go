// Package gridworld implements 2D gridworld environments with known
// transition dynamics
package gridworld

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/environment"
	"github.com/samuelfneumann/govalue/timestep"
)

// Actions available in a GridWorld
const (
	Left int = iota
	Right
	Up
	Down
)

// NumActions is the size of the GridWorld action space
const NumActions int = 4

// GridWorld is an r × c grid of states indexed row-major. The agent
// moves deterministically in the four cardinal directions; moves off
// the edge of the grid leave the position unchanged. Entering a goal
// cell ends the episode with GoalReward; every other step yields
// StepReward.
type GridWorld struct {
	r, c       int
	start      int
	goals      map[int]bool
	stepReward float64
	goalReward float64

	position    int
	currentStep timestep.TimeStep
}

// New creates a GridWorld with r rows and c columns, starting position
// (x, y), and goal positions given by parallel slices goalX, goalY.
// Coordinates are (column, row) with (0, 0) the bottom-left cell.
func New(x, y, r, c int, goalX, goalY []int, stepReward,
	goalReward float64) (*GridWorld, error) {
	if x < 0 || x >= c || y < 0 || y >= r {
		return nil, fmt.Errorf("gridworld: start (%d, %d) outside %d × %d "+
			"grid", x, y, r, c)
	}
	if len(goalX) != len(goalY) {
		return nil, fmt.Errorf("gridworld: goal X length (%d) != goal Y "+
			"length (%d)", len(goalX), len(goalY))
	}

	goals := make(map[int]bool, len(goalX))
	for i := range goalX {
		if goalX[i] < 0 || goalX[i] >= c || goalY[i] < 0 || goalY[i] >= r {
			return nil, fmt.Errorf("gridworld: goal (%d, %d) outside "+
				"%d × %d grid", goalX[i], goalY[i], r, c)
		}
		goals[cToInd(goalX[i], goalY[i], c)] = true
	}

	g := &GridWorld{
		r:          r,
		c:          c,
		start:      cToInd(x, y, c),
		goals:      goals,
		stepReward: stepReward,
		goalReward: goalReward,
	}
	g.Reset()
	return g, nil
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// AtGoal returns whether state is a goal cell
func (g *GridWorld) AtGoal(state int) bool {
	return g.goals[state]
}

// move returns the state reached by taking action in state
func (g *GridWorld) move(state, action int) int {
	x, y := indToC(state, g.c)

	switch action {
	case Left:
		if x > 0 {
			x--
		}
	case Right:
		if x < g.c-1 {
			x++
		}
	case Up:
		if y < g.r-1 {
			y++
		}
	case Down:
		if y > 0 {
			y--
		}
	}
	return cToInd(x, y, g.c)
}

func (g *GridWorld) observation(state int) mat.Vector {
	return mat.NewVecDense(1, []float64{float64(state)})
}

// Reset starts a new episode at the starting position
func (g *GridWorld) Reset() timestep.TimeStep {
	g.position = g.start
	g.currentStep = timestep.New(timestep.First, 0,
		g.observation(g.position), 0)
	return g.currentStep
}

// Step takes a single action in the GridWorld
func (g *GridWorld) Step(action int) (timestep.TimeStep, error) {
	if action < 0 || action >= NumActions {
		return timestep.TimeStep{}, fmt.Errorf("step: invalid action %d",
			action)
	}
	if g.currentStep.Last() {
		return timestep.TimeStep{}, fmt.Errorf("step: episode has ended, " +
			"call Reset")
	}

	next := g.move(g.position, action)

	reward := g.stepReward
	stepType := timestep.Mid
	if g.AtGoal(next) {
		reward = g.goalReward
		stepType = timestep.Last
	}

	g.position = next
	g.currentStep = timestep.New(stepType, reward, g.observation(next),
		g.currentStep.Number+1)
	return g.currentStep, nil
}

// Seed is a no-op: the GridWorld's dynamics are deterministic
func (g *GridWorld) Seed(seed uint64) {}

// ObservationSpec returns the specification of the GridWorld's states
func (g *GridWorld) ObservationSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Observation, g.r*g.c)
}

// ActionSpec returns the specification of the GridWorld's actions
func (g *GridWorld) ActionSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Action, NumActions)
}

// Close implements environment.Environment
func (g *GridWorld) Close() error {
	return nil
}

// Transitions implements environment.Model. Goal cells absorb: they
// transition to themselves with probability 1 and zero reward.
func (g *GridWorld) Transitions(state, action int) []environment.Transition {
	if g.AtGoal(state) {
		return []environment.Transition{
			{Prob: 1, NextState: state, Reward: 0, Terminal: true},
		}
	}

	next := g.move(state, action)
	reward := g.stepReward
	if g.AtGoal(next) {
		reward = g.goalReward
	}

	return []environment.Transition{
		{Prob: 1, NextState: next, Reward: reward, Terminal: g.AtGoal(next)},
	}
}

func (g *GridWorld) String() string {
	x, y := indToC(g.position, g.c)
	return fmt.Sprintf("GridWorld | At: (%d, %d)  |  Bounds: (%d, %d)",
		x, y, g.r, g.c)
}

// cToInd converts coordinates (x, y) to a row-major state index
func cToInd(x, y, c int) int {
	return y*c + x
}

// indToC converts a row-major state index to (x, y) coordinates
func indToC(ind, c int) (int, int) {
	y := ind / c
	x := ind - y*c
	return x, y
}
