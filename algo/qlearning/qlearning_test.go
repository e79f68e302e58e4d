package qlearning

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/algo"
	"github.com/samuelfneumann/govalue/environment"
	"github.com/samuelfneumann/govalue/environment/gridworld"
	"github.com/samuelfneumann/govalue/timestep"
	"github.com/samuelfneumann/govalue/tracker"
)

// loop is a single-state, single-action environment that never
// terminates: every step stays in state 0 and yields a fixed reward
type loop struct {
	reward  float64
	stepNum int
}

func (l *loop) obs() mat.Vector {
	return mat.NewVecDense(1, []float64{0})
}

func (l *loop) Reset() timestep.TimeStep {
	l.stepNum = 0
	return timestep.New(timestep.First, 0, l.obs(), 0)
}

func (l *loop) Step(action int) (timestep.TimeStep, error) {
	l.stepNum++
	return timestep.New(timestep.Mid, l.reward, l.obs(), l.stepNum), nil
}

func (l *loop) Seed(seed uint64) {}

func (l *loop) ObservationSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Observation, 1)
}

func (l *loop) ActionSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Action, 1)
}

func (l *loop) Close() error { return nil }

func TestTrainGeometricFixedPoint(t *testing.T) {
	// On a single-state, single-action MDP with reward r every step,
	// the action value converges to the geometric series r/(1-γ)
	reward := 1.0
	gamma := 0.9

	envFn := func() (environment.Environment, error) {
		return &loop{reward: reward}, nil
	}
	config := Config{
		Alpha:           0.1,
		Epsilon:         0.1,
		Gamma:           gamma,
		NumEpisodes:     50,
		MaxEpisodeSteps: 200,
	}

	Q, _, err := Train(envFn, config, 14, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := reward / (1 - gamma)
	if got := Q.At(0, 0); math.Abs(got-want) > 1e-6 {
		t.Errorf("Q(0, 0) = %v, want %v", got, want)
	}
}

func gridEnvFn() (environment.Environment, error) {
	return gridworld.New(0, 0, 3, 3, []int{2}, []int{2}, -1, 0)
}

func TestTrainGridWorld(t *testing.T) {
	config := Config{
		Alpha:       0.5,
		Epsilon:     0.1,
		Gamma:       0.99,
		NumEpisodes: 500,
	}

	Q, pi, err := Train(gridEnvFn, config, 42, nil)
	if err != nil {
		t.Fatal(err)
	}

	// The start state is 4 steps from the goal: 3 intermediate step
	// penalties plus the goal reward of 0
	want := -(1 + 0.99 + 0.99*0.99)
	got := math.Max(Q.At(0, gridworld.Right), Q.At(0, gridworld.Up))
	if math.Abs(got-want) > 0.5 {
		t.Errorf("Q at start = %v, want about %v", got, want)
	}

	// The derived policy must be ε-greedy: its largest probability is
	// 1 - ε + ε/|A| in every visited state
	wantProb := 1 - 0.1 + 0.1/4
	probs := pi.Probabilities(0)
	maxProb := probs[0]
	for _, p := range probs[1:] {
		if p > maxProb {
			maxProb = p
		}
	}
	if math.Abs(maxProb-wantProb) > 1e-12 {
		t.Errorf("greedy probability = %v, want %v", maxProb, wantProb)
	}
}

func TestTrainDeterminism(t *testing.T) {
	config := Config{
		Alpha:       0.5,
		Epsilon:     0.2,
		Gamma:       0.99,
		NumEpisodes: 50,
	}

	lengths := func(seed uint64) []float64 {
		logger, err := tracker.New("", 0)
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := Train(gridEnvFn, config, seed, logger); err != nil {
			t.Fatal(err)
		}
		return logger.History("episode_length")
	}

	first := lengths(99)
	second := lengths(99)
	if len(first) != len(second) {
		t.Fatalf("runs logged %d and %d episodes", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("episode %d: lengths %v and %v differ under the same "+
				"seed", i, first[i], second[i])
		}
	}
}

func TestTrainInvalidParameter(t *testing.T) {
	envFn := func() (environment.Environment, error) {
		t.Fatal("environment created before parameter validation")
		return nil, nil
	}

	configs := []Config{
		{Alpha: 0, Epsilon: 0.1, Gamma: 0.9, NumEpisodes: 1},
		{Alpha: -1, Epsilon: 0.1, Gamma: 0.9, NumEpisodes: 1},
		{Alpha: 0.1, Epsilon: -0.1, Gamma: 0.9, NumEpisodes: 1},
		{Alpha: 0.1, Epsilon: 1.1, Gamma: 0.9, NumEpisodes: 1},
		{Alpha: 0.1, Epsilon: 0.1, Gamma: 1.5, NumEpisodes: 1},
		{Alpha: 0.1, Epsilon: 0.1, Gamma: 0.9, NumEpisodes: 0},
	}
	for _, config := range configs {
		_, _, err := Train(envFn, config, 0, nil)

		var invalid *algo.InvalidParameterError
		if !errors.As(err, &invalid) {
			t.Errorf("config %+v: error %v, want InvalidParameterError",
				config, err)
		}
	}
}
