package gradientmc

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/algo"
	"github.com/samuelfneumann/govalue/environment"
	"github.com/samuelfneumann/govalue/environment/chainwalk"
	"github.com/samuelfneumann/govalue/model/linear"
	"github.com/samuelfneumann/govalue/policy"
	"github.com/samuelfneumann/govalue/timestep"
	"github.com/samuelfneumann/govalue/tracker"
)

// episodeEnv is a test environment that replays a fixed sequence of
// (observation, reward) steps and then terminates. The observation of
// index i is presented before step i's reward is received.
type episodeEnv struct {
	obs     []mat.Vector
	rewards []float64
	pos     int
}

func (e *episodeEnv) Reset() timestep.TimeStep {
	e.pos = 0
	return timestep.New(timestep.First, 0, e.obs[0], 0)
}

func (e *episodeEnv) Step(action int) (timestep.TimeStep, error) {
	reward := e.rewards[e.pos]
	e.pos++

	stepType := timestep.Mid
	obs := e.obs[len(e.obs)-1]
	if e.pos >= len(e.rewards) {
		stepType = timestep.Last
	} else {
		obs = e.obs[e.pos]
	}
	return timestep.New(stepType, reward, obs, e.pos), nil
}

func (e *episodeEnv) Seed(seed uint64) {}

func (e *episodeEnv) ObservationSpec() environment.Spec {
	features := e.obs[0].Len()
	shape := mat.NewVecDense(1, []float64{float64(features)})
	bound := mat.NewVecDense(1, []float64{0})
	return environment.NewSpec(shape, environment.Observation, bound, bound,
		environment.Continuous)
}

func (e *episodeEnv) ActionSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Action, 1)
}

func (e *episodeEnv) Close() error { return nil }

// singleAction is a policy over a single-action environment
type singleAction struct{}

func (singleAction) ActionProbabilities(obs mat.Vector) []float64 {
	return []float64{1.0}
}

func TestPredictSingleStepUpdate(t *testing.T) {
	// For a one-step episode with reward r, the single semi-gradient
	// update must equal α·(r − v(s))·∇v(s) exactly. For a linear
	// model ∇v(s) is (s, 1).
	x := []float64{0.5, -2.0}
	reward := 3.0
	alpha := 0.1

	envFn := func() (environment.Environment, error) {
		return &episodeEnv{
			obs:     []mat.Vector{mat.NewVecDense(2, x)},
			rewards: []float64{reward},
		}, nil
	}

	valueFn := linear.New(2, true)
	valueFn.Weights().SetVec(0, 1.0)
	valueFn.Weights().SetVec(1, -0.5)

	v := 1.0*x[0] + (-0.5)*x[1] // bias is zero
	scale := alpha * (reward - v)
	wantW := []float64{1.0 + scale*x[0], -0.5 + scale*x[1]}
	wantB := scale

	_, err := Predict(envFn, singleAction{}, valueFn,
		Config{Alpha: alpha, Gamma: 0.9, NumEpisodes: 1}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i, want := range wantW {
		if got := valueFn.Weights().AtVec(i); got != want {
			t.Errorf("weight %d = %v, want %v", i, got, want)
		}
	}
	if got := valueFn.Bias(); got != wantB {
		t.Errorf("bias = %v, want %v", got, wantB)
	}
}

func TestPredictReverseOrderUpdates(t *testing.T) {
	// When a state is revisited within an episode, the later visit is
	// updated first and its update changes the value the earlier
	// visit's update is computed from
	obs := mat.NewVecDense(1, []float64{1})
	rewards := []float64{0.0, 1.0}
	alpha := 0.5
	gamma := 0.5

	envFn := func() (environment.Environment, error) {
		return &episodeEnv{
			obs:     []mat.Vector{obs, obs},
			rewards: rewards,
		}, nil
	}

	valueFn := linear.New(1, false)

	// By hand, in reverse temporal order with w starting at 0:
	// second visit: G = 1, v = 0, w += 0.5·(1 − 0)·1 = 0.5
	// first visit:  G = 0 + 0.5·1 = 0.5, v = 0.5,
	//               w += 0.5·(0.5 − 0.5)·1 = 0
	_, err := Predict(envFn, singleAction{}, valueFn,
		Config{Alpha: alpha, Gamma: gamma, NumEpisodes: 1}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := valueFn.Weights().AtVec(0); got != 0.5 {
		t.Errorf("weight = %v, want 0.5", got)
	}
}

func chainEnvFn() (environment.Environment, error) {
	return chainwalk.New(5, 0, 1)
}

func TestPredictZeroAlphaLeavesModelUnchanged(t *testing.T) {
	valueFn := linear.New(1, true)
	valueFn.Weights().SetVec(0, 0.25)

	pol := policy.NewUniform(7, 2)
	_, err := Predict(chainEnvFn, pol, valueFn,
		Config{Alpha: 0, Gamma: 0.9, NumEpisodes: 25}, 7, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := valueFn.Weights().AtVec(0); got != 0.25 {
		t.Errorf("weight = %v, want 0.25 unchanged", got)
	}
	if got := valueFn.Bias(); got != 0 {
		t.Errorf("bias = %v, want 0 unchanged", got)
	}
}

func TestPredictChainValues(t *testing.T) {
	// Under a uniform policy with γ = 1, the value of interior chain
	// state s is s/(n+1): the probability of exiting to the right
	valueFn := linear.New(1, true)
	pol := policy.NewUniform(7, 2)

	_, err := Predict(chainEnvFn, pol, valueFn,
		Config{Alpha: 0.01, Gamma: 1, NumEpisodes: 2000}, 11, nil)
	if err != nil {
		t.Fatal(err)
	}

	// A linear model can represent s/6 exactly; allow sampling slack
	for s := 1; s <= 5; s++ {
		obs := mat.NewVecDense(1, []float64{float64(s)})
		v, verr := valueFn.Value(obs)
		if verr != nil {
			t.Fatal(verr)
		}
		want := float64(s) / 6.0
		if math.Abs(v-want) > 0.15 {
			t.Errorf("v(%d) = %v, want about %v", s, v, want)
		}
	}
}

func TestPredictDeterminism(t *testing.T) {
	run := func(seed uint64) []float64 {
		logger, err := tracker.New("", 0)
		if err != nil {
			t.Fatal(err)
		}
		valueFn := linear.New(1, true)
		pol := policy.NewUniform(7, 2)

		_, err = Predict(chainEnvFn, pol, valueFn,
			Config{Alpha: 0.01, Gamma: 0.9, NumEpisodes: 30}, seed, logger)
		if err != nil {
			t.Fatal(err)
		}
		return logger.History("episode_length")
	}

	first := run(3)
	second := run(3)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("episode %d: lengths %v and %v differ under the same "+
				"seed", i, first[i], second[i])
		}
	}
}

func TestPredictInvalidParameter(t *testing.T) {
	envFn := func() (environment.Environment, error) {
		t.Fatal("environment created before parameter validation")
		return nil, nil
	}

	configs := []Config{
		{Alpha: -0.1, Gamma: 0.9, NumEpisodes: 1},
		{Alpha: 0.1, Gamma: -0.1, NumEpisodes: 1},
		{Alpha: 0.1, Gamma: 0.9, NumEpisodes: 0},
	}
	for _, config := range configs {
		_, err := Predict(envFn, singleAction{}, linear.New(1, false),
			config, 0, nil)

		var invalid *algo.InvalidParameterError
		if !errors.As(err, &invalid) {
			t.Errorf("config %+v: error %v, want InvalidParameterError",
				config, err)
		}
	}
}
