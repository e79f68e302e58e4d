// Package gradientmc implements gradient Monte Carlo prediction for
// estimating a value function with a differentiable approximator
package gradientmc

import (
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/algo"
	"github.com/samuelfneumann/govalue/environment"
	"github.com/samuelfneumann/govalue/model"
	"github.com/samuelfneumann/govalue/policy"
	"github.com/samuelfneumann/govalue/tracker"
)

// Config holds the parameters of a gradient Monte Carlo run
type Config struct {
	// Alpha is the learning rate, non-negative
	Alpha float64

	// Gamma is the discount factor, in [0, 1]
	Gamma float64

	// NumEpisodes is the number of episodes to run, greater than 0
	NumEpisodes int
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Alpha < 0 {
		return algo.NewInvalidParameter("alpha", "must be non-negative, "+
			"have %v", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return algo.NewInvalidParameter("gamma", "must be in [0, 1], "+
			"have %v", c.Gamma)
	}
	if c.NumEpisodes <= 0 {
		return algo.NewInvalidParameter("num_episodes", "must be greater "+
			"than 0, have %v", c.NumEpisodes)
	}
	return nil
}

// visit is one recorded step of an episode: the observation the agent
// acted from and the reward the action produced
type visit struct {
	obs    mat.Vector
	reward float64
}

// Predict estimates the value function of pol on the environment
// created by envFn by full-return Monte Carlo with semi-gradient
// updates. The argument valueFn is mutated in place — the caller keeps
// ownership — and is also returned.
//
// Each episode is first rolled out to termination under pol with no
// learning. The recorded experience is then replayed in reverse
// temporal order while folding up the discounted return G, and each
// visited observation receives the update
//
//	parameters += α·(G − v(s))·∇v(s)
//
// The reverse order is observable: if a state is revisited within an
// episode, the later visit's update changes the value the earlier
// visit's update is computed from.
//
// One record {iteration, episode_length, episode_return, grad_norm,
// time} is stored per episode. The gradient norm is the global norm of
// the last gradient computed in the reverse pass, the one for the
// episode's first visit.
func Predict(envFn func() (environment.Environment, error),
	pol policy.Policy, valueFn model.ValueFunction, config Config,
	seed uint64, logger *tracker.Logger) (model.ValueFunction, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	env, err := envFn()
	if err != nil {
		return nil, err
	}
	defer env.Close()

	env.Seed(seed)
	src := rand.NewSource(seed)

	start := time.Now()

	for i := 0; i < config.NumEpisodes; i++ {
		episodeLength := 0
		episodeReturn := 0.0

		// Roll out one full episode under the fixed policy
		var experience []visit
		step := env.Reset()
		for !step.Last() {
			obs := step.Observation
			action := policy.SampleAction(src,
				pol.ActionProbabilities(obs))

			step, err = env.Step(action)
			if err != nil {
				return nil, err
			}

			experience = append(experience, visit{obs, step.Reward})
			episodeLength++
			episodeReturn += step.Reward
		}

		// Replay the experience backwards, folding up the return
		G := 0.0
		var grads model.Gradients
		for j := len(experience) - 1; j >= 0; j-- {
			G = config.Gamma*G + experience[j].reward

			var v float64
			v, grads, err = valueFn.Gradient(experience[j].obs)
			if err != nil {
				return nil, err
			}
			if err = valueFn.AddScaled(config.Alpha*(G-v), grads); err != nil {
				return nil, err
			}
		}

		logger.Store(map[string]float64{
			"iteration":      float64(i),
			"episode_length": float64(episodeLength),
			"episode_return": episodeReturn,
			"grad_norm":      grads.Norm(),
			"time":           time.Since(start).Seconds(),
		})
	}

	return valueFn, nil
}
