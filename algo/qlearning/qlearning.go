// Package qlearning implements off-policy temporal-difference control
// for tabular environments
package qlearning

import (
	"os"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/algo"
	"github.com/samuelfneumann/govalue/environment"
	"github.com/samuelfneumann/govalue/policy"
	"github.com/samuelfneumann/govalue/tracker"
	"github.com/samuelfneumann/govalue/utils/matutils"
	"github.com/samuelfneumann/govalue/utils/progressbar"
)

// Config holds the parameters of a Q-Learning run
type Config struct {
	// Alpha is the step size, greater than 0
	Alpha float64

	// Epsilon is the exploration rate of the behaviour policy, in
	// [0, 1]
	Epsilon float64

	// Gamma is the discount factor, in [0, 1]
	Gamma float64

	// NumEpisodes is the number of episodes to run, greater than 0
	NumEpisodes int

	// MaxEpisodeSteps optionally caps the number of steps per
	// episode. If non-positive, episodes run until the environment
	// signals a terminal state: on an environment with no terminal
	// condition the episode loop never ends.
	MaxEpisodeSteps int

	// ShowProgress draws a console progress bar over episodes
	ShowProgress bool
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Alpha <= 0 {
		return algo.NewInvalidParameter("alpha", "must be greater than 0, "+
			"have %v", c.Alpha)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return algo.NewInvalidParameter("epsilon", "must be in [0, 1], "+
			"have %v", c.Epsilon)
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

// Train learns an action-value table for the environment created by
// envFn using Q-Learning, returning the table together with the
// ε-greedy policy derived from it.
//
// On every environment step, the action-value of the visited (state,
// action) pair moves toward the off-policy target
//
//	r + γ·max_a' Q(s', a')
//
// and the behaviour policy's row for the visited state is recomputed
// as ε-greedy with respect to the updated action values. When several
// actions tie for the maximum, the greedy action is chosen uniformly
// at random among them.
//
// All randomness — action selection and tie-breaking — is drawn from a
// single source seeded with seed, so identical seeds on the same
// environment reproduce identical runs.
//
// One record {episode_length, episode_return} is stored per episode.
func Train(envFn func() (environment.Environment, error), config Config,
	seed uint64, logger *tracker.Logger) (*mat.Dense, *policy.Tabular,
	error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	env, err := envFn()
	if err != nil {
		return nil, nil, err
	}
	defer env.Close()

	numStates := environment.NumStates(env)
	numActions := environment.NumActions(env)

	env.Seed(seed)
	src := rand.NewSource(seed)

	// Behaviour policy starts uniform; each visited row is replaced
	// by the ε-greedy distribution over the learned action values
	pi := policy.NewUniform(numStates, numActions)
	Q := mat.NewDense(numStates, numActions, nil)

	var pbar *progressbar.ProgressBar
	if config.ShowProgress {
		pbar = progressbar.New(os.Stdout, 40, config.NumEpisodes)
	}

	for i := 0; i < config.NumEpisodes; i++ {
		episodeLength := 0
		episodeReturn := 0.0

		step := env.Reset()
		state := step.State()

		for !step.Last() {
			action := pi.SelectAction(src, state)

			step, err = env.Step(action)
			if err != nil {
				return nil, nil, err
			}
			nextState := step.State()

			// Off-policy target: behaviour is ε-soft, the target
			// bootstraps off the greedy value of the next state
			target := step.Reward +
				config.Gamma*matutils.VecMax(Q.RowView(nextState))
			current := Q.At(state, action)
			Q.Set(state, action, current+config.Alpha*(target-current))

			pi.SetEGreedy(src, state, Q.RawRowView(state), config.Epsilon)

			state = nextState
			episodeLength++
			episodeReturn += step.Reward

			if config.MaxEpisodeSteps > 0 &&
				episodeLength >= config.MaxEpisodeSteps {
				break
			}
		}

		logger.Store(map[string]float64{
			"episode_length": float64(episodeLength),
			"episode_return": episodeReturn,
		})
		if pbar != nil {
			pbar.Increment()
		}
	}
	if pbar != nil {
		pbar.Close()
	}

	return Q, pi, nil
}
