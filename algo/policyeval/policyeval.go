// Package policyeval implements iterative policy evaluation for
// tabular environments with known transition dynamics
package policyeval

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/algo"
	"github.com/samuelfneumann/govalue/environment"
	"github.com/samuelfneumann/govalue/policy"
	"github.com/samuelfneumann/govalue/tracker"
	"github.com/samuelfneumann/govalue/utils/floatutils"
)

// transitionTol is the tolerance within which the outcome
// probabilities of each (state, action) pair must sum to 1
const transitionTol float64 = 1e-9

// Config holds the parameters of a policy evaluation run
type Config struct {
	// Gamma is the discount factor, in [0, 1]
	Gamma float64

	// Theta is the accuracy threshold: evaluation terminates once the
	// largest change to any state's value in one sweep drops below
	// Theta. Must be positive.
	Theta float64

	// MaxIter caps the number of sweeps. Evaluation stops after the
	// sweep whose index exceeds MaxIter, so a cap of n permits n+2
	// sweeps in total. If non-positive, only Theta terminates the
	// run.
	MaxIter int

	// Seed is forwarded to the environment. The sweep itself draws no
	// randomness.
	Seed uint64
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return algo.NewInvalidParameter("gamma", "must be in [0, 1], have %v",
			c.Gamma)
	}
	if c.Theta <= 0 {
		return algo.NewInvalidParameter("theta", "must be greater than 0, "+
			"have %v", c.Theta)
	}
	return nil
}

// Evaluate estimates the value function of pol on the environment
// created by envFn using iterative policy evaluation.
//
// Each sweep computes, for every state s, the Bellman expectation
//
//	v(s) = Σ_a π(a|s) Σ_(p, s', r) p · (r + γ·v(s'))
//
// reading only the previous sweep's value function, so the result does
// not depend on the order states are visited in. Sweeps continue until
// the largest single-state change drops below Theta or the iteration
// cap is exceeded.
//
// One record {iteration, delta, time} is stored per sweep.
func Evaluate(envFn func() (environment.Model, error), pol *policy.Tabular,
	config Config, logger *tracker.Logger) (*mat.VecDense, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	env, err := envFn()
	if err != nil {
		return nil, err
	}
	defer env.Close()
	env.Seed(config.Seed)

	if err := environment.CheckTransitions(env, transitionTol); err != nil {
		return nil, err
	}

	numStates := environment.NumStates(env)
	numActions := environment.NumActions(env)
	if pol.NumStates() != numStates || pol.NumActions() != numActions {
		return nil, fmt.Errorf("evaluate: policy is %d × %d but "+
			"environment has %d states and %d actions", pol.NumStates(),
			pol.NumActions(), numStates, numActions)
	}

	V := mat.NewVecDense(numStates, nil)
	newV := mat.NewVecDense(numStates, nil)

	start := time.Now()

	for i := 0; ; i++ {
		delta := 0.0
		for state := 0; state < numStates; state++ {
			v := 0.0
			for action := 0; action < numActions; action++ {
				actionValue := 0.0
				for _, tr := range env.Transitions(state, action) {
					actionValue += tr.Prob *
						(tr.Reward + config.Gamma*V.AtVec(tr.NextState))
				}
				v += pol.Prob(state, action) * actionValue
			}
			newV.SetVec(state, v)
			delta = floatutils.Max(delta, math.Abs(v-V.AtVec(state)))
		}
		V, newV = newV, V

		logger.Store(map[string]float64{
			"iteration": float64(i),
			"delta":     delta,
			"time":      time.Since(start).Seconds(),
		})

		if delta < config.Theta ||
			(config.MaxIter > 0 && i > config.MaxIter) {
			break
		}
	}

	return V, nil
}
