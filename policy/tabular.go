package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/govalue/utils/floatutils"
)

// rowSumTol is the tolerance within which each row of a Tabular policy
// must sum to 1
const rowSumTol float64 = 1e-9

// Tabular implements a stochastic policy over a discrete state and
// action space as a dense [states × actions] probability table. Each
// row holds the action distribution for one state and sums to 1.
type Tabular struct {
	probs *mat.Dense
}

// New constructs a Tabular policy from an explicit probability table.
// New returns an error if any row does not sum to 1.
func New(probs *mat.Dense) (*Tabular, error) {
	states, actions := probs.Dims()
	for s := 0; s < states; s++ {
		total := 0.0
		for a := 0; a < actions; a++ {
			total += probs.At(s, a)
		}
		if math.Abs(total-1.0) > rowSumTol {
			return nil, fmt.Errorf("new: probabilities of state %d sum to "+
				"%v, not 1", s, total)
		}
	}
	return &Tabular{probs}, nil
}

// NewUniform constructs a Tabular policy that selects every action
// with equal probability in every state
func NewUniform(states, actions int) *Tabular {
	probs := mat.NewDense(states, actions, nil)
	p := 1.0 / float64(actions)
	for s := 0; s < states; s++ {
		for a := 0; a < actions; a++ {
			probs.Set(s, a, p)
		}
	}
	return &Tabular{probs}
}

// NumStates returns the number of states the policy is defined over
func (p *Tabular) NumStates() int {
	states, _ := p.probs.Dims()
	return states
}

// NumActions returns the number of actions the policy selects among
func (p *Tabular) NumActions() int {
	_, actions := p.probs.Dims()
	return actions
}

// Prob returns the probability of selecting action in state
func (p *Tabular) Prob(state, action int) float64 {
	return p.probs.At(state, action)
}

// Probabilities returns the action distribution for state as a newly
// allocated slice
func (p *Tabular) Probabilities(state int) []float64 {
	return mat.Row(nil, state, p.probs)
}

// ActionProbabilities implements Policy. The observation must hold a
// discrete state index in its first element.
func (p *Tabular) ActionProbabilities(obs mat.Vector) []float64 {
	return p.Probabilities(int(obs.AtVec(0)))
}

// SelectAction samples an action for state from the policy, drawing
// from the argument random source
func (p *Tabular) SelectAction(src rand.Source, state int) int {
	return SampleAction(src, p.Probabilities(state))
}

// SetEGreedy overwrites the action distribution of state with the
// ε-greedy distribution induced by the argument action values: the
// greedy action receives probability 1 - ε + ε/|A| and every other
// action ε/|A|.
//
// When several actions tie for the maximum action value, the greedy
// action is chosen uniformly at random among them rather than by
// lowest index. One draw is consumed from the source on every call,
// ties or not, so seeded runs remain reproducible.
func (p *Tabular) SetEGreedy(src rand.Source, state int,
	actionValues []float64, epsilon float64) {
	numActions := p.NumActions()

	_, best := floatutils.MaxSlice(actionValues)
	greedy := best[rand.New(src).Intn(len(best))]

	prob := epsilon / float64(numActions)
	for a := 0; a < numActions; a++ {
		if a == greedy {
			p.probs.Set(state, a, 1.0-epsilon+prob)
		} else {
			p.probs.Set(state, a, prob)
		}
	}
}

func (p *Tabular) String() string {
	fa := mat.Formatted(p.probs, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("Tabular | Probabilities:\n%v", fa)
}
