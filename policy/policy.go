// Package policy implements stochastic policies over discrete action
// spaces
package policy

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Policy maps an observation to a probability distribution over
// actions. Probabilities are returned in action order and sum to 1.
type Policy interface {
	ActionProbabilities(obs mat.Vector) []float64
}

// SampleAction samples an action index from a distribution over
// actions, drawing from the argument random source. Every sample
// consumes exactly one draw from the source, so runs with the same
// seed reproduce the same action sequence.
func SampleAction(src rand.Source, probs []float64) int {
	dist := distuv.NewCategorical(probs, src)
	return int(dist.Rand())
}
