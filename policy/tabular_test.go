package policy

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestNewUniform(t *testing.T) {
	pol := NewUniform(3, 4)

	if pol.NumStates() != 3 || pol.NumActions() != 4 {
		t.Fatalf("policy is %d × %d, want 3 × 4", pol.NumStates(),
			pol.NumActions())
	}
	for s := 0; s < 3; s++ {
		for a := 0; a < 4; a++ {
			if p := pol.Prob(s, a); p != 0.25 {
				t.Errorf("probability of action %d in state %d = %v, "+
					"want 0.25", a, s, p)
			}
		}
	}
}

func TestNewRejectsUnnormalizedRows(t *testing.T) {
	probs := mat.NewDense(2, 2, []float64{
		0.5, 0.5,
		0.7, 0.6,
	})
	if _, err := New(probs); err == nil {
		t.Fatal("expected error for row not summing to 1")
	}
}

func TestSetEGreedyProbabilities(t *testing.T) {
	pol := NewUniform(1, 4)
	src := rand.NewSource(1)

	pol.SetEGreedy(src, 0, []float64{0.0, 2.0, 1.0, -1.0}, 0.2)

	wantGreedy := 1 - 0.2 + 0.2/4
	wantOther := 0.2 / 4

	if p := pol.Prob(0, 1); math.Abs(p-wantGreedy) > 1e-12 {
		t.Errorf("greedy action probability = %v, want %v", p, wantGreedy)
	}
	total := 0.0
	for a := 0; a < 4; a++ {
		total += pol.Prob(0, a)
		if a != 1 {
			if p := pol.Prob(0, a); math.Abs(p-wantOther) > 1e-12 {
				t.Errorf("action %d probability = %v, want %v", a, p,
					wantOther)
			}
		}
	}
	if math.Abs(total-1.0) > 1e-12 {
		t.Errorf("row sums to %v, want 1", total)
	}
}

func TestSetEGreedyTieBreak(t *testing.T) {
	// With two tied actions, the greedy slot must land on each about
	// half the time across seeds
	const trials = 2000
	counts := make([]int, 2)

	for seed := uint64(0); seed < trials; seed++ {
		pol := NewUniform(1, 2)
		pol.SetEGreedy(rand.NewSource(seed), 0, []float64{1.0, 1.0}, 0.1)

		if pol.Prob(0, 0) > pol.Prob(0, 1) {
			counts[0]++
		} else {
			counts[1]++
		}
	}

	ratio := float64(counts[0]) / trials
	if ratio < 0.45 || ratio > 0.55 {
		t.Errorf("tied action 0 chosen with frequency %v, want about 0.5",
			ratio)
	}
}

func TestSelectActionDeterminism(t *testing.T) {
	pol := NewUniform(1, 3)

	draw := func(seed uint64) []int {
		src := rand.NewSource(seed)
		actions := make([]int, 100)
		for i := range actions {
			actions[i] = pol.SelectAction(src, 0)
		}
		return actions
	}

	first := draw(12)
	second := draw(12)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("draw %d: actions %d and %d differ under the same "+
				"seed", i, first[i], second[i])
		}
	}
}

func TestActionProbabilities(t *testing.T) {
	probs := mat.NewDense(2, 2, []float64{
		0.25, 0.75,
		1.00, 0.00,
	})
	pol, err := New(probs)
	if err != nil {
		t.Fatal(err)
	}

	obs := mat.NewVecDense(1, []float64{1})
	got := pol.ActionProbabilities(obs)
	if got[0] != 1.0 || got[1] != 0.0 {
		t.Errorf("probabilities for state 1 = %v, want [1 0]", got)
	}
}
