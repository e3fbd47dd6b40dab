// Package approx learns action values with linear function approximation:
// episodic semi-gradient SARSA over caller-supplied features, typically
// tile-coded. A single weight vector w is shared across actions, the
// estimated action value is q̂(s,a) = w∙x(s,a), and since the gradient of a
// linear function is the feature vector itself, each update adds a scaled
// copy of x(s,a) to w. "Semi-gradient" because the bootstrap target's own
// dependency on w is ignored when differentiating.
package approx

import (
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	mdp "github.com/ebonwheeler/go-mdp"
)

// possibleActions returns the indices of the actions legal in state.
// Panics if none are: a state with no legal action should have been a
// terminal transition instead.
func possibleActions[S, A mdp.Key](actions []A, isPossible mdp.PossibleFunc[S, A], state S) []int {
	var possible []int
	for i, a := range actions {
		if isPossible(state, a) {
			possible = append(possible, i)
		}
	}
	if len(possible) == 0 {
		panic(fmt.Errorf("no possible action in state %v", state))
	}
	return possible
}

// softGreedyAction picks an action index ε-greedily over the actions
// currently possible in state, scoring each by w∙x(state, action). Exact
// value ties are broken uniformly at random.
func softGreedyAction[S, A mdp.Key](rng *rand.Rand, w *mat.VecDense, actions []A, features mdp.FeatureFunc[S, A], isPossible mdp.PossibleFunc[S, A], state S, explorationFraction float64) int {
	possible := possibleActions(actions, isPossible, state)

	if rng.Float64() <= explorationFraction {
		return possible[rng.Intn(len(possible))]
	}

	var best []int
	bestValue := 0.0
	for _, i := range possible {
		x := mat.NewVecDense(w.Len(), features(state, actions[i]))
		value := mat.Dot(w, x)
		switch {
		case len(best) == 0 || value > bestValue:
			best = best[:0]
			best = append(best, i)
			bestValue = value
		case value == bestValue:
			best = append(best, i)
		}
	}

	if len(best) == 1 {
		return best[0]
	}
	return best[rng.Intn(len(best))]
}

// FindActionValuesEpisodicSemiGradientSarsa runs iterations episodes of
// episodic semi-gradient SARSA and returns the learned weight vector.
// Per non-terminal step:
//
//	w ← w + α∙[R + γ∙w∙x(S',A') − w∙x(S,A)]∙x(S,A)
//
// and at episode end the bootstrap term is dropped:
//
//	w ← w + α∙[R − w∙x(S,A)]∙x(S,A)
//
// Action selection is ε-greedy over only the actions isPossible admits in
// the current state. The weight dimensionality is taken from the features
// of a sampled start state's first possible action.
func FindActionValuesEpisodicSemiGradientSarsa[S, A mdp.Key](rng *rand.Rand, actions []A, start mdp.StartFunc[S], features mdp.FeatureFunc[S, A], isPossible mdp.PossibleFunc[S, A], step mdp.StepFunc[S, A], discount, explorationFraction, alpha float64, iterations int) *mat.VecDense {
	featureCount := func() int {
		s := start()
		possible := possibleActions(actions, isPossible, s)
		return len(features(s, actions[possible[0]]))
	}()

	w := mat.NewVecDense(featureCount, nil)

	for i := 0; i < iterations; i++ {
		state := start()
		actionIndex := softGreedyAction(rng, w, actions, features, isPossible, state, explorationFraction)
		x := mat.NewVecDense(featureCount, features(state, actions[actionIndex]))

		for {
			next, reward, ok := step(state, actions[actionIndex])
			value := mat.Dot(w, x)

			if !ok {
				w.AddScaledVec(w, alpha*(reward-value), x)
				break
			}

			nextActionIndex := softGreedyAction(rng, w, actions, features, isPossible, next, explorationFraction)
			nextX := mat.NewVecDense(featureCount, features(next, actions[nextActionIndex]))

			target := reward + discount*mat.Dot(w, nextX)
			w.AddScaledVec(w, alpha*(target-value), x)

			state = next
			actionIndex = nextActionIndex
			x = nextX
		}

		if iterations >= 10 && (i+1)%(iterations/10) == 0 {
			glog.V(1).Infof("approx: semi-gradient sarsa: %d/%d episodes, |w| = %g", i+1, iterations, mat.Norm(w, 2))
		}
	}

	return w
}
