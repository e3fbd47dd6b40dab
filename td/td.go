// Package td learns action values online by expected SARSA. Updates happen
// step by step rather than at episode boundaries, and the bootstrap target
// is the expected value of the successor state under the current ε-greedy
// policy rather than the value of the next action actually sampled. That is
// what separates expected SARSA from plain SARSA and removes that source of
// sampling variance.
package td

import (
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"

	mdp "github.com/ebonwheeler/go-mdp"
)

// softGreedyAction picks the next action from state following an ε-greedy
// policy derived from the current action values. At a state with no
// recorded values, or when the exploration check passes, it delegates to
// randomAction; otherwise it picks uniformly at random among the actions
// tied for the maximum value.
func softGreedyAction[S, A mdp.Key](rng *rand.Rand, randomAction mdp.ActionFunc[S, A], q mdp.ActionValueTable[S, A], state S, explorationFraction float64) A {
	actionValues, ok := q[state]
	if !ok || rng.Float64() <= explorationFraction {
		return randomAction(state)
	}

	greedy := mdp.GreedyActions(actionValues)
	if len(greedy) == 1 {
		return greedy[0]
	}
	return greedy[rng.Intn(len(greedy))]
}

// expectedReturns computes the expected value of a state under the ε-greedy
// policy derived from its action values: greedy actions share probability
// (1−ε)/|greedy| on top of the uniform ε/|A| that every action receives.
// Panics on an empty action value map.
func expectedReturns[A mdp.Key](actionValues map[A]float64, explorationFraction float64) float64 {
	if len(actionValues) == 0 {
		panic(fmt.Errorf("expected returns over an empty action value map"))
	}

	if len(actionValues) == 1 {
		for _, v := range actionValues {
			return v
		}
	}

	greedy := mdp.GreedyActions(actionValues)
	greedySet := make(map[A]struct{}, len(greedy))
	for _, a := range greedy {
		greedySet[a] = struct{}{}
	}

	othersProb := explorationFraction / float64(len(actionValues))
	greedyProb := othersProb + (1.0-explorationFraction)/float64(len(greedy))

	var expected float64
	for a, v := range actionValues {
		if _, ok := greedySet[a]; ok {
			expected += greedyProb * v
		} else {
			expected += othersProb * v
		}
	}
	return expected
}

// FindActionValuesExpectedSarsa runs iterations episodes of online expected
// SARSA and returns the learned action value table. Behavior is ε-greedy
// derived from the table as it is learned; each step applies
//
//	Q(S,A) ← Q(S,A) + α∙[R + γ∙Σ_a π(a|S')∙Q(S',a) − Q(S,A)]
//
// with the bootstrap term dropped on a terminal transition. Action values
// of unexplored states read as 0.
func FindActionValuesExpectedSarsa[S, A mdp.Key](rng *rand.Rand, start mdp.StartFunc[S], randomAction mdp.ActionFunc[S, A], step mdp.StepFunc[S, A], discount, explorationFraction, alpha float64, iterations int) mdp.ActionValueTable[S, A] {
	q := make(mdp.ActionValueTable[S, A])

	for i := 0; i < iterations; i++ {
		state := start()
		for {
			action := softGreedyAction(rng, randomAction, q, state, explorationFraction)
			value := q.Get(state, action)

			next, reward, ok := step(state, action)
			if !ok {
				q.Set(state, action, value+alpha*(reward-value))
				break
			}

			var returns float64
			if nextValues, explored := q[next]; explored {
				returns = expectedReturns(nextValues, explorationFraction)
			}

			q.Set(state, action, value+alpha*(reward+discount*returns-value))
			state = next
		}

		if iterations >= 10 && (i+1)%(iterations/10) == 0 {
			glog.V(1).Infof("td: expected sarsa: %d/%d episodes, %d states seen", i+1, iterations, len(q))
		}
	}

	return q
}
