// Package mc estimates values and finds policies by Monte Carlo sampling of
// complete episodes. It never needs an explicit transition graph, which
// suits environments too large to enumerate: it only samples a starting
// state, steps forward until a terminal transition, and folds the observed
// rewards backward into discounted returns.
package mc

import (
	"github.com/golang/glog"
	"golang.org/x/exp/rand"

	mdp "github.com/ebonwheeler/go-mdp"
)

// valueEstimate is a running incremental mean of observed returns.
type valueEstimate struct {
	avg   float64
	count int
}

func (e *valueEstimate) update(value float64) {
	e.avg += (value - e.avg) / float64(e.count+1)
	e.count++
}

type timeStep[S, A mdp.Key] struct {
	state  S
	action A
	reward float64
}

type stateAction[S, A mdp.Key] struct {
	state  S
	action A
}

// generateEpisode runs one full episode from a fresh starting state,
// choosing actions with choose, and returns the visited steps in order.
func generateEpisode[S, A mdp.Key](start mdp.StartFunc[S], choose mdp.ActionFunc[S, A], step mdp.StepFunc[S, A]) []timeStep[S, A] {
	var episode []timeStep[S, A]
	state := start()
	for {
		action := choose(state)
		next, reward, ok := step(state, action)
		episode = append(episode, timeStep[S, A]{state, action, reward})
		if !ok {
			return episode
		}
		state = next
	}
}

// EvaluatePolicy estimates the state values of the given policy by
// generating iterations complete episodes and averaging first-visit
// discounted returns. Returns are folded backward from the terminal reward
// (G ← G∙γ + R), and within one episode only the first occurrence of a
// state, scanned from the episode's end, updates that state's estimate.
func EvaluatePolicy[S, A mdp.Key](start mdp.StartFunc[S], policy mdp.ActionFunc[S, A], step mdp.StepFunc[S, A], discount float64, iterations int) mdp.ValueTable[S] {
	estimates := make(map[S]*valueEstimate)

	for i := 0; i < iterations; i++ {
		episode := generateEpisode(start, policy, step)

		updated := make(map[S]struct{})
		var returns float64
		for t := len(episode) - 1; t >= 0; t-- {
			returns = returns*discount + episode[t].reward
			s := episode[t].state
			if _, ok := updated[s]; ok {
				continue
			}
			updated[s] = struct{}{}

			e, ok := estimates[s]
			if !ok {
				e = &valueEstimate{}
				estimates[s] = e
			}
			e.update(returns)
		}

		logProgress("mc: policy evaluation", i+1, iterations)
	}

	values := make(mdp.ValueTable[S], len(estimates))
	for s, e := range estimates {
		values[s] = e.avg
	}
	return values
}

// FindPolicy performs on-policy Monte Carlo control with ε-greedy
// exploration. At a previously-unvisited state it acts randomly; at a
// visited state it acts greedily with probability 1−explorationFraction and
// randomly otherwise. Each unique (state, action) pair of an episode is
// updated once with its backward-folded return. The returned policy is
// deterministic greedy over the final estimates, with ties broken by the
// smallest action key.
func FindPolicy[S, A mdp.Key](rng *rand.Rand, start mdp.StartFunc[S], randomAction mdp.ActionFunc[S, A], step mdp.StepFunc[S, A], discount, explorationFraction float64, iterations int) mdp.Policy[S, A] {
	estimates := make(map[S]map[A]*valueEstimate)

	behavior := func(s S) A {
		actions, visited := estimates[s]
		if !visited || rng.Float64() <= explorationFraction {
			return randomAction(s)
		}
		return greedyAction(actions)
	}

	for i := 0; i < iterations; i++ {
		episode := generateEpisode(start, behavior, step)

		// Fold returns backward. Overwriting on duplicates keeps the
		// first-visit return for each (state, action) pair.
		observed := make(map[stateAction[S, A]]float64)
		var returns float64
		for t := len(episode) - 1; t >= 0; t-- {
			returns = returns*discount + episode[t].reward
			observed[stateAction[S, A]{episode[t].state, episode[t].action}] = returns
		}

		for sa, g := range observed {
			actions, ok := estimates[sa.state]
			if !ok {
				actions = make(map[A]*valueEstimate)
				estimates[sa.state] = actions
			}
			e, ok := actions[sa.action]
			if !ok {
				e = &valueEstimate{}
				actions[sa.action] = e
			}
			e.update(g)
		}

		logProgress("mc: control", i+1, iterations)
	}

	policy := make(mdp.Policy[S, A], len(estimates))
	for s, actions := range estimates {
		policy[s] = mdp.PolicyState[A]{greedyAction(actions): 1.0}
	}
	return policy
}

// RunSimulation executes one episode under the given policy and returns the
// undiscounted sum of rewards. It estimates nothing; use it to empirically
// score a policy that has already been found.
func RunSimulation[S, A mdp.Key](start mdp.StartFunc[S], policy mdp.ActionFunc[S, A], step mdp.StepFunc[S, A]) float64 {
	var returns float64
	state := start()
	for {
		next, reward, ok := step(state, policy(state))
		returns += reward
		if !ok {
			return returns
		}
		state = next
	}
}

// greedyAction returns the action with the highest running average,
// breaking ties by the smallest action key.
func greedyAction[A mdp.Key](actions map[A]*valueEstimate) A {
	avgs := make(map[A]float64, len(actions))
	for a, e := range actions {
		avgs[a] = e.avg
	}
	return mdp.GreedyActions(avgs)[0]
}

func logProgress(what string, done, total int) {
	if total >= 10 && done%(total/10) == 0 {
		glog.V(1).Infof("%s: %d/%d episodes", what, done, total)
	}
}
