// Package dp solves explicitly enumerated MDPs by exact dynamic
// programming: synchronous Bellman expectation and optimality sweeps, plus
// greedy and uniform policy construction.
//
// The sweep primitives have no internal fixed-point detection. Each call
// performs one full sweep and reports the largest per-state change, and the
// caller loops until the delta falls below a threshold of its choosing; the
// SolveValues and SolvePolicy drivers package up that loop for the common
// case.
package dp

import (
	"fmt"
	"math"

	"github.com/golang/glog"

	mdp "github.com/ebonwheeler/go-mdp"
)

// actionValue computes the one-step expected value of taking an action:
// Σ over destinations of P∙(R + γ∙V(s')), bootstrapping from prev.
func actionValue[S mdp.Key](result mdp.ActionResult[S], prev mdp.ValueTable[S], discount float64) float64 {
	var value float64
	for dest, d := range result {
		value += d.Probability * (d.Reward + discount*prev.Get(dest))
	}
	return value
}

// EvaluatePolicy performs one synchronous Bellman expectation sweep:
//
//	V(s) = Σ_a π(a|s) Σ_s' P(s'|s,a)∙[R(s,a,s') + γ∙V(s')]
//
// Every update bootstraps from prev; nothing reads values computed in the
// same sweep. It returns the new value table and the largest absolute
// per-state change. Panics if policy has no entry for a non-terminal state
// of env.
func EvaluatePolicy[S, A mdp.Key](env mdp.Environment[S, A], policy mdp.Policy[S, A], prev mdp.ValueTable[S], discount float64) (mdp.ValueTable[S], float64) {
	values := make(mdp.ValueTable[S], len(env))
	var maxDelta float64
	for s, actions := range env {
		if len(actions) == 0 { // Terminal state, value stays 0.
			continue
		}

		ps, ok := policy[s]
		if !ok {
			panic(fmt.Errorf("policy has no entry for non-terminal state %v", s))
		}

		var value float64
		for a, prob := range ps {
			result, ok := actions[a]
			if !ok {
				panic(fmt.Errorf("policy assigns probability to action %v unavailable in state %v", a, s))
			}
			value += prob * actionValue(result, prev, discount)
		}

		values[s] = value
		maxDelta = math.Max(maxDelta, math.Abs(value-prev.Get(s)))
	}

	return values, maxDelta
}

// IterateStateValue performs one synchronous Bellman optimality sweep:
//
//	V(s) = max_a Σ_s' P(s'|s,a)∙[R(s,a,s') + γ∙V(s')]
//
// No policy is needed. It returns the new value table and the largest
// absolute per-state change.
func IterateStateValue[S, A mdp.Key](env mdp.Environment[S, A], prev mdp.ValueTable[S], discount float64) (mdp.ValueTable[S], float64) {
	values := make(mdp.ValueTable[S], len(env))
	var maxDelta float64
	for s, actions := range env {
		if len(actions) == 0 {
			continue
		}

		best := math.Inf(-1)
		for _, result := range actions {
			best = math.Max(best, actionValue(result, prev, discount))
		}

		values[s] = best
		maxDelta = math.Max(maxDelta, math.Abs(best-prev.Get(s)))
	}

	return values, maxDelta
}

// MakeGreedyPolicy builds the policy that is greedy with respect to values:
// for each non-terminal state it computes every action's one-step value and
// splits probability uniformly among all actions tied for the maximum
// (within mdp.GreedyTolerance). Ties are never resolved arbitrarily at this
// layer.
func MakeGreedyPolicy[S, A mdp.Key](env mdp.Environment[S, A], values mdp.ValueTable[S], discount float64) mdp.Policy[S, A] {
	policy := make(mdp.Policy[S, A], len(env))
	for s, actions := range env {
		if len(actions) == 0 {
			continue
		}

		actionValues := make(map[A]float64, len(actions))
		for a, result := range actions {
			actionValues[a] = actionValue(result, values, discount)
		}

		greedy := mdp.GreedyActions(actionValues)
		prob := 1.0 / float64(len(greedy))
		ps := make(mdp.PolicyState[A], len(greedy))
		for _, a := range greedy {
			ps[a] = prob
		}
		policy[s] = ps
	}

	return policy
}

// MakeUniformPolicy builds the baseline exploratory policy that assigns
// equal probability to every available action of each non-terminal state.
func MakeUniformPolicy[S, A mdp.Key](env mdp.Environment[S, A]) mdp.Policy[S, A] {
	policy := make(mdp.Policy[S, A], len(env))
	for s, actions := range env {
		if len(actions) == 0 {
			continue
		}

		prob := 1.0 / float64(len(actions))
		ps := make(mdp.PolicyState[A], len(actions))
		for a := range actions {
			ps[a] = prob
		}
		policy[s] = ps
	}

	return policy
}

// SolveValues runs value iteration until the largest per-state change of a
// sweep falls below threshold, and returns the final value table.
func SolveValues[S, A mdp.Key](env mdp.Environment[S, A], discount, threshold float64) mdp.ValueTable[S] {
	values := make(mdp.ValueTable[S])
	for sweep := 1; ; sweep++ {
		next, delta := IterateStateValue(env, values, discount)
		glog.V(1).Infof("value iteration sweep %d: max delta %g", sweep, delta)
		values = next
		if delta < threshold {
			return values
		}
	}
}

// SolvePolicy runs iterative policy evaluation on policy until convergence
// below threshold, then returns the converged values together with the
// policy greedy with respect to them (one step of policy improvement).
func SolvePolicy[S, A mdp.Key](env mdp.Environment[S, A], policy mdp.Policy[S, A], discount, threshold float64) (mdp.ValueTable[S], mdp.Policy[S, A]) {
	values := make(mdp.ValueTable[S])
	for sweep := 1; ; sweep++ {
		next, delta := EvaluatePolicy(env, policy, values, discount)
		glog.V(1).Infof("policy evaluation sweep %d: max delta %g", sweep, delta)
		values = next
		if delta < threshold {
			break
		}
	}

	return values, MakeGreedyPolicy(env, values, discount)
}
