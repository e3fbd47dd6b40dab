// Package mdp defines the data model shared by all solvers for finite and
// continuous Markov Decision Processes: environments as sparse transition
// graphs, policies as per-state action distributions, and the tabular value
// representations the solvers produce.
//
// The solver families live in subpackages: exact dynamic programming in dp,
// Monte Carlo estimation and control in mc, expected-SARSA learning in td,
// and linear function approximation in approx, with tile-coded features
// provided by tile.
package mdp

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Key is the constraint on state and action identifiers. They must be usable
// as map keys and totally ordered, so that weighted random selection over a
// map is deterministic given a fixed random stream.
type Key interface {
	constraints.Ordered
}

// SumTolerance is the allowed slack when checking that the outgoing
// probabilities of a generated environment sum to 1.
const SumTolerance = 0.1

// PolicySumTolerance is the allowed slack when checking that a policy
// state's action probabilities sum to 1.
const PolicySumTolerance = 1e-6

// ActionDestination is one possible outcome of taking an action: the
// probability of ending up in the destination state, and the reward
// collected on that transition.
type ActionDestination struct {
	Probability float64
	Reward      float64
}

// ActionResult is the distribution over destination states for one action.
// Probabilities across all destinations must sum to 1.
type ActionResult[S Key] map[S]ActionDestination

// StateActions holds the available actions of one state. An empty map marks
// a terminal state: no further transitions are possible.
type StateActions[S, A Key] map[A]ActionResult[S]

// Environment is a fully explicit MDP transition graph, keyed sparsely by
// reachable state. It is built once by a problem module and never mutated
// by the solvers.
type Environment[S, A Key] map[S]StateActions[S, A]

// PolicyState maps each available action of one state to the probability of
// taking it. Probabilities must sum to 1.
type PolicyState[A Key] map[A]float64

// Policy maps states to action distributions. A deterministic policy is the
// special case where exactly one action has probability 1.
type Policy[S, A Key] map[S]PolicyState[A]

// ValueTable holds estimated expected discounted returns per state.
// States absent from the table have value 0.
type ValueTable[S Key] map[S]float64

// ActionValueTable holds estimated action values per (state, action) pair.
// Absent entries have value 0.
type ActionValueTable[S, A Key] map[S]map[A]float64

// DeterministicAction builds the single-destination distribution for an
// action that always transitions to dest with the given reward.
func DeterministicAction[S Key](dest S, reward float64) ActionResult[S] {
	return ActionResult[S]{dest: {Probability: 1.0, Reward: reward}}
}

// Terminal reports whether s has no outgoing transitions in env.
func (env Environment[S, A]) Terminal(s S) bool {
	return len(env[s]) == 0
}

// Validate checks that every action's destination probabilities sum to 1
// within SumTolerance.
func (env Environment[S, A]) Validate() error {
	for s, actions := range env {
		for a, result := range actions {
			var total float64
			for _, dest := range result {
				total += dest.Probability
			}
			if total < 1.0-SumTolerance || total > 1.0+SumTolerance {
				return errors.Errorf("state %v action %v: destination probabilities sum to %v, want 1",
					s, a, total)
			}
		}
	}
	return nil
}

// Validate checks that every state's action probabilities sum to 1 within
// PolicySumTolerance.
func (p Policy[S, A]) Validate() error {
	for s, actions := range p {
		var total float64
		for _, prob := range actions {
			total += prob
		}
		if total < 1.0-PolicySumTolerance || total > 1.0+PolicySumTolerance {
			return errors.Errorf("state %v: action probabilities sum to %v, want 1", s, total)
		}
	}
	return nil
}

// Get returns the value of s, or 0 if s has not been estimated yet.
func (v ValueTable[S]) Get(s S) float64 {
	return v[s]
}

// Get returns the value of taking a in s, or 0 if the pair has not been
// estimated yet.
func (q ActionValueTable[S, A]) Get(s S, a A) float64 {
	return q[s][a]
}

// Set records the value of taking a in s, allocating the state's row on
// first use.
func (q ActionValueTable[S, A]) Set(s S, a A, value float64) {
	row, ok := q[s]
	if !ok {
		row = make(map[A]float64)
		q[s] = row
	}
	row[a] = value
}
