package mdp

import "fmt"

// GreedyTolerance is the slack used when comparing action values for
// greedy selection, so that actions separated only by accumulated floating
// point error still count as tied.
const GreedyTolerance = 1e-6

// GreedyActions returns the actions of m whose value is within
// GreedyTolerance of the maximum, in ascending key order. Ties are
// first-class here: callers decide whether to split probability across the
// tied set, pick one uniformly at random, or take the smallest key.
// Panics if m is empty.
func GreedyActions[A Key](m map[A]float64) []A {
	if len(m) == 0 {
		panic(fmt.Errorf("greedy selection over an empty action set"))
	}

	var max float64
	first := true
	for _, v := range m {
		if first || v > max {
			max = v
			first = false
		}
	}

	var greedy []A
	for _, a := range SortedKeys(m) {
		if max-m[a] < GreedyTolerance {
			greedy = append(greedy, a)
		}
	}
	return greedy
}
