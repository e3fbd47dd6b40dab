package mdp

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SortedKeys returns the keys of m in ascending order. All randomized
// selection over maps goes through this so that results are reproducible
// given a fixed random stream.
func SortedKeys[K Key, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// SampleKey draws one key of m at random, weighted by the value that weight
// extracts for each key. Weights need not be normalized. Panics if the draw
// fails, which is structurally impossible when the weights are valid.
func SampleKey[K Key, V any](rng *rand.Rand, m map[K]V, weight func(V) float64) K {
	keys := SortedKeys(m)
	weights := make([]float64, len(keys))
	for i, k := range keys {
		weights[i] = weight(m[k])
	}

	i, ok := sampleuv.NewWeighted(weights, rng).Take()
	if !ok {
		panic(fmt.Errorf("weighted draw failed over %d keys with weights %v", len(keys), weights))
	}
	return keys[i]
}

// Sample draws an action from the policy's distribution at s. Panics if the
// policy has no entry for s.
func (p Policy[S, A]) Sample(rng *rand.Rand, s S) A {
	ps, ok := p[s]
	if !ok {
		panic(fmt.Errorf("policy has no entry for state %v", s))
	}

	return SampleKey(rng, ps, func(prob float64) float64 { return prob })
}

// Func adapts the explicit policy into an ActionFunc for the sampling-based
// solvers, drawing from rng on each call.
func (p Policy[S, A]) Func(rng *rand.Rand) ActionFunc[S, A] {
	return func(s S) A { return p.Sample(rng, s) }
}

// Sample draws a destination state from the action's outcome distribution.
func (r ActionResult[S]) Sample(rng *rand.Rand) S {
	return SampleKey(rng, r, func(d ActionDestination) float64 { return d.Probability })
}
