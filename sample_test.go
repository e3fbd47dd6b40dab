package mdp

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestSampleKey_Deterministic(t *testing.T) {
	dist := map[string]float64{"a": 0.2, "b": 0.3, "c": 0.5}

	draw := func(seed uint64) []string {
		rng := rand.New(rand.NewSource(seed))
		var keys []string
		for i := 0; i < 100; i++ {
			keys = append(keys, SampleKey(rng, dist, func(p float64) float64 { return p }))
		}
		return keys
	}

	first := draw(42)
	second := draw(42)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("draw %d differs between identical random streams: %v != %v", i, first[i], second[i])
		}
	}
}

func TestSampleKey_Frequencies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dist := map[string]float64{"a": 0.2, "b": 0.8}

	const n = 20000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		counts[SampleKey(rng, dist, func(p float64) float64 { return p })]++
	}

	for k, want := range dist {
		got := float64(counts[k]) / n
		if math.Abs(got-want) > 0.02 {
			t.Errorf("key %s: observed frequency %v, want %v", k, got, want)
		}
	}
}

func TestSampleKey_ZeroWeightsPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when no key can be drawn")
		}
	}()

	rng := rand.New(rand.NewSource(1))
	SampleKey(rng, map[string]float64{"a": 0.0}, func(p float64) float64 { return p })
}

func TestPolicy_Sample(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	policy := Policy[string, string]{
		"s": {"only": 1.0},
	}

	for i := 0; i < 10; i++ {
		if a := policy.Sample(rng, "s"); a != "only" {
			t.Fatalf("expected the single action with probability 1, got %v", a)
		}
	}
}

func TestPolicy_Sample_MissingStatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a state absent from the policy")
		}
	}()

	rng := rand.New(rand.NewSource(7))
	Policy[string, string]{}.Sample(rng, "missing")
}

func TestPolicy_Func(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	policy := Policy[int, int]{
		1: {10: 0.5, 20: 0.5},
	}

	choose := policy.Func(rng)
	counts := make(map[int]int)
	for i := 0; i < 1000; i++ {
		counts[choose(1)]++
	}

	if counts[10] == 0 || counts[20] == 0 {
		t.Errorf("both actions should be sampled under a 50/50 policy, got %v", counts)
	}
}
