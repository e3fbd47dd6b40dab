package dp

import (
	"math"
	"testing"

	mdp "github.com/ebonwheeler/go-mdp"
	"github.com/ebonwheeler/go-mdp/gridworld"
)

const (
	discount  = 1.0
	threshold = 1e-9
)

// Converged state values for the 4x4 grid under the uniform random policy
// (both corners terminal, every move costs -1).
var gridRandomPolicyValues = map[string]float64{
	"0_0": 0, "0_1": -14, "0_2": -20, "0_3": -22,
	"1_0": -14, "1_1": -18, "1_2": -20, "1_3": -20,
	"2_0": -20, "2_1": -20, "2_2": -18, "2_3": -14,
	"3_0": -22, "3_1": -20, "3_2": -14, "3_3": 0,
}

func TestEvaluatePolicy_GridConvergence(t *testing.T) {
	env := gridworld.NewEnvironment(4, 4)
	policy := MakeUniformPolicy(env)

	values, _ := SolvePolicy(env, policy, discount, threshold)
	for s, want := range gridRandomPolicyValues {
		if got := values.Get(s); math.Abs(got-want) > 1e-3 {
			t.Errorf("state %s: value %v, want %v", s, got, want)
		}
	}
}

func TestEvaluatePolicy_FixedPointIsIdempotent(t *testing.T) {
	env := gridworld.NewEnvironment(4, 4)
	policy := MakeUniformPolicy(env)
	values, _ := SolvePolicy(env, policy, discount, threshold)

	again, delta := EvaluatePolicy(env, policy, values, discount)
	if delta > 1e-6 {
		t.Errorf("re-evaluating the fixed point moved values by %v", delta)
	}
	for s, v := range values {
		if math.Abs(again.Get(s)-v) > 1e-6 {
			t.Errorf("state %s: value changed from %v to %v at the fixed point", s, v, again.Get(s))
		}
	}
}

func TestEvaluatePolicy_MissingStatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a policy missing a non-terminal state")
		}
	}()

	env := gridworld.NewEnvironment(3, 3)
	policy := MakeUniformPolicy(env)
	delete(policy, gridworld.StateID(1, 1))
	EvaluatePolicy(env, policy, make(mdp.ValueTable[string]), discount)
}

func TestIterateStateValue_FindsOptimalValues(t *testing.T) {
	const size = 4
	env := gridworld.NewEnvironment(size, size)

	values := SolveValues(env, discount, threshold)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			// Optimal cost is the step distance to the nearest terminal corner.
			want := -math.Min(float64(row+col), float64((size-1-row)+(size-1-col)))
			if got := values.Get(gridworld.StateID(row, col)); math.Abs(got-want) > 1e-6 {
				t.Errorf("state %s: optimal value %v, want %v", gridworld.StateID(row, col), got, want)
			}
		}
	}
}

func TestMakeGreedyPolicy_Soundness(t *testing.T) {
	env := gridworld.NewEnvironment(4, 4)
	values := SolveValues(env, discount, threshold)
	policy := MakeGreedyPolicy(env, values, discount)

	if err := policy.Validate(); err != nil {
		t.Fatalf("greedy policy invalid: %v", err)
	}

	// Every action assigned nonzero probability must be within tolerance of
	// the maximum action value for its state.
	for s, actions := range env {
		if env.Terminal(s) {
			continue
		}

		max := math.Inf(-1)
		actionValues := make(map[string]float64, len(actions))
		for a, result := range actions {
			actionValues[a] = actionValue(result, values, discount)
			max = math.Max(max, actionValues[a])
		}

		for a, prob := range policy[s] {
			if prob > 0 && max-actionValues[a] > 1e-6 {
				t.Errorf("state %s: action %s has probability %v but value %v < max %v",
					s, a, prob, actionValues[a], max)
			}
		}
	}
}

func TestMakeGreedyPolicy_SplitsTies(t *testing.T) {
	// In the center of a symmetric 3x3 grid all four moves are equally good.
	env := gridworld.NewEnvironment(3, 3)
	values := SolveValues(env, discount, threshold)
	policy := MakeGreedyPolicy(env, values, discount)

	center := policy[gridworld.StateID(1, 1)]
	if len(center) != 4 {
		t.Fatalf("expected all 4 tied actions kept at the center, got %v", center)
	}
	for a, prob := range center {
		if math.Abs(prob-0.25) > 1e-12 {
			t.Errorf("action %s: expected probability 0.25, got %v", a, prob)
		}
	}
}

func TestMakeUniformPolicy(t *testing.T) {
	env := gridworld.NewEnvironment(4, 4)
	policy := MakeUniformPolicy(env)

	if err := policy.Validate(); err != nil {
		t.Fatalf("uniform policy invalid: %v", err)
	}

	for s := range env {
		if env.Terminal(s) {
			if _, ok := policy[s]; ok {
				t.Errorf("terminal state %s should have no policy entry", s)
			}
			continue
		}
		for a, prob := range policy[s] {
			if math.Abs(prob-0.25) > 1e-12 {
				t.Errorf("state %s action %s: expected probability 0.25, got %v", s, a, prob)
			}
		}
	}
}
