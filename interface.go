package mdp

// The sampling-based solvers (mc, td, approx) never see an explicit
// Environment. A problem plugs in through the callables below, which are the
// whole contract: sample a starting state, advance one transition, propose
// actions. Any stochasticity inside the problem (card draws, demand
// arrivals) is the problem's own; the solvers inject their randomness only
// at action selection and tie-breaking.

// StartFunc samples an initial state for a new episode.
type StartFunc[S Key] func() S

// StepFunc advances the environment by one transition. It returns the
// successor state, the reward collected on the transition, and ok=false
// when the transition is terminal, in which case next is meaningless and
// the episode ends.
type StepFunc[S, A Key] func(s S, a A) (next S, reward float64, ok bool)

// ActionFunc proposes an action for a state. It serves both as a full
// stochastic policy and as the random-action source for ε-greedy control.
type ActionFunc[S, A Key] func(s S) A

// FeatureFunc maps a (state, action) pair to its feature vector for linear
// function approximation, typically the output of a tile.TilingSet.
type FeatureFunc[S, A Key] func(s S, a A) []float64

// PossibleFunc reports whether a may legally be taken in s.
type PossibleFunc[S, A Key] func(s S, a A) bool
