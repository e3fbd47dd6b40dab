// Package gridworld builds the classic rows×cols grid navigation MDP as an
// explicit mdp.Environment, the library's worked example for the dp solver.
// Every move costs −1, moves off the edge leave the agent in place, and the
// top-left and bottom-right corners are terminal.
package gridworld

import (
	"fmt"

	mdp "github.com/ebonwheeler/go-mdp"
)

// The four moves, named by the direction they attempt.
const (
	Up    = "↑"
	Down  = "↓"
	Left  = "←"
	Right = "→"
)

// StateID returns the state identifier for the cell at (row, col).
func StateID(row, col int) string {
	return fmt.Sprintf("%d_%d", row, col)
}

// NewEnvironment builds the explicit grid environment.
func NewEnvironment(rows, cols int) mdp.Environment[string, string] {
	env := make(mdp.Environment[string, string], rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			actions := make(mdp.StateActions[string, string])
			if !(row == 0 && col == 0) && !(row == rows-1 && col == cols-1) {
				actions[Up] = mdp.DeterministicAction(StateID(max(row-1, 0), col), -1.0)
				actions[Down] = mdp.DeterministicAction(StateID(min(row+1, rows-1), col), -1.0)
				actions[Left] = mdp.DeterministicAction(StateID(row, max(col-1, 0)), -1.0)
				actions[Right] = mdp.DeterministicAction(StateID(row, min(col+1, cols-1)), -1.0)
			}
			env[StateID(row, col)] = actions
		}
	}
	return env
}
