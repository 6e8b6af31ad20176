// Package game runs a level: the per-tick simulation pipeline and the
// terminal host loop around it.
package game

// State represents the current game state.
type State int

const (
	// StatePlaying is the normal state: the player rotates pivots and clicks
	// nodes to walk.
	StatePlaying State = iota
	// StateLevelComplete is entered when the avatar reaches the final button.
	// Input is ignored until the next level is loaded.
	StateLevelComplete
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateLevelComplete:
		return "level complete"
	default:
		return "unknown"
	}
}
