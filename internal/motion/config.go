package motion

import "math"

// RotationMode selects how the avatar turns to face each hop.
type RotationMode int

const (
	// RotateContinuous turns while moving, finishing by the end of the segment.
	RotateContinuous RotationMode = iota
	// RotateBeforeMove turns in place first, then moves.
	RotateBeforeMove
)

// String returns a human-readable mode name.
func (m RotationMode) String() string {
	switch m {
	case RotateContinuous:
		return "continuous"
	case RotateBeforeMove:
		return "before-move"
	default:
		return "unknown"
	}
}

// Config tunes how hops become motion.
type Config struct {
	BaseSpeed     float64 // World units per second
	StairSlowdown float64 // Duration multiplier for stair hops, > 1
	JumpHeight    float64 // Arc peak above the higher stair endpoint
	ArriveEpsilon float64 // Distance under which the avatar counts as arrived
	TurnDuration  float64 // Seconds to turn towards a hop
	Rotation      RotationMode
}

// DefaultConfig returns the tuning used by the shipped levels.
func DefaultConfig() Config {
	return Config{
		BaseSpeed:     5,
		StairSlowdown: 1.5,
		JumpHeight:    0.3,
		ArriveEpsilon: 1e-3,
		TurnDuration:  0.1,
		Rotation:      RotateContinuous,
	}
}

// withDefaults fills unusable values from DefaultConfig. The timing fields
// must be finite; a non-finite JumpHeight is left to the straight-line
// fallback for stair hops.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if !finite(c.BaseSpeed) || c.BaseSpeed <= 0 {
		c.BaseSpeed = d.BaseSpeed
	}
	if !finite(c.StairSlowdown) || c.StairSlowdown < 1 {
		c.StairSlowdown = d.StairSlowdown
	}
	if c.JumpHeight < 0 {
		c.JumpHeight = d.JumpHeight
	}
	if !finite(c.ArriveEpsilon) || c.ArriveEpsilon <= 0 {
		c.ArriveEpsilon = d.ArriveEpsilon
	}
	if !finite(c.TurnDuration) || c.TurnDuration < 0 {
		c.TurnDuration = d.TurnDuration
	}
	return c
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
