package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samdwyer/pivotwalk/internal/motion"
)

// Config holds game configuration options.
type Config struct {
	// LevelsDir loads levels from disk instead of the embedded set and
	// reloads them when files change. Empty means embedded levels.
	LevelsDir string
	// StartLevel is the id of the first level to play. Empty means the
	// first level in the set.
	StartLevel string
	// TickRate is the simulation step.
	TickRate time.Duration
	// Motion tunes how routes become avatar motion.
	Motion motion.Config
	// LogFile receives structured logs; the terminal belongs to the UI.
	LogFile string
	// LogLevel is the minimum level written to LogFile.
	LogLevel slog.Level
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		TickRate: time.Second / 60,
		Motion:   motion.DefaultConfig(),
		LogFile:  "pivotwalk.log",
		LogLevel: slog.LevelInfo,
	}
}

// ConfigFromEnv reads PIVOTWALK_* environment variables on top of
// DefaultConfig. Every malformed variable is reported.
func ConfigFromEnv() (Config, error) {
	return configFrom(os.LookupEnv)
}

func configFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	float := func(key string, dst *float64) {
		v, ok := lookup(key)
		if !ok {
			return
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		case math.IsNaN(f) || math.IsInf(f, 0):
			errs = append(errs, fmt.Errorf("%s: must be finite, got %v", key, f))
		default:
			*dst = f
		}
	}

	str("PIVOTWALK_LEVELS_DIR", &cfg.LevelsDir)
	str("PIVOTWALK_LEVEL", &cfg.StartLevel)
	str("PIVOTWALK_LOG_FILE", &cfg.LogFile)

	if v, ok := lookup("PIVOTWALK_TICK_RATE"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("PIVOTWALK_TICK_RATE: %w", err))
		case d <= 0:
			errs = append(errs, fmt.Errorf("PIVOTWALK_TICK_RATE: must be positive, got %s", d))
		default:
			cfg.TickRate = d
		}
	}

	if v, ok := lookup("PIVOTWALK_LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			errs = append(errs, fmt.Errorf("PIVOTWALK_LOG_LEVEL: %w", err))
		}
	}

	float("PIVOTWALK_SPEED", &cfg.Motion.BaseSpeed)
	float("PIVOTWALK_STAIR_SLOWDOWN", &cfg.Motion.StairSlowdown)
	float("PIVOTWALK_JUMP_HEIGHT", &cfg.Motion.JumpHeight)

	if v, ok := lookup("PIVOTWALK_ROTATION"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case motion.RotateContinuous.String():
			cfg.Motion.Rotation = motion.RotateContinuous
		case motion.RotateBeforeMove.String():
			cfg.Motion.Rotation = motion.RotateBeforeMove
		default:
			errs = append(errs, fmt.Errorf("PIVOTWALK_ROTATION: unknown mode %q", v))
		}
	}

	return cfg, errors.Join(errs...)
}
