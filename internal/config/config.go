// Package config provides YAML-based game configuration loading and
// difficulty management for the stacker.
package config

import "fmt"

// StackerConfig contains all configuration for the stacker game.
type StackerConfig struct {
	Handling   StackerHandling  `yaml:"handling"`
	Matrix     StackerMatrix    `yaml:"matrix"`
	Queue      StackerQueue     `yaml:"queue"`
	Scoring    StackerScoring   `yaml:"scoring"`
	Tables     string           `yaml:"tables"` // Shape/kick document; empty uses the built-in tables
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// StackerHandling defines piece movement and timing.
type StackerHandling struct {
	GravityPower  float64 `yaml:"gravity_power"`   // Rows per tick
	SoftDropPower float64 `yaml:"soft_drop_power"` // Gravity multiplier while soft dropping
	LockDelay     float64 `yaml:"lock_delay"`      // Seconds a grounded piece may rest
	InitialDelay  uint32  `yaml:"initial_delay"`   // ms before a held shift repeats
	RepeatDelay   uint32  `yaml:"repeat_delay"`    // ms between repeated shifts
	HeldTicks     int     `yaml:"held_ticks"`      // Ticks a key press counts as held
}

// StackerMatrix defines the playfield geometry.
type StackerMatrix struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	LegalWidth  int `yaml:"legal_width"`
	LegalHeight int `yaml:"legal_height"`
	SpawnX      int `yaml:"spawn_x"`
	SpawnY      int `yaml:"spawn_y"`
}

// StackerQueue defines the upcoming-piece window.
type StackerQueue struct {
	WindowSize int `yaml:"window_size"`
	Preview    int `yaml:"preview"` // Pieces shown on screen
}

// StackerScoring defines points awarded per lock.
type StackerScoring struct {
	LineClear []int `yaml:"line_clear"` // Points for 1, 2, 3, 4 lines
}

// Points returns the score for clearing n lines at once.
func (s StackerScoring) Points(n int) int {
	if n <= 0 || len(s.LineClear) == 0 {
		return 0
	}
	if n > len(s.LineClear) {
		n = len(s.LineClear)
	}
	return s.LineClear[n-1]
}

// ValidationError reports a configuration value that cannot be used.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks that the configuration describes a playable board.
func (c StackerConfig) Validate() error {
	m := c.Matrix
	switch {
	case m.Width <= 0 || m.Height <= 0:
		return &ValidationError{Field: "matrix", Reason: "width and height must be positive"}
	case m.LegalWidth <= 0 || m.LegalHeight <= 0:
		return &ValidationError{Field: "matrix", Reason: "legal width and height must be positive"}
	case m.LegalWidth > m.Width || m.LegalHeight > m.Height:
		return &ValidationError{Field: "matrix", Reason: "legal region exceeds the matrix"}
	case m.SpawnX < 0 || m.SpawnX >= m.Width || m.SpawnY < 0 || m.SpawnY >= m.Height:
		return &ValidationError{Field: "matrix.spawn", Reason: "spawn point outside the matrix"}
	}

	h := c.Handling
	switch {
	case h.GravityPower < 0:
		return &ValidationError{Field: "handling.gravity_power", Reason: "must not be negative"}
	case h.SoftDropPower < 1:
		return &ValidationError{Field: "handling.soft_drop_power", Reason: "must be at least 1"}
	case h.LockDelay < 0:
		return &ValidationError{Field: "handling.lock_delay", Reason: "must not be negative"}
	}

	if c.Queue.WindowSize < 0 {
		return &ValidationError{Field: "queue.window_size", Reason: "must not be negative"}
	}
	return nil
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases during a game.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", "lines", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks/lines at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Multiplier added to gravity at max difficulty
	LockReduction   float64 `yaml:"lock_reduction"`   // Fraction of lock delay removed at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
