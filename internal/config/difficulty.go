package config

import "math"

// Progress is the game state difficulty is measured against.
type Progress struct {
	Score int
	Ticks int
	Lines int
}

// DifficultyManager calculates dynamic game parameters based on progress.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: cfg.InitialLevel,
	}
}

// SetInitialLevel overrides the initial difficulty level (0.0 to 1.0).
func (d *DifficultyManager) SetInitialLevel(level float64) {
	d.initialLevel = clampF(level, 0.0, 1.0)
}

// SetEnabled enables or disables difficulty progression.
func (d *DifficultyManager) SetEnabled(enabled bool) {
	d.cfg.Enabled = enabled
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// Level returns the current difficulty level (0.0 to 1.0).
func (d *DifficultyManager) Level(p Progress) float64 {
	if !d.IsEnabled() {
		return d.initialLevel
	}

	maxAt := float64(d.cfg.Progression.MaxAt)
	if maxAt <= 0 {
		maxAt = 1 // Prevent division by zero
	}

	var progress float64
	switch d.cfg.Progression.Type {
	case "score":
		progress = float64(p.Score) / maxAt
	case "time":
		progress = float64(p.Ticks) / maxAt
	case "lines":
		progress = float64(p.Lines) / maxAt
	default:
		return d.initialLevel
	}

	progress = clampF(progress, 0.0, 1.0)

	// Interpolate from initial level to 1.0
	return d.initialLevel + progress*(1.0-d.initialLevel)
}

// Gravity returns the gravity for the current level.
func (d *DifficultyManager) Gravity(base float64, p Progress) float64 {
	return base * (1.0 + d.Level(p)*d.cfg.Scaling.SpeedMultiplier)
}

// LockDelay returns the lock delay for the current level. It never drops
// below a tenth of the base delay.
func (d *DifficultyManager) LockDelay(base float64, p Progress) float64 {
	reduced := base * (1.0 - d.Level(p)*d.cfg.Scaling.LockReduction)
	return math.Max(reduced, base/10)
}

// Tier maps the current level onto 1..tiers for display.
func (d *DifficultyManager) Tier(p Progress, tiers int) int {
	if tiers <= 1 {
		return 1
	}
	return 1 + int(d.Level(p)*float64(tiers-1)+1e-9)
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
