package config

import (
	_ "embed"
)

//go:embed defaults/stacker.yaml
var defaultStackerYAML []byte

// DefaultStackerConfig returns the default stacker configuration.
func DefaultStackerConfig() StackerConfig {
	return StackerConfig{
		Handling: StackerHandling{
			GravityPower:  0.02,
			SoftDropPower: 10,
			LockDelay:     0.5,
			InitialDelay:  200,
			RepeatDelay:   50,
			HeldTicks:     4,
		},
		Matrix: StackerMatrix{
			Width:       10,
			Height:      40,
			LegalWidth:  10,
			LegalHeight: 20,
			SpawnX:      4,
			SpawnY:      22,
		},
		Queue: StackerQueue{
			WindowSize: 5,
			Preview:    5,
		},
		Scoring: StackerScoring{
			LineClear: []int{100, 300, 500, 800},
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "lines",
				MaxAt: 150,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 9.0,
				LockReduction:   0.5,
			},
		},
	}
}
