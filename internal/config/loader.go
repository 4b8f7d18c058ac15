package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppDir is the per-user directory holding configs, logs and the database.
const AppDir = ".stacker"

// LoadStacker loads the stacker configuration.
// Search order: customPath -> ~/.stacker/configs/stacker.yaml -> ./configs/stacker.yaml -> embedded default
//
// Files are decoded over the defaults, so a partial file only overrides
// the keys it names.
func LoadStacker(customPath string) (StackerConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return StackerConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseStacker(data)
		if err != nil {
			return StackerConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("stacker.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseStacker(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "stacker.yaml")); err == nil {
		if cfg, err := parseStacker(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseStacker(defaultStackerYAML)
	if err != nil {
		return DefaultStackerConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parseStacker(data []byte) (StackerConfig, error) {
	cfg := DefaultStackerConfig()
	// Sequences replace rather than merge.
	cfg.Scoring.LineClear = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return StackerConfig{}, err
	}
	if cfg.Scoring.LineClear == nil {
		cfg.Scoring.LineClear = DefaultStackerConfig().Scoring.LineClear
	}
	if err := cfg.Validate(); err != nil {
		return StackerConfig{}, err
	}
	return cfg, nil
}

// UserDir returns ~/.stacker joined with elem, or empty if home is unavailable.
func UserDir(elem ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home, AppDir}, elem...)...)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	return UserDir("configs", filename)
}

// ApplyStackerPreset modifies the config based on a difficulty preset.
func ApplyStackerPreset(cfg *StackerConfig, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust handling based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Handling.LockDelay = 1.0
	case DifficultyHard:
		cfg.Handling.GravityPower = 0.05
		cfg.Handling.LockDelay = 0.3
	}
}
