package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultStackerConfigValid(t *testing.T) {
	if err := DefaultStackerConfig().Validate(); err != nil {
		t.Fatalf("DefaultStackerConfig().Validate() = %v", err)
	}
}

func TestEmbeddedMatchesDefault(t *testing.T) {
	cfg, err := parseStacker(defaultStackerYAML)
	if err != nil {
		t.Fatalf("parseStacker(embedded) failed: %v", err)
	}
	def := DefaultStackerConfig()
	if cfg.Handling != def.Handling || cfg.Matrix != def.Matrix || cfg.Queue != def.Queue {
		t.Errorf("embedded config = %+v, want %+v", cfg, def)
	}
	if cfg.Difficulty != def.Difficulty {
		t.Errorf("embedded difficulty = %+v, want %+v", cfg.Difficulty, def.Difficulty)
	}
	if len(cfg.Scoring.LineClear) != 4 || cfg.Scoring.LineClear[3] != 800 {
		t.Errorf("embedded scoring = %v", cfg.Scoring.LineClear)
	}
}

func TestLoadStackerCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stacker.yaml")
	data := []byte("handling:\n  lock_delay: 0.25\nscoring:\n  line_clear: [1, 2]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadStacker(path)
	if err != nil {
		t.Fatalf("LoadStacker() failed: %v", err)
	}
	if cfg.Handling.LockDelay != 0.25 {
		t.Errorf("LockDelay = %v, want 0.25", cfg.Handling.LockDelay)
	}
	// Unnamed keys keep their defaults.
	if cfg.Handling.SoftDropPower != 10 || cfg.Matrix.Height != 40 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if got := cfg.Scoring.Points(4); got != 2 {
		t.Errorf("Points(4) = %d, want 2", got)
	}
}

func TestLoadStackerErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadStacker(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadStacker(missing) error = nil")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("matrix:\n  legal_width: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadStacker(bad)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("LoadStacker(bad) error = %v, want ValidationError", err)
	}
	if verr.Field != "matrix" {
		t.Errorf("Field = %q, want matrix", verr.Field)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*StackerConfig)
		field  string
	}{
		{"zero width", func(c *StackerConfig) { c.Matrix.Width = 0 }, "matrix"},
		{"spawn outside", func(c *StackerConfig) { c.Matrix.SpawnY = 40 }, "matrix.spawn"},
		{"negative gravity", func(c *StackerConfig) { c.Handling.GravityPower = -1 }, "handling.gravity_power"},
		{"weak soft drop", func(c *StackerConfig) { c.Handling.SoftDropPower = 0.5 }, "handling.soft_drop_power"},
		{"negative lock", func(c *StackerConfig) { c.Handling.LockDelay = -0.1 }, "handling.lock_delay"},
		{"negative window", func(c *StackerConfig) { c.Queue.WindowSize = -1 }, "queue.window_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultStackerConfig()
			tt.modify(&cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("Validate() = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestPoints(t *testing.T) {
	s := StackerScoring{LineClear: []int{100, 300, 500, 800}}
	tests := []struct {
		lines, want int
	}{
		{0, 0}, {1, 100}, {2, 300}, {3, 500}, {4, 800}, {5, 800},
	}
	for _, tt := range tests {
		if got := s.Points(tt.lines); got != tt.want {
			t.Errorf("Points(%d) = %d, want %d", tt.lines, got, tt.want)
		}
	}
	if got := (StackerScoring{}).Points(2); got != 0 {
		t.Errorf("empty Points(2) = %d, want 0", got)
	}
}

func TestDifficultyLevel(t *testing.T) {
	cfg := DifficultyConfig{
		Enabled:     true,
		Progression: ProgressionConfig{Type: "lines", MaxAt: 100},
		Scaling:     ScalingConfig{SpeedMultiplier: 9, LockReduction: 0.5},
	}
	d := NewDifficultyManager(cfg)

	if got := d.Level(Progress{Lines: 50}); got != 0.5 {
		t.Errorf("Level(50 lines) = %v, want 0.5", got)
	}
	if got := d.Level(Progress{Lines: 500}); got != 1 {
		t.Errorf("Level(500 lines) = %v, want 1", got)
	}
	if got := d.Gravity(0.02, Progress{Lines: 100}); got != 0.2 {
		t.Errorf("Gravity at max = %v, want 0.2", got)
	}
	if got := d.LockDelay(0.5, Progress{Lines: 100}); got != 0.25 {
		t.Errorf("LockDelay at max = %v, want 0.25", got)
	}
	if got := d.Tier(Progress{Lines: 100}, 15); got != 15 {
		t.Errorf("Tier at max = %d, want 15", got)
	}
	if got := d.Tier(Progress{}, 15); got != 1 {
		t.Errorf("Tier at start = %d, want 1", got)
	}

	d.SetEnabled(false)
	d.SetInitialLevel(0.3)
	if got := d.Level(Progress{Lines: 100}); got != 0.3 {
		t.Errorf("disabled Level = %v, want 0.3", got)
	}
}

func TestApplyStackerPreset(t *testing.T) {
	cfg := DefaultStackerConfig()
	ApplyStackerPreset(&cfg, DifficultyFixed)
	if cfg.Difficulty.Enabled {
		t.Error("fixed preset left progression enabled")
	}

	cfg = DefaultStackerConfig()
	ApplyStackerPreset(&cfg, DifficultyHard)
	if !cfg.Difficulty.Enabled || cfg.Difficulty.InitialLevel != 0.7 {
		t.Errorf("hard preset difficulty = %+v", cfg.Difficulty)
	}
	if cfg.Handling.LockDelay != 0.3 {
		t.Errorf("hard preset lock delay = %v, want 0.3", cfg.Handling.LockDelay)
	}
}
