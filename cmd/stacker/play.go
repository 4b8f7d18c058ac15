package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-stacker/internal/platform/tui"
	"github.com/vovakirdan/tui-stacker/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play <mode>",
	Short: "Play a mode",
	Long: `Start playing the given mode.

Controls:
  Left/Right, h/l    - Move
  Down, j            - Soft drop
  Space              - Hard drop
  z / x, Up          - Rotate left / right
  v                  - Rotate 180
  c                  - Hold
  P                  - Pause
  Q/Ctrl+C           - Quit

After the round:
  Enter              - Play/pause the replay
  Backspace          - Play backwards
  Home/End           - Jump to start/end
  Tab                - Next timeline
  Any move key       - Branch from the frame on screen
  R                  - New round

Difficulty options:
  easy   - Longer lock delay, slow progression
  normal - Start at 30% difficulty
  hard   - Faster gravity, shorter lock delay
  fixed  - No progression

Examples:
  stacker play marathon
  stacker play sprint --seed 42
  stacker play marathon --difficulty hard --config ./stacker.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	id := args[0]
	if !registry.Exists(id) {
		return fmt.Errorf("unknown mode %q, run 'stacker list' to see available modes", id)
	}

	applyGameFlags()
	game, err := registry.Create(id)
	if err != nil {
		return err
	}

	store := openStore()
	defer closeStore(store)
	logger, closeLog := openGameLog()
	defer closeLog()

	return tui.Run(tui.NewModel(game, store, logger, runtimeConfig()))
}

// runMenu loops between the mode picker, the record browser and games
// until the user quits.
func runMenu(_ *cobra.Command, _ []string) error {
	applyGameFlags()
	store := openStore()
	defer closeStore(store)
	logger, closeLog := openGameLog()
	defer closeLog()

	cfg := runtimeConfig()
	for {
		res, err := tui.RunMenu(store, cfg)
		if err != nil {
			return err
		}
		cfg = res.Config

		switch {
		case res.Quit:
			return nil

		case res.WantsRecords:
			quit, err := browseRecords(store, logger, cfg)
			if err != nil || quit {
				return err
			}

		default:
			game, err := registry.Create(res.GameID)
			if err != nil {
				return err
			}
			if err := tui.Run(tui.NewModel(game, store, logger, cfg)); err != nil {
				return err
			}
		}
	}
}
