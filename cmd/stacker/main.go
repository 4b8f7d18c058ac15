// stacker is a falling-block puzzle game for the terminal that records
// every round and lets you rewind, replay and branch it.
//
// Usage:
//
//	stacker                        - Start the mode picker
//	stacker list                   - List available modes
//	stacker play <mode>            - Play a mode directly
//	stacker records                - Browse stored records
//	stacker watch <record-id>      - Review a stored record
//	stacker replay <record-id>     - Verify a record headlessly
//	stacker scores [mode]          - Show high scores
//	stacker serve                  - Start SSH server for remote play
//	stacker tables validate <file> - Check a shape and kick table file
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set piece queue seed for reproducible rounds
//	--db <path>     - Set database path (default: ~/.stacker/stacker.db)
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-stacker/internal/config"
	"github.com/vovakirdan/tui-stacker/internal/core"
	"github.com/vovakirdan/tui-stacker/internal/games/stacker"
	"github.com/vovakirdan/tui-stacker/internal/platform/tui"
	"github.com/vovakirdan/tui-stacker/internal/storage"
)

var (
	flagFPS    int
	flagSeed   uint64
	flagDBPath string

	flagConfig     string
	flagDifficulty string
	flagTables     string
)

// cliLog reports on stderr for the non-interactive commands.
var cliLog = log.NewWithOptions(os.Stderr, log.Options{Prefix: "stacker"})

func main() {
	if err := rootCmd.Execute(); err != nil {
		cliLog.Error(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stacker",
	Short: "Stacker - a falling-block game with replays and branching",
	Long: `Stacker is a falling-block puzzle game for the terminal.

Every round is recorded. When it ends you can play the replay forwards
or backwards, and pressing a move key at any frame starts a new branch
from there. Records are kept in a local database.

Examples:
  stacker
  stacker play marathon --difficulty hard
  stacker records
  stacker replay 1f2e3d4c`,
	SilenceUsage: true,
	RunE:         runMenu,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Piece queue seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.stacker/stacker.db", "Path to database")

	for _, cmd := range []*cobra.Command{rootCmd, playCmd} {
		cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom stacker config YAML")
		cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
		cmd.Flags().StringVar(&flagTables, "tables", "", "Path to shape and kick tables YAML")
	}

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tablesCmd)
}

// applyGameFlags hands the config flags to the game package before any
// game is created.
func applyGameFlags() {
	stacker.SetConfigPath(flagConfig)
	stacker.SetDifficultyPreset(flagDifficulty)
	stacker.SetTablesPath(flagTables)
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW, cfg.ScreenH = w, h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// openStore opens the database. Interactive commands keep working without
// it, so a failure is only reported.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		cliLog.Warn("could not open database", "path", flagDBPath, "err", err)
		return nil
	}
	return store
}

// openGameLog returns the file logger used while the terminal shows a game
// and a function closing it.
func openGameLog() (*log.Logger, func()) {
	path := config.UserDir("stacker.log")
	if path == "" {
		return nil, func() {}
	}
	logger, f, err := tui.OpenLog(path)
	if err != nil {
		cliLog.Warn("could not open log file", "path", path, "err", err)
		return nil, func() {}
	}
	return logger, func() { f.Close() }
}

func closeStore(store *storage.Store) {
	if store != nil {
		store.Close()
	}
}
