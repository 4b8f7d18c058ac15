package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-stacker/internal/registry"
	"github.com/vovakirdan/tui-stacker/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the top 10 scores for a mode, or a summary of every mode
when none is given.

Examples:
  stacker scores
  stacker scores sprint`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func runScores(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintf(out, "  %-10s  %-6s  %-8s  %-8s  %s\n", "Mode", "Games", "Best", "Average", "Last played")
		for _, info := range registry.List() {
			stats, err := store.GetGameStats(info.ID)
			if err != nil {
				return err
			}
			last := "-"
			if stats.GamesCount > 0 {
				last = stats.LastPlayed.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(out, "  %-10s  %-6d  %-8d  %-8.0f  %s\n",
				info.ID, stats.GamesCount, stats.HighScore, stats.AvgScore, last)
		}
		return nil
	}

	modeID := args[0]
	game, err := registry.Create(modeID)
	if err != nil {
		return fmt.Errorf("%w (run 'stacker list' to see available modes)", err)
	}

	scores, err := store.TopScores(modeID, 10)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "High Scores - %s\n\n", game.Title())
	if len(scores) == 0 {
		fmt.Fprintln(out, "No scores recorded yet.")
		fmt.Fprintf(out, "\nPlay 'stacker play %s' to set the first high score!\n", modeID)
		return nil
	}

	fmt.Fprintf(out, "  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Fprintf(out, "  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Fprintf(out, "  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	if best, err := store.HighScore(modeID); err == nil {
		fmt.Fprintf(out, "\nBest: %d\n", best)
	}
	return nil
}
