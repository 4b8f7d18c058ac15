package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-stacker/internal/core"
	"github.com/vovakirdan/tui-stacker/internal/platform/tui"
	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
	"github.com/vovakirdan/tui-stacker/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Browse stored records",
	Long: `Open the record browser. Enter watches a record, d deletes it.

With --plain the newest records are printed instead.

Examples:
  stacker records
  stacker records --plain --limit 5`,
	Args: cobra.NoArgs,
	RunE: runRecords,
}

var watchCmd = &cobra.Command{
	Use:   "watch <record-id>",
	Short: "Review a stored record",
	Long: `Open a stored record in the replay viewer. Any unique prefix of the
record id works. Branches played from it are saved into the same record.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	recordsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print records instead of opening the browser")
	recordsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Records to print with --plain")
}

func runRecords(cmd *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagPlain {
		return printRecords(cmd, store)
	}

	applyGameFlags()
	logger, closeLog := openGameLog()
	defer closeLog()
	_, err = browseRecords(store, logger, runtimeConfig())
	return err
}

func printRecords(cmd *cobra.Command, store *storage.Store) error {
	records, err := store.RecentRecords(flagLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No records yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tSCORE\tLINES\tTIME\tSEGMENTS\tDATE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%s\n",
			r.ID, r.Header.Game, r.Header.Score, r.Header.Lines,
			replay.Duration(r.Header.Frames), r.Header.Segments,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// browseRecords shows the record browser, watching whatever is picked,
// until the user goes back. It reports whether the user quit instead.
func browseRecords(store *storage.Store, logger *log.Logger, cfg core.RuntimeConfig) (quit bool, err error) {
	for {
		id, back, err := tui.RunRecords(store, cfg.ScreenW, cfg.ScreenH)
		if err != nil {
			return true, err
		}
		if id == "" {
			return !back, nil
		}

		m, err := tui.OpenWatch(store, logger, cfg, id)
		if err != nil {
			cliLog.Error("open record", "id", id, "err", err)
			continue
		}
		if err := tui.Run(m); err != nil {
			return true, err
		}
	}
}

func runWatch(_ *cobra.Command, args []string) error {
	applyGameFlags()
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	logger, closeLog := openGameLog()
	defer closeLog()

	m, err := tui.OpenWatch(store, logger, runtimeConfig(), args[0])
	if err != nil {
		return err
	}
	return tui.Run(m)
}
