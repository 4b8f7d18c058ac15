package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-stacker/internal/stacker/tables"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Work with shape and kick tables",
}

var tablesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a shape and kick table file",
	Long: `Load a tables document the way the game does and report the first
problem: YAML syntax, schema violations or missing shapes and kicks.

Example:
  stacker tables validate ./my-tables.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runTablesValidate,
}

func init() {
	tablesCmd.AddCommand(tablesValidateCmd)
}

func runTablesValidate(cmd *cobra.Command, args []string) error {
	t, err := tables.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d shapes, %d kick entries)\n", args[0], len(t.Shapes), len(t.Kicks))
	return nil
}
