package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list [TAG]",
	Aliases: []string{"ls"},
	Short:   "List predictions, optionally only those carrying TAG",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTracker()
		if err != nil {
			return err
		}

		tag := ""
		if len(args) == 1 {
			tag = args[0]
		}

		preds := t.List(tag)
		if len(preds) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No predictions.")
			return nil
		}
		formatPredictionsList(cmd.OutOrStdout(), preds, clock())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
