package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show ID...",
	Short: "Show every detail of one or more predictions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTracker()
		if err != nil {
			return err
		}

		now := clock()
		for _, m := range t.Lookup(args, now) {
			if !m.Found() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Prediction '%s' not found\n", m.ID)
				continue
			}
			formatPrediction(cmd.OutOrStdout(), m.Prediction, now)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
