package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next prediction coming due",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTracker()
		if err != nil {
			return err
		}

		now := clock()
		p, ok := t.Next(now)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "No upcoming predictions.")
			return nil
		}
		formatPrediction(cmd.OutOrStdout(), p, now)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nextCmd)
}
