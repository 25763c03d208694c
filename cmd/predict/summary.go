package main

import (
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "One-line status; exits non-zero while predictions wait to be solved",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	t, err := openTracker()
	if err != nil {
		return err
	}

	now := clock()
	s := t.Summary("", now)
	formatSummary(cmd.OutOrStdout(), s, now)
	if s.ActionRequired() {
		return errActionRequired
	}
	return nil
}
