package main

import (
	"github.com/spf13/cobra"

	"github.com/rewired-gh/predict/internal/scoring"
)

var statsBins int

var statsCmd = &cobra.Command{
	Use:   "stats [TAG]",
	Short: "Show counts, Brier score and calibration, optionally for one tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTracker()
		if err != nil {
			return err
		}

		tag := ""
		if len(args) == 1 {
			tag = args[0]
		}
		formatStats(cmd.OutOrStdout(), t.Stats(tag, clock(), statsBins))
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsBins, "bins", scoring.DefaultBins, "number of confidence buckets in the calibration table")
	rootCmd.AddCommand(statsCmd)
}
