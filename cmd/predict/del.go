package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var delCmd = &cobra.Command{
	Use:     "del ID",
	Aliases: []string{"rm"},
	Short:   "Delete a prediction",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTracker()
		if err != nil {
			return err
		}

		t.Delete(args[0])
		if err := t.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted prediction %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(delCmd)
}
