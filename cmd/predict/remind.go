package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/predict/internal/telegram"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send the summary to the configured Telegram chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Telegram.Enabled {
			return eris.New("telegram reminders are disabled, set telegram.enabled in the config file")
		}

		t, err := openTracker()
		if err != nil {
			return err
		}

		client, err := telegram.NewClient(
			cfg.Telegram.BotToken,
			cfg.Telegram.ChatID,
			cfg.Telegram.MaxRetries,
			cfg.Telegram.RetryDelayBase,
		)
		if err != nil {
			return err
		}

		now := clock()
		if err := client.SendSummary(t.Summary("", now), now); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Reminder sent.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remindCmd)
}
