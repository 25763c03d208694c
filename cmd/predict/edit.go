package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/predict/internal/models"
	"github.com/rewired-gh/predict/internal/prompt"
	"github.com/rewired-gh/predict/internal/tracker"
)

var (
	editTags  string
	editProof string
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change the tags or proof of a prediction",
	Long:  "Change the tags of a prediction, or the proof of a solved one. Without flags the new values are asked for interactively.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editTags, "tags", "", "replace tags with this comma-separated list")
	editCmd.Flags().StringVar(&editProof, "proof", "", "replace the proof of a solved prediction")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	t, err := openTracker()
	if err != nil {
		return err
	}
	id := args[0]

	var tags []string
	proof := editProof
	if cmd.Flags().Changed("tags") {
		tags = []string{editTags}
	}

	if !cmd.Flags().Changed("tags") && !cmd.Flags().Changed("proof") {
		matches := t.Show([]string{id})
		if len(matches) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Prediction '%s' not found\n", id)
			return nil
		}
		tags, proof, err = askEdits(cmd, matches[0])
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted, nothing saved.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	p, err := t.Edit(id, tags, proof)
	if errors.Is(err, tracker.ErrNotFound) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Prediction '%s' not found\n", id)
		return nil
	}
	if err != nil {
		return reportInvalid(cmd, err)
	}
	if err := t.Save(); err != nil {
		return err
	}

	formatPrediction(cmd.OutOrStdout(), p, clock())
	return nil
}

func askEdits(cmd *cobra.Command, p *models.Prediction) ([]string, string, error) {
	pr, err := prompt.New(cmd.OutOrStdout())
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = pr.Close() }()

	raw, err := pr.OptionalText("Tags (comma-separated):", strings.Join(p.Tags, ", "))
	if err != nil {
		return nil, "", err
	}

	proof := ""
	if p.IsResolved() {
		if proof, err = pr.OptionalText("Proof:", p.Proof); err != nil {
			return nil, "", err
		}
	}
	return []string{raw}, proof, nil
}
