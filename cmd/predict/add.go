package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/predict/internal/models"
	"github.com/rewired-gh/predict/internal/prompt"
)

var (
	addStatement  string
	addConfidence string
	addDate       string
	addTags       string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new prediction",
	Long:  "Record a new prediction. Without --statement the prediction is collected interactively and previewed before it is saved.",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addStatement, "statement", "", "what you predict will happen")
	addCmd.Flags().StringVar(&addConfidence, "confidence", "", `confidence, e.g. "0.7", "70%" or "7 in 10"`)
	addCmd.Flags().StringVar(&addDate, "date", "", "realization date, e.g. 2025-03-04 or \"2025-03-04 18:30\"")
	addCmd.Flags().StringVar(&addTags, "tags", "", "comma-separated tags")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	t, err := openTracker()
	if err != nil {
		return err
	}

	draft := t.NewDraft(clock())
	if addStatement != "" {
		if err := fillDraftFromFlags(draft); err != nil {
			return err
		}
	} else if err := fillDraftInteractively(cmd, draft); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted, nothing saved.")
			return nil
		}
		return err
	}

	p, err := t.Add(draft)
	if err != nil {
		return reportInvalid(cmd, err)
	}
	if err := t.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved prediction %s\n", p.ShortID())
	return nil
}

func fillDraftFromFlags(draft *models.Builder) error {
	draft.SetStatement(addStatement)
	if addConfidence != "" {
		c, err := prompt.ParseRatio(addConfidence)
		if err != nil {
			return eris.Wrap(err, "--confidence")
		}
		draft.SetConfidence(c)
	}
	if addDate != "" {
		d, err := prompt.ParseDate(addDate, clock().Location())
		if err != nil {
			return eris.Wrap(err, "--date")
		}
		draft.SetRealizationDate(d)
	}
	if addTags != "" {
		draft.SetTags(addTags)
	}
	return nil
}

// fillDraftInteractively asks for each field until the user accepts the
// preview. Earlier answers are offered again when the user declines.
func fillDraftInteractively(cmd *cobra.Command, draft *models.Builder) error {
	out := cmd.OutOrStdout()
	p, err := prompt.New(out)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	for {
		statement, err := p.Text("Statement:", draft.Statement())
		if err != nil {
			return err
		}
		draft.SetStatement(statement)

		var prevConfidence *float64
		if c, ok := draft.Confidence(); ok {
			prevConfidence = &c
		}
		confidence, err := p.Ratio("Confidence:", prevConfidence)
		if err != nil {
			return err
		}
		draft.SetConfidence(confidence)

		var prevDue *time.Time
		if d, ok := draft.RealizationDate(); ok {
			prevDue = &d
		}
		due, err := p.Date("Realization date:", prevDue, draft.EmissionDate())
		if err != nil {
			return err
		}
		draft.SetRealizationDate(due)

		tags, err := p.OptionalText("Tags (comma-separated):", strings.Join(draft.Tags(), ", "))
		if err != nil {
			return err
		}
		draft.SetTags(tags)

		preview, err := draft.Build()
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			continue
		}
		formatPrediction(out, preview, clock())

		ok, err := p.Confirm("Is this OK?")
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}
