package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/predict/internal/models"
	"github.com/rewired-gh/predict/internal/prompt"
	"github.com/rewired-gh/predict/internal/tracker"
)

var (
	solveEarly   bool
	solveOutcome bool
	solveProof   string
)

var solveCmd = &cobra.Command{
	Use:   "solve [ID...]",
	Short: "Record the outcome of predictions",
	Long: "Record the outcome of the given predictions, or of every prediction waiting to be solved when no ID is given. " +
		"With --outcome the answers are taken from flags instead of asked for, and IDs are required.",
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().BoolVar(&solveEarly, "early", false, "allow solving predictions that are not due yet")
	solveCmd.Flags().BoolVar(&solveOutcome, "outcome", false, "outcome to record without prompting")
	solveCmd.Flags().StringVar(&solveProof, "proof", "", "proof to record with --outcome")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("outcome") && len(args) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "--outcome needs at least one prediction ID")
		return errInvalidInput
	}

	t, err := openTracker()
	if err != nil {
		return err
	}

	now := clock()
	matches := t.Lookup(args, now)
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to solve.")
		return nil
	}

	var decide func(p *models.Prediction) (ok, outcome bool, proof string, err error)
	if cmd.Flags().Changed("outcome") {
		decide = func(*models.Prediction) (bool, bool, string, error) {
			return true, solveOutcome, solveProof, nil
		}
	} else {
		pr, err := prompt.New(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer func() { _ = pr.Close() }()
		decide = func(p *models.Prediction) (bool, bool, string, error) {
			return askResolution(cmd, pr, p, now)
		}
	}

	solved := 0
	for _, m := range matches {
		if !m.Found() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Prediction '%s' not found\n", m.ID)
			continue
		}

		ok, outcome, proof, err := decide(m.Prediction)
		if errors.Is(err, prompt.ErrAborted) {
			break
		}
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		err = t.ApplyResolution(m.ID, outcome, proof, now, solveEarly)
		var verr *models.ValidationError
		if errors.As(err, &verr) || errors.Is(err, tracker.ErrNotFound) {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			continue
		}
		if err != nil {
			return err
		}
		solved++
	}

	if solved == 0 {
		return nil
	}
	if err := t.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Solved %d prediction(s)\n", solved)
	return nil
}

// askResolution walks the user through one prediction. ok is false when the
// user skips it or rejects the preview.
func askResolution(cmd *cobra.Command, pr *prompt.Prompter, p *models.Prediction, now time.Time) (ok, outcome bool, proof string, err error) {
	out := cmd.OutOrStdout()
	formatPrediction(out, p, now)

	if ok, err = pr.Confirm("Solve this prediction?"); err != nil || !ok {
		return false, false, "", err
	}
	if outcome, err = pr.Bool("Did it happen? [y/n]", ""); err != nil {
		return false, false, "", err
	}
	if proof, err = pr.OptionalText("Proof (optional):", ""); err != nil {
		return false, false, "", err
	}

	preview := p.Clone()
	if rerr := preview.Resolve(outcome, proof); rerr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), rerr)
		return false, false, "", nil
	}
	formatPrediction(out, preview, now)

	if ok, err = pr.Confirm("Is this OK?"); err != nil {
		return false, false, "", err
	}
	return ok, outcome, proof, nil
}
