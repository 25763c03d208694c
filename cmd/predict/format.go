package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/rewired-gh/predict/internal/models"
	"github.com/rewired-gh/predict/internal/scoring"
	"github.com/rewired-gh/predict/internal/tracker"
)

const dateTimeLayout = "2006-01-02@15:04"

var (
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// formatOutcome renders the tri-state outcome, coloured when resolved.
func formatOutcome(p *models.Prediction) string {
	switch {
	case p.Outcome == nil:
		return "open"
	case *p.Outcome:
		return green("true")
	default:
		return red("false")
	}
}

// formatPrediction writes every field of a prediction as aligned key/value pairs.
func formatPrediction(out io.Writer, p *models.Prediction, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	pair := func(k, v string) { _, _ = fmt.Fprintf(w, "%s\t%s\n", bold(k), v) }

	_, _ = fmt.Fprintln(w, strings.Repeat("-", 40))
	pair("id", p.ShortID())
	pair("status", string(p.Status(now)))
	pair("statement", p.Statement)
	pair("realization", p.RealizationDate.Local().Format(dateTimeLayout))
	pair("confidence", formatPercent(p.Confidence, 2))
	pair("emitted", p.EmissionDate.Local().Format(dateTimeLayout))
	pair("hash", p.Fingerprint())
	if p.Outcome != nil {
		pair("outcome", formatOutcome(p))
	}
	if p.Proof != "" {
		pair("proof", p.Proof)
	}
	if len(p.Tags) > 0 {
		pair("tags", strings.Join(p.Tags, ", "))
	}
	_ = w.Flush()
}

// formatPredictionsList writes one line per prediction.
func formatPredictionsList(out io.Writer, preds []*models.Prediction, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range preds {
		_, _ = fmt.Fprintf(w, "[%s]\t%s\t%s\t%s (%s)\t%s\t%s\n",
			p.ShortID(),
			formatPercent(p.Confidence, 0),
			formatOutcome(p),
			p.RealizationDate.Local().Format("2006-01-02"),
			humanize.RelTime(p.RealizationDate, now, "ago", "from now"),
			strings.Join(p.Tags, ", "),
			p.Statement,
		)
	}
	_ = w.Flush()
}

// formatStats writes the statistics block.
func formatStats(out io.Writer, st tracker.Stats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	pair := func(k, v string) { _, _ = fmt.Fprintf(w, "%s\t%s\n", bold(k), v) }

	pair("solved", fmt.Sprint(st.Solved))
	pair("future", fmt.Sprint(st.Future))
	pair("pending", fmt.Sprint(st.Pending))
	if st.Next != nil {
		pair("next", fmt.Sprintf("'%s' on %s", st.Next.ShortID(), st.Next.RealizationDate.Local().Format("2006-01-02")))
	}
	if st.Last != nil {
		pair("last", fmt.Sprintf("'%s' on %s", st.Last.ShortID(), st.Last.RealizationDate.Local().Format("2006-01-02")))
	}
	if st.Brier != nil {
		pair("brier_score", fmt.Sprintf("%.2f", *st.Brier))
	}
	if st.Accuracy != nil {
		pair("accuracy", formatPercent(*st.Accuracy, 0))
	}
	_ = w.Flush()

	if len(st.Calibration) > 0 {
		_, _ = fmt.Fprintln(out)
		formatCalibration(out, st.Calibration)
	}

	if st.Pending > 0 {
		_, _ = fmt.Fprintln(out, red(pendingReminder(st.PendingIDs)))
	}
}

// formatCalibration writes the calibration table.
func formatCalibration(out io.Writer, buckets []scoring.Bucket) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CONFIDENCE\tCOUNT\tSTATED\tOBSERVED")
	for _, b := range buckets {
		_, _ = fmt.Fprintf(w, "%s-%s\t%d\t%s\t%s\n",
			formatPercent(b.Lower, 0),
			formatPercent(b.Upper, 0),
			b.Count,
			formatPercent(b.MeanConfidence, 0),
			formatPercent(b.ObservedRate, 0),
		)
	}
	_ = w.Flush()
}

// formatSummary writes the one-line status.
func formatSummary(out io.Writer, s tracker.Summary, now time.Time) {
	_, _ = fmt.Fprint(out, "predict : ")

	switch {
	case s.ActionRequired():
		ids := make([]string, len(s.Pending))
		for i, p := range s.Pending {
			ids[i] = p.ShortID()
		}
		_, _ = fmt.Fprintln(out, red(pendingReminder(ids)))
	case s.Next != nil:
		days := int(s.Next.RealizationDate.Sub(now).Hours() / 24)
		_, _ = fmt.Fprintln(out, green(fmt.Sprintf("Next prediction in %d days", days)))
	default:
		_, _ = fmt.Fprintf(out, "%s %.2f\n", bold("brier_score"), s.Brier)
	}
}

func pendingReminder(ids []string) string {
	return fmt.Sprintf("You have %d predictions waiting to be solved (%s)", len(ids), strings.Join(ids, ", "))
}

func formatPercent(ratio float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, ratio*100)
}
