// Package scoring computes calibration metrics over resolved predictions.
//
// The headline metric is the Brier score:
//
//	score = mean((confidence - observed)^2)
//
// where observed is 1 for a true outcome and 0 for a false one. Lower is
// better: 0 is a perfect, fully confident record and 1 is fully confident and
// always wrong. With no resolved predictions the score is NoDataScore, a value
// outside the valid range that reads as "nothing to score yet".
//
// Calibration splits resolved predictions into equal-width confidence buckets
// and compares the mean stated confidence of each bucket with how often its
// predictions actually came true.
//
// All functions are pure: they never mutate their input and the result does
// not depend on input order.
package scoring

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/rewired-gh/predict/internal/models"
)

// NoDataScore is returned by BrierScore when nothing has been resolved.
const NoDataScore = 2.0

// DefaultBins is the bucket count used for calibration tables.
const DefaultBins = 5

// Bucket is one row of a calibration table.
type Bucket struct {
	Lower          float64 // Inclusive lower confidence bound
	Upper          float64 // Exclusive upper bound (inclusive for the last bucket)
	Count          int
	MeanConfidence float64
	ObservedRate   float64 // Share of predictions in the bucket that came true
}

// Resolved returns the predictions that carry an outcome.
func Resolved(preds []*models.Prediction) []*models.Prediction {
	var out []*models.Prediction
	for _, p := range preds {
		if p != nil && p.IsResolved() {
			out = append(out, p)
		}
	}
	return out
}

// Observed maps an outcome to 1 (true) or 0 (false).
func Observed(p *models.Prediction) float64 {
	if p.Outcome != nil && *p.Outcome {
		return 1
	}
	return 0
}

// SquaredError is the Brier contribution of a single resolved prediction.
func SquaredError(p *models.Prediction) float64 {
	d := p.Confidence - Observed(p)
	return d * d
}

// BrierScore returns the mean squared error between confidence and outcome
// over the resolved predictions, or NoDataScore if there are none.
func BrierScore(preds []*models.Prediction) float64 {
	resolved := Resolved(preds)
	if len(resolved) == 0 {
		return NoDataScore
	}

	errs := make(stats.Float64Data, len(resolved))
	for i, p := range resolved {
		errs[i] = SquaredError(p)
	}
	// Summing in sorted order makes the result independent of input order.
	sort.Float64s(errs)

	mean, err := stats.Mean(errs)
	if err != nil {
		return NoDataScore
	}
	return mean
}

// Accuracy returns the share of resolved predictions whose confidence sided
// with the outcome (>= 0.5 for true, < 0.5 for false). ok is false when there
// is nothing resolved.
func Accuracy(preds []*models.Prediction) (rate float64, ok bool) {
	resolved := Resolved(preds)
	if len(resolved) == 0 {
		return 0, false
	}

	hits := 0
	for _, p := range resolved {
		if (p.Confidence >= 0.5) == (Observed(p) == 1) {
			hits++
		}
	}
	return float64(hits) / float64(len(resolved)), true
}

// Calibration groups resolved predictions into bins equal-width confidence
// buckets. Empty buckets are omitted. bins < 1 falls back to DefaultBins.
func Calibration(preds []*models.Prediction, bins int) []Bucket {
	if bins < 1 {
		bins = DefaultBins
	}

	confidences := make([]stats.Float64Data, bins)
	outcomes := make([]stats.Float64Data, bins)
	for _, p := range Resolved(preds) {
		i := bucketIndex(p.Confidence, bins)
		confidences[i] = append(confidences[i], p.Confidence)
		outcomes[i] = append(outcomes[i], Observed(p))
	}

	width := 1.0 / float64(bins)
	var table []Bucket
	for i := 0; i < bins; i++ {
		if len(confidences[i]) == 0 {
			continue
		}
		sort.Float64s(confidences[i])
		meanConf, _ := stats.Mean(confidences[i])
		rate, _ := stats.Mean(outcomes[i])

		table = append(table, Bucket{
			Lower:          float64(i) * width,
			Upper:          math.Min(1, float64(i+1)*width),
			Count:          len(confidences[i]),
			MeanConfidence: meanConf,
			ObservedRate:   rate,
		})
	}
	return table
}

// bucketIndex places confidence c in [0, bins). A confidence of exactly 1
// belongs to the last bucket.
func bucketIndex(c float64, bins int) int {
	i := int(math.Floor(c * float64(bins)))
	if i >= bins {
		i = bins - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
