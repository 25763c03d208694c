// Package tracker implements the operations the command line exposes on top
// of the prediction store: listing, statistics, creation, resolution, edits
// and deletion. Every time-dependent operation takes "now" explicitly.
package tracker

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/rewired-gh/predict/internal/logger"
	"github.com/rewired-gh/predict/internal/models"
	"github.com/rewired-gh/predict/internal/scoring"
)

// ErrNotFound is returned when no prediction matches an ID.
var ErrNotFound = eris.New("prediction not found")

// Repository is the subset of the store the tracker needs.
type Repository interface {
	Add(p *models.Prediction)
	Get(id string) (*models.Prediction, bool)
	Delete(id string)
	All() []*models.Prediction
	PastOf(now time.Time) []*models.Prediction
	FutureOf(now time.Time) []*models.Prediction
	PendingOf(now time.Time) []*models.Prediction
	SolvedOf(now time.Time) []*models.Prediction
	Next(now time.Time) (*models.Prediction, bool)
	Last(now time.Time) (*models.Prediction, bool)
	Save() error
}

// Tracker runs commands against a repository.
type Tracker struct {
	repo Repository
}

// New creates a Tracker.
func New(repo Repository) *Tracker {
	return &Tracker{repo: repo}
}

// Match pairs a requested ID with the prediction it resolved to, if any.
type Match struct {
	ID         string
	Prediction *models.Prediction // nil when not found
}

// Found reports whether the ID matched a prediction.
func (m Match) Found() bool {
	return m.Prediction != nil
}

// Stats summarises a (possibly tag-filtered) set of predictions.
type Stats struct {
	Solved      int
	Future      int
	Pending     int
	Next        *models.Prediction // nil when nothing is upcoming
	Last        *models.Prediction // nil when nothing is due yet
	Brier       *float64           // nil when nothing is solved
	Accuracy    *float64           // nil when nothing is solved
	Calibration []scoring.Bucket
	PendingIDs  []string
}

// Summary is the one-line status of the collection: a resolution reminder
// when predictions are overdue, otherwise a countdown to the next one,
// otherwise the score.
type Summary struct {
	Pending []*models.Prediction
	Next    *models.Prediction
	Brier   float64 // scoring.NoDataScore when nothing is solved
}

// ActionRequired reports whether predictions are waiting to be resolved.
func (s Summary) ActionRequired() bool {
	return len(s.Pending) > 0
}

// List returns predictions carrying tag (all when tag is empty), sorted by
// realization date.
func (t *Tracker) List(tag string) []*models.Prediction {
	return withTag(t.repo.All(), tag)
}

// withTag keeps the predictions carrying tag, preserving order. An empty tag
// keeps everything.
func withTag(preds []*models.Prediction, tag string) []*models.Prediction {
	if models.NormalizeTag(tag) == "" {
		return preds
	}

	var tagged []*models.Prediction
	for _, p := range preds {
		if p.HasTag(tag) {
			tagged = append(tagged, p)
		}
	}
	return tagged
}

// partition holds the predictions carrying a tag, split by status.
// Predictions solved ahead of their realization date count as solved.
type partition struct {
	pending []*models.Prediction
	solved  []*models.Prediction
	future  []*models.Prediction
	last    *models.Prediction
}

func (t *Tracker) partition(tag string, now time.Time) partition {
	var pt partition
	pt.pending = withTag(t.repo.PendingOf(now), tag)
	pt.solved = withTag(t.repo.SolvedOf(now), tag)

	for _, p := range withTag(t.repo.FutureOf(now), tag) {
		if p.IsResolved() {
			pt.solved = append(pt.solved, p)
		} else {
			pt.future = append(pt.future, p)
		}
	}

	if models.NormalizeTag(tag) == "" {
		pt.last, _ = t.repo.Last(now)
	} else if past := withTag(t.repo.PastOf(now), tag); len(past) > 0 {
		pt.last = past[len(past)-1]
	}
	return pt
}

// Stats computes counts, the next and last predictions and scores for
// predictions carrying tag. bins controls the calibration table resolution.
func (t *Tracker) Stats(tag string, now time.Time, bins int) Stats {
	pt := t.partition(tag, now)

	st := Stats{
		Solved:  len(pt.solved),
		Future:  len(pt.future),
		Pending: len(pt.pending),
		Last:    pt.last,
	}
	if len(pt.future) > 0 {
		st.Next = pt.future[0]
	}
	for _, p := range pt.pending {
		st.PendingIDs = append(st.PendingIDs, p.ShortID())
	}

	if len(pt.solved) > 0 {
		brier := scoring.BrierScore(pt.solved)
		st.Brier = &brier
		if acc, ok := scoring.Accuracy(pt.solved); ok {
			st.Accuracy = &acc
		}
		st.Calibration = scoring.Calibration(pt.solved, bins)
	}

	return st
}

// Lookup resolves each ID to its prediction. With no IDs it returns every
// pending prediction.
func (t *Tracker) Lookup(ids []string, now time.Time) []Match {
	if len(ids) == 0 {
		var matches []Match
		for _, p := range t.repo.PendingOf(now) {
			matches = append(matches, Match{ID: p.ShortID(), Prediction: p})
		}
		return matches
	}

	matches := make([]Match, 0, len(ids))
	for _, id := range ids {
		p, _ := t.repo.Get(id)
		matches = append(matches, Match{ID: id, Prediction: p})
	}
	return matches
}

// Show returns the predictions matching ids, skipping unknown ones.
func (t *Tracker) Show(ids []string) []*models.Prediction {
	var found []*models.Prediction
	for _, id := range ids {
		if p, ok := t.repo.Get(id); ok {
			found = append(found, p)
		}
	}
	return found
}

// ApplyResolution records an outcome for a pending prediction. Predictions
// that are not yet due are only accepted when early is set. The change is
// in memory until Save.
func (t *Tracker) ApplyResolution(id string, outcome bool, proof string, now time.Time, early bool) error {
	p, ok := t.repo.Get(id)
	if !ok {
		return eris.Wrapf(ErrNotFound, "resolve %s", id)
	}

	switch p.Status(now) {
	case models.StatusSolved:
		return &models.ValidationError{Reasons: []string{"prediction " + id + " is already solved"}}
	case models.StatusFuture:
		if !early {
			return &models.ValidationError{Reasons: []string{"prediction " + id + " is not due yet"}}
		}
	}

	if err := p.Resolve(outcome, proof); err != nil {
		return err
	}
	logger.Info("Resolved prediction %s as %t", id, outcome)
	return nil
}

// NewDraft starts a prediction draft stamped at now.
func (t *Tracker) NewDraft(now time.Time) *models.Builder {
	return models.NewBuilder(now)
}

// Add builds the draft and stores the result. A *models.ValidationError is
// returned while the draft is incomplete.
func (t *Tracker) Add(b *models.Builder) (*models.Prediction, error) {
	p, err := b.Build()
	if err != nil {
		return nil, err
	}

	if existing, ok := t.repo.Get(p.ShortID()); ok && existing.Fingerprint() != p.Fingerprint() {
		logger.Warn("Short ID %s collides with an existing prediction, overwriting it", p.ShortID())
	}
	t.repo.Add(p)
	logger.Info("Added prediction %s", p.ShortID())
	return p, nil
}

// Edit replaces the tags and, for solved predictions, the proof. A nil tags
// slice leaves tags untouched; an empty proof leaves the proof untouched.
func (t *Tracker) Edit(id string, tags []string, proof string) (*models.Prediction, error) {
	p, ok := t.repo.Get(id)
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "edit %s", id)
	}

	if proof != "" {
		if err := p.SetProof(proof); err != nil {
			return nil, err
		}
	}
	if tags != nil {
		p.SetTags(tags...)
	}
	return p, nil
}

// Delete removes a prediction; unknown IDs are ignored.
func (t *Tracker) Delete(id string) {
	t.repo.Delete(id)
	logger.Info("Deleted prediction %s", id)
}

// Next returns the upcoming prediction with the earliest realization date.
func (t *Tracker) Next(now time.Time) (*models.Prediction, bool) {
	return t.repo.Next(now)
}

// Last returns the due prediction with the latest realization date.
func (t *Tracker) Last(now time.Time) (*models.Prediction, bool) {
	return t.repo.Last(now)
}

// Summary builds the one-line status for predictions carrying tag.
func (t *Tracker) Summary(tag string, now time.Time) Summary {
	pt := t.partition(tag, now)

	s := Summary{
		Pending: pt.pending,
		Brier:   scoring.BrierScore(pt.solved),
	}
	if len(pt.future) > 0 {
		s.Next = pt.future[0]
	}
	return s
}

// Save flushes the repository to durable storage.
func (t *Tracker) Save() error {
	return eris.Wrap(t.repo.Save(), "tracker: save")
}
