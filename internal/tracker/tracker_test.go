package tracker

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/predict/internal/models"
	"github.com/rewired-gh/predict/internal/scoring"
	"github.com/rewired-gh/predict/internal/storage"
)

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) (*Tracker, *storage.Store) {
	t.Helper()
	st, err := storage.Open(filepath.Join(t.TempDir(), "predictions.json"), 0o600, 0o700)
	require.NoError(t, err)
	return New(st), st
}

// add stores a prediction emitted a week before now that realizes at now+offset.
func add(t *testing.T, tr *Tracker, statement string, confidence float64, offset time.Duration, tags ...string) *models.Prediction {
	t.Helper()
	b := tr.NewDraft(now.Add(-7*24*time.Hour)).
		SetStatement(statement).
		SetConfidence(confidence).
		SetRealizationDate(now.Add(offset)).
		SetTags(tags...)
	p, err := tr.Add(b)
	require.NoError(t, err)
	return p
}

func TestAdd_RejectsInvalidDraft(t *testing.T) {
	tr, st := newTracker(t)

	b := tr.NewDraft(now).SetStatement("Rain tomorrow").SetConfidence(1.5)
	p, err := tr.Add(b)
	assert.Nil(t, p)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Reasons, 2)
	assert.Equal(t, 0, st.Len())

	b.SetConfidence(0.7).SetRealizationDate(now.Add(24 * time.Hour))
	assert.Empty(t, b.Errors())
	p, err = tr.Add(b)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, models.StatusFuture, p.Status(now))
}

func TestList_FiltersByTagAndSorts(t *testing.T) {
	tr, _ := newTracker(t)
	late := add(t, tr, "late", 0.5, 72*time.Hour, "work")
	early := add(t, tr, "early", 0.5, time.Hour, "Work, home")
	add(t, tr, "other", 0.5, 2*time.Hour, "home")

	all := tr.List("")
	require.Len(t, all, 3)
	assert.Equal(t, early.ShortID(), all[0].ShortID())

	work := tr.List(" work ")
	require.Len(t, work, 2)
	assert.Equal(t, early.ShortID(), work[0].ShortID())
	assert.Equal(t, late.ShortID(), work[1].ShortID())

	assert.Empty(t, tr.List("missing"))
}

func TestStats(t *testing.T) {
	tr, _ := newTracker(t)

	empty := tr.Stats("", now, 5)
	assert.Zero(t, empty.Solved)
	assert.Nil(t, empty.Next)
	assert.Nil(t, empty.Brier)

	right := add(t, tr, "right", 1.0, -48*time.Hour)
	wrong := add(t, tr, "wrong", 1.0, -24*time.Hour)
	pending := add(t, tr, "pending", 0.4, -time.Hour)
	next := add(t, tr, "next", 0.6, time.Hour)
	add(t, tr, "later", 0.6, 48*time.Hour)

	require.NoError(t, tr.ApplyResolution(right.ShortID(), true, "", now, false))
	require.NoError(t, tr.ApplyResolution(wrong.ShortID(), false, "", now, false))

	st := tr.Stats("", now, 5)
	assert.Equal(t, 2, st.Solved)
	assert.Equal(t, 2, st.Future)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, []string{pending.ShortID()}, st.PendingIDs)
	require.NotNil(t, st.Next)
	assert.Equal(t, next.ShortID(), st.Next.ShortID())
	require.NotNil(t, st.Brier)
	assert.InDelta(t, 0.5, *st.Brier, 1e-12)
	require.NotNil(t, st.Accuracy)
	assert.InDelta(t, 0.5, *st.Accuracy, 1e-12)
	require.Len(t, st.Calibration, 1)
	assert.Equal(t, 2, st.Calibration[0].Count)
}

func TestStats_TagFilter(t *testing.T) {
	tr, _ := newTracker(t)
	p := add(t, tr, "tagged", 0.5, -time.Hour, "x")
	add(t, tr, "untagged", 0.5, -time.Hour)
	require.NoError(t, tr.ApplyResolution(p.ShortID(), true, "", now, false))

	st := tr.Stats("X", now, 5)
	assert.Equal(t, 1, st.Solved)
	assert.Equal(t, 0, st.Pending)
	require.NotNil(t, st.Brier)
	assert.InDelta(t, 0.25, *st.Brier, 1e-12)
}

func TestLookup(t *testing.T) {
	tr, _ := newTracker(t)
	due := add(t, tr, "due", 0.5, -time.Hour)
	future := add(t, tr, "future", 0.5, time.Hour)

	matches := tr.Lookup([]string{future.ShortID(), "zzzzzz"}, now)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].Found())
	assert.False(t, matches[1].Found())
	assert.Equal(t, "zzzzzz", matches[1].ID)

	pending := tr.Lookup(nil, now)
	require.Len(t, pending, 1)
	assert.Equal(t, due.ShortID(), pending[0].ID)
}

func TestShow(t *testing.T) {
	tr, _ := newTracker(t)
	p := add(t, tr, "shown", 0.5, time.Hour)

	shown := tr.Show([]string{"nope00", p.ShortID()})
	require.Len(t, shown, 1)
	assert.Equal(t, p.ShortID(), shown[0].ShortID())
}

func TestApplyResolution(t *testing.T) {
	tr, _ := newTracker(t)
	due := add(t, tr, "due", 0.8, -time.Hour)
	future := add(t, tr, "future", 0.8, time.Hour)

	err := tr.ApplyResolution("zzzzzz", true, "", now, false)
	assert.True(t, errors.Is(err, ErrNotFound))

	var verr *models.ValidationError
	err = tr.ApplyResolution(future.ShortID(), true, "", now, false)
	require.True(t, errors.As(err, &verr), "future predictions need early resolution")
	assert.Nil(t, future.Outcome)

	require.NoError(t, tr.ApplyResolution(future.ShortID(), true, "", now, true))
	assert.Equal(t, models.StatusSolved, future.Status(now))

	require.NoError(t, tr.ApplyResolution(due.ShortID(), false, "report", now, false))
	assert.Equal(t, "report", due.Proof)

	err = tr.ApplyResolution(due.ShortID(), true, "", now, false)
	require.True(t, errors.As(err, &verr), "solved predictions cannot be resolved again")
	assert.False(t, *due.Outcome)
}

func TestEdit(t *testing.T) {
	tr, _ := newTracker(t)
	p := add(t, tr, "edited", 0.5, -time.Hour, "old")
	fingerprint := p.Fingerprint()

	_, err := tr.Edit("zzzzzz", []string{"x"}, "")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = tr.Edit(p.ShortID(), []string{"new"}, "proof before resolution")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"OLD"}, p.Tags, "failed edit must not change tags")

	edited, err := tr.Edit(p.ShortID(), []string{"new, more"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW", "MORE"}, edited.Tags)
	assert.Equal(t, fingerprint, edited.Fingerprint())

	require.NoError(t, tr.ApplyResolution(p.ShortID(), true, "", now, false))
	edited, err = tr.Edit(p.ShortID(), nil, "source")
	require.NoError(t, err)
	assert.Equal(t, "source", edited.Proof)
	assert.Equal(t, []string{"NEW", "MORE"}, edited.Tags)
}

func TestDelete(t *testing.T) {
	tr, st := newTracker(t)
	p := add(t, tr, "deleted", 0.5, time.Hour)

	tr.Delete("zzzzzz")
	assert.Equal(t, 1, st.Len())

	tr.Delete(p.ShortID())
	assert.Equal(t, 0, st.Len())
}

func TestNext(t *testing.T) {
	tr, _ := newTracker(t)
	_, ok := tr.Next(now)
	assert.False(t, ok)

	add(t, tr, "past", 0.5, -time.Hour)
	later := add(t, tr, "later", 0.5, 2*time.Hour)
	sooner := add(t, tr, "sooner", 0.5, time.Hour)

	p, ok := tr.Next(now)
	require.True(t, ok)
	assert.Equal(t, sooner.ShortID(), p.ShortID())

	p, ok = tr.Next(now.Add(90 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, later.ShortID(), p.ShortID())
}

func TestSummary(t *testing.T) {
	tr, _ := newTracker(t)

	s := tr.Summary("", now)
	assert.False(t, s.ActionRequired())
	assert.Nil(t, s.Next)
	assert.Equal(t, scoring.NoDataScore, s.Brier)

	due := add(t, tr, "due", 0.7, -time.Hour)
	next := add(t, tr, "next", 0.7, time.Hour)

	s = tr.Summary("", now)
	require.True(t, s.ActionRequired())
	assert.Equal(t, due.ShortID(), s.Pending[0].ShortID())
	assert.Equal(t, next.ShortID(), s.Next.ShortID())

	require.NoError(t, tr.ApplyResolution(due.ShortID(), true, "", now, false))
	s = tr.Summary("", now)
	assert.False(t, s.ActionRequired())
	assert.InDelta(t, 0.09, s.Brier, 1e-12)
}

// Rain tomorrow: future, then pending once the clock passes the due date,
// then solved and scored.
func TestRainTomorrowScenario(t *testing.T) {
	tr, st := newTracker(t)

	b := tr.NewDraft(now).
		SetStatement("Rain tomorrow").
		SetConfidence(0.7).
		SetRealizationDate(now.Add(24 * time.Hour))
	p, err := tr.Add(b)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFuture, p.Status(now))

	later := now.Add(25 * time.Hour)
	assert.Equal(t, models.StatusPending, p.Status(later))

	require.NoError(t, tr.ApplyResolution(p.ShortID(), true, "", later, false))
	assert.Equal(t, models.StatusSolved, p.Status(later))

	stats := tr.Stats("", later, 5)
	require.NotNil(t, stats.Brier)
	assert.InDelta(t, 0.09, *stats.Brier, 1e-12)

	require.NoError(t, tr.Save())
	reopened, err := storage.Open(st.Path(), 0o600, 0o700)
	require.NoError(t, err)
	got, ok := reopened.Get(p.ShortID())
	require.True(t, ok)
	assert.Equal(t, models.StatusSolved, got.Status(later))
}

// recordingRepo counts the time queries the tracker makes on the store.
type recordingRepo struct {
	*storage.Store
	calls map[string]int
}

func (r *recordingRepo) PendingOf(now time.Time) []*models.Prediction {
	r.calls["PendingOf"]++
	return r.Store.PendingOf(now)
}

func (r *recordingRepo) Next(now time.Time) (*models.Prediction, bool) {
	r.calls["Next"]++
	return r.Store.Next(now)
}

func (r *recordingRepo) Last(now time.Time) (*models.Prediction, bool) {
	r.calls["Last"]++
	return r.Store.Last(now)
}

func TestQueriesUseStoreTimeQueries(t *testing.T) {
	_, st := newTracker(t)
	repo := &recordingRepo{Store: st, calls: map[string]int{}}
	tr := New(repo)

	due := add(t, tr, "due", 0.5, -time.Hour)
	next := add(t, tr, "next", 0.5, time.Hour)

	matches := tr.Lookup(nil, now)
	require.Len(t, matches, 1)
	assert.Equal(t, due.ShortID(), matches[0].ID)
	assert.Equal(t, 1, repo.calls["PendingOf"])

	p, ok := tr.Next(now)
	require.True(t, ok)
	assert.Equal(t, next.ShortID(), p.ShortID())
	assert.Equal(t, 1, repo.calls["Next"])

	p, ok = tr.Last(now)
	require.True(t, ok)
	assert.Equal(t, due.ShortID(), p.ShortID())
	assert.Equal(t, 1, repo.calls["Last"])

	stats := tr.Stats("", now, 5)
	require.NotNil(t, stats.Last)
	assert.Equal(t, due.ShortID(), stats.Last.ShortID())
	assert.Equal(t, 2, repo.calls["Last"])
}

func TestStats_EarlySolvedCountsAsSolved(t *testing.T) {
	tr, _ := newTracker(t)
	early := add(t, tr, "early", 0.8, 48*time.Hour, "x")
	later := add(t, tr, "later", 0.8, 72*time.Hour, "x")
	past := add(t, tr, "past", 0.8, -time.Hour, "x")
	add(t, tr, "untagged past", 0.8, -time.Minute)

	require.NoError(t, tr.ApplyResolution(early.ShortID(), true, "", now, true))

	st := tr.Stats("x", now, 5)
	assert.Equal(t, 1, st.Solved)
	assert.Equal(t, 1, st.Future)
	assert.Equal(t, 1, st.Pending)
	require.NotNil(t, st.Next)
	assert.Equal(t, later.ShortID(), st.Next.ShortID())
	require.NotNil(t, st.Last)
	assert.Equal(t, past.ShortID(), st.Last.ShortID(), "last is limited to the tag")
	require.NotNil(t, st.Brier)
	assert.InDelta(t, 0.04, *st.Brier, 1e-12)
}
