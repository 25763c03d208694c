// Package storage provides the in-memory prediction store with file-based
// persistence. The whole collection is loaded when the store is opened and
// written back in a single bulk save; mutations are not durable until Save
// is called.
//
// Saves are atomic: data is written to a temporary file that is renamed over
// the target, so a crash never leaves a half-written file behind. A file that
// exists but cannot be decoded is reported and left untouched.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rewired-gh/predict/internal/logger"
	"github.com/rewired-gh/predict/internal/models"
)

// FormatVersion is the schema version written to every data file.
const FormatVersion = "1"

var (
	// ErrStorageCorrupt is returned when the data file exists but cannot be decoded.
	ErrStorageCorrupt = eris.New("storage: data file is corrupt")
	// ErrStorageIO is returned when the data file cannot be created, read or written.
	ErrStorageIO = eris.New("storage: i/o failure")
)

// Store holds every prediction keyed by short ID.
type Store struct {
	predictions map[string]*models.Prediction
	mu          sync.RWMutex

	filePath        string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
}

// PersistenceFile represents the file structure for JSON persistence
type PersistenceFile struct {
	Version     string                        `json:"version"`
	SavedAt     time.Time                     `json:"saved_at"`
	Predictions map[string]*models.Prediction `json:"predictions"`
}

// New creates an empty store bound to filePath without touching the disk.
// If filePath is empty, uses OS-appropriate tmp directory
func New(filePath string, filePermissions, dirPermissions os.FileMode) *Store {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), "predict", "predictions.json")
	}

	return &Store{
		predictions:     make(map[string]*models.Prediction),
		filePath:        filePath,
		filePermissions: filePermissions,
		dirPermissions:  dirPermissions,
	}
}

// Open loads the store at filePath. A missing file is initialised empty and
// persisted immediately so later opens succeed.
func Open(filePath string, filePermissions, dirPermissions os.FileMode) (*Store, error) {
	s := New(filePath, filePermissions, dirPermissions)

	created, err := s.load()
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("Initialising empty prediction store at %s", s.filePath)
		if err := s.Save(); err != nil {
			return nil, err
		}
	}

	logger.Debug("Loaded %d predictions from %s", s.Len(), s.filePath)
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.filePath
}

// Len returns the number of stored predictions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.predictions)
}

// Add inserts or overwrites a prediction under its short ID.
// Validation is the builder's job; the store trusts its input.
func (s *Store) Add(p *models.Prediction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.predictions[p.ShortID()] = p
}

// Get retrieves a prediction by short ID.
func (s *Store) Get(id string) (*models.Prediction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.predictions[id]
	return p, ok
}

// Delete removes a prediction. Removing an absent ID is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.predictions, id)
}

// All returns every prediction sorted by realization date, ties broken by ID.
func (s *Store) All() []*models.Prediction {
	return s.filter(func(*models.Prediction) bool { return true })
}

// PastOf returns predictions whose realization date is at or before now.
func (s *Store) PastOf(now time.Time) []*models.Prediction {
	return s.filter(func(p *models.Prediction) bool { return p.IsDue(now) })
}

// FutureOf returns predictions whose realization date is after now.
func (s *Store) FutureOf(now time.Time) []*models.Prediction {
	return s.filter(func(p *models.Prediction) bool { return !p.IsDue(now) })
}

// PendingOf returns due predictions without an outcome.
func (s *Store) PendingOf(now time.Time) []*models.Prediction {
	return s.filter(func(p *models.Prediction) bool { return p.IsDue(now) && !p.IsResolved() })
}

// SolvedOf returns due predictions with an outcome.
func (s *Store) SolvedOf(now time.Time) []*models.Prediction {
	return s.filter(func(p *models.Prediction) bool { return p.IsDue(now) && p.IsResolved() })
}

// Next returns the future prediction with the earliest realization date.
func (s *Store) Next(now time.Time) (*models.Prediction, bool) {
	future := s.FutureOf(now)
	if len(future) == 0 {
		return nil, false
	}
	return future[0], true
}

// Last returns the past prediction with the latest realization date.
func (s *Store) Last(now time.Time) (*models.Prediction, bool) {
	past := s.PastOf(now)
	if len(past) == 0 {
		return nil, false
	}
	return past[len(past)-1], true
}

// filter returns the matching predictions in listing order.
func (s *Store) filter(keep func(*models.Prediction) bool) []*models.Prediction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		id string
		p  *models.Prediction
	}

	entries := make([]entry, 0, len(s.predictions))
	for id, p := range s.predictions {
		if keep(p) {
			entries = append(entries, entry{id: id, p: p})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		ri, rj := entries[i].p.RealizationDate, entries[j].p.RealizationDate
		if !ri.Equal(rj) {
			return ri.Before(rj)
		}
		return entries[i].id < entries[j].id
	})

	result := make([]*models.Prediction, len(entries))
	for i, e := range entries {
		result[i] = e.p
	}
	return result
}

// Save persists the whole collection, replacing the file atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Create data directory if needed
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, s.dirPermissions); err != nil {
		return eris.Wrapf(ErrStorageIO, "create data directory %s: %v", dir, err)
	}

	data := PersistenceFile{
		Version:     FormatVersion,
		SavedAt:     time.Now(),
		Predictions: s.predictions,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return eris.Wrapf(ErrStorageIO, "marshal predictions: %v", err)
	}

	// Write to temporary file first (atomic write)
	tempPath := s.filePath + ".tmp"
	if err := writeSynced(tempPath, jsonData, s.filePermissions); err != nil {
		_ = os.Remove(tempPath)
		return eris.Wrapf(ErrStorageIO, "write %s: %v", tempPath, err)
	}

	if err := os.Rename(tempPath, s.filePath); err != nil {
		_ = os.Remove(tempPath) // Clean up temp file on rename failure
		return eris.Wrapf(ErrStorageIO, "rename %s: %v", tempPath, err)
	}

	logger.Debug("Saved %d predictions to %s", len(s.predictions), s.filePath)
	return nil
}

// load restores state from file. It reports created=true when no file exists.
func (s *Store) load() (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clean up any stale temp files from previous crashes
	tempPath := s.filePath + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		logger.Warn("Removing stale temporary file %s", tempPath)
		_ = os.Remove(tempPath)
	}

	jsonData, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, eris.Wrapf(ErrStorageIO, "read %s: %v", s.filePath, err)
	}

	var data PersistenceFile
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return false, eris.Wrapf(ErrStorageCorrupt, "decode %s: %v", s.filePath, err)
	}
	if data.Version != FormatVersion {
		return false, eris.Wrapf(ErrStorageCorrupt, "%s: unsupported format version %q", s.filePath, data.Version)
	}

	// Records are keyed by their short ID regardless of the key in the file.
	s.predictions = make(map[string]*models.Prediction, len(data.Predictions))
	for key, p := range data.Predictions {
		if p == nil {
			return false, eris.Wrapf(ErrStorageCorrupt, "%s: empty record %q", s.filePath, key)
		}
		id := p.ShortID()
		if _, dup := s.predictions[id]; dup {
			return false, eris.Wrapf(ErrStorageCorrupt, "%s: two records share ID %s", s.filePath, id)
		}
		if key != id {
			logger.Warn("Record stored under %q has ID %s, re-keying", key, id)
		}
		s.predictions[id] = p
	}

	return false, nil
}

// writeSynced writes data and flushes it to stable storage before closing.
func writeSynced(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
