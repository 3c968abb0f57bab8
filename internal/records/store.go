package records

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/kvstore"
	"github.com/claude/liftlog/internal/models"
)

// StorageKey is the kv key holding every exercise's records as one document
// of shape {normalizedKey: ExerciseRecords}.
const StorageKey = "personalRecords"

// Store is the in-memory record map backed by a single kv document. The
// in-memory map is authoritative: failed saves are logged, never returned.
type Store struct {
	kv  kvstore.Store
	log *slog.Logger

	mu   sync.RWMutex
	data map[string]*models.ExerciseRecords
}

// NewStore creates a Store and loads any persisted records.
func NewStore(kv kvstore.Store, log *slog.Logger) *Store {
	s := &Store{kv: kv, log: log, data: make(map[string]*models.ExerciseRecords)}
	s.Load()
	return s
}

// Load replaces the in-memory map with the persisted document. A missing or
// corrupt document leaves an empty map.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make(map[string]*models.ExerciseRecords)
	err := kvstore.GetJSON(s.kv, StorageKey, &data)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		data = make(map[string]*models.ExerciseRecords)
	case err != nil:
		s.log.Warn("personal records corrupt, starting empty", "error", err)
		data = make(map[string]*models.ExerciseRecords)
	}
	for k, v := range data {
		if v == nil {
			delete(data, k)
		}
	}
	s.data = data
}

// saveLocked persists the map. Caller holds s.mu.
func (s *Store) saveLocked() {
	if err := kvstore.SetJSON(s.kv, StorageKey, s.data); err != nil {
		s.log.Error("saving personal records", "error", err)
	}
}

// entryLocked returns the record set for key, creating it on first use.
func (s *Store) entryLocked(key, name string) *models.ExerciseRecords {
	ex, ok := s.data[key]
	if !ok {
		ex = &models.ExerciseRecords{Name: name, Records: []models.PersonalRecord{}}
		s.data[key] = ex
	}
	return ex
}

// Records returns a copy of the records for the named exercise. Unknown
// exercises return an empty record list.
func (s *Store) Records(name string) models.ExerciseRecords {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ex, ok := s.data[NormalizeKey(name)]
	if !ok {
		return models.ExerciseRecords{Name: name, Records: []models.PersonalRecord{}}
	}
	return copyRecords(ex)
}

// Exercises returns every exercise with at least one record, sorted by name.
func (s *Store) Exercises() []models.ExerciseRecords {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ExerciseRecords
	for _, ex := range s.data {
		if len(ex.Records) == 0 {
			continue
		}
		out = append(out, copyRecords(ex))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RecentRecord is a record paired with the exercise it belongs to.
type RecentRecord struct {
	Exercise string                `json:"exercise"`
	Record   models.PersonalRecord `json:"record"`
}

// Recent returns records achieved within the last days days of now, most
// recent first. Records with unparseable dates are skipped.
func (s *Store) Recent(days int, now time.Time) []RecentRecord {
	cutoff := now.AddDate(0, 0, -days).Format(models.DateLayout)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []RecentRecord
	for _, ex := range s.data {
		for _, r := range ex.Records {
			if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
				continue
			}
			if r.Date < cutoff {
				continue
			}
			out = append(out, RecentRecord{Exercise: ex.Name, Record: r})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Record.Date != out[j].Record.Date {
			return out[i].Record.Date > out[j].Record.Date
		}
		return out[i].Exercise < out[j].Exercise
	})
	return out
}

// Clear drops every record, in memory and on disk.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*models.ExerciseRecords)
	if err := s.kv.Remove(StorageKey); err != nil {
		s.log.Error("clearing personal records", "error", err)
	}
}

func copyRecords(ex *models.ExerciseRecords) models.ExerciseRecords {
	out := models.ExerciseRecords{Name: ex.Name, Records: make([]models.PersonalRecord, len(ex.Records))}
	copy(out.Records, ex.Records)
	return out
}
