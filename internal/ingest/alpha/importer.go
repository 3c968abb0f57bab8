package alpha

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/kvstore"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/tracker"
)

// KeyImportedFiles is the kv key holding the content hashes of imported
// export files, mapped to the time they were imported.
const KeyImportedFiles = "alphaImports"

// Importer turns an Alpha Progression export into history workouts.
type Importer struct {
	tracker  *tracker.Tracker
	detector *records.Detector
	kv       kvstore.Store
	log      *slog.Logger
	now      func() time.Time
}

// NewImporter creates an Importer writing into t and rebuilding records with
// d. kv remembers which export files were already imported.
func NewImporter(t *tracker.Tracker, d *records.Detector, kv kvstore.Store, log *slog.Logger) *Importer {
	return &Importer{tracker: t, detector: d, kv: kv, log: log, now: time.Now}
}

// ImportFile imports the export at path. A file whose content was imported
// before is skipped unless force is set; the result then has a Message and
// no saved workouts.
func (im *Importer) ImportFile(path string, force bool) (*ingest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	seen := make(map[string]string)
	if err := kvstore.GetJSON(im.kv, KeyImportedFiles, &seen); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		im.log.Warn("import ledger unreadable, starting fresh", "error", err)
		seen = make(map[string]string)
	}
	if at, ok := seen[hash]; ok && !force {
		im.log.Info("skipping already imported file", "path", path, "imported_at", at)
		return &ingest.Result{Message: "already imported at " + at}, nil
	}

	res, err := im.Import(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	seen[hash] = im.now().UTC().Format(time.RFC3339)
	if err := kvstore.SetJSON(im.kv, KeyImportedFiles, seen); err != nil {
		return res, fmt.Errorf("recording import: %w", err)
	}
	return res, nil
}

// Import parses r, saves one workout per session date (sessions on the same
// day are merged, existing history on that date is replaced) and rebuilds
// personal records from the full history. Warmup sets are skipped.
func (im *Importer) Import(r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	byDate := make(map[string][]models.WorkoutExercise)
	for _, s := range sessions {
		date := s.Date.Format(models.DateLayout)
		for _, ex := range s.Exercises {
			we := models.WorkoutExercise{Name: ex.Name, Equipment: ex.Equipment, Sets: []models.Set{}}
			for _, set := range ex.Sets {
				if set.Warmup {
					result.WarmupsSkipped++
					continue
				}
				we.Sets = append(we.Sets, models.Set{
					Reps:      models.Num(set.Reps),
					Weight:    models.Num(set.Weight),
					Completed: true,
				})
			}
			byDate[date] = append(byDate[date], we)
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, d := range dates {
		w, err := im.tracker.SaveWorkout(d, byDate[d])
		if err != nil {
			return nil, fmt.Errorf("saving workout %s: %w", d, err)
		}
		result.WorkoutsSaved++
		result.SetsImported += w.SetCount()
	}
	result.Dates = dates

	if result.WorkoutsSaved > 0 {
		result.RecordExercises = im.detector.Backfill(im.tracker.History())
	}
	im.log.Info("alpha import complete",
		"sessions", result.SessionsReceived,
		"workouts", result.WorkoutsSaved,
		"sets", result.SetsImported,
	)
	return result, nil
}
