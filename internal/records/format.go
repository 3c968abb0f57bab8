package records

import (
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// WeightUnit is appended to displayed weights.
const WeightUnit = "kg"

// Format renders a record's value for display, e.g. "100 kg × 5".
func Format(r models.PersonalRecord) string {
	switch r.Type {
	case models.RecordMaxWeightReps:
		return fmt.Sprintf("%s %s × %s", formatWeight(r.Weight), WeightUnit, formatWeight(r.Reps))
	case models.RecordMaxRepsWeight:
		return fmt.Sprintf("%s reps @ %s %s", formatWeight(r.Reps), formatWeight(r.Weight), WeightUnit)
	case models.RecordMaxVolume:
		return fmt.Sprintf("%s %s (%s × %s)", formatWeight(r.Volume), WeightUnit, formatWeight(r.Weight), formatWeight(r.Reps))
	case models.RecordMax1RM:
		return fmt.Sprintf("%s %s", formatWeight(r.OneRM), WeightUnit)
	case models.RecordFastestTime:
		if r.Seconds > 0 {
			return FormatSeconds(r.Seconds)
		}
		return r.Time
	default:
		return ""
	}
}

// Describe names a record's category in prose.
func Describe(r models.PersonalRecord) string {
	switch r.Type {
	case models.RecordMaxWeightReps:
		return fmt.Sprintf("Heaviest weight for %s reps", formatWeight(r.Reps))
	case models.RecordMaxRepsWeight:
		return fmt.Sprintf("Most reps at %s %s", formatWeight(r.Weight), WeightUnit)
	case models.RecordMaxVolume:
		return "Best single-set volume"
	case models.RecordMax1RM:
		return "Best estimated one-rep max"
	case models.RecordFastestTime:
		return "Fastest time"
	default:
		return "Personal record"
	}
}

// FormatAchievement renders a newly broken record with its previous value.
func FormatAchievement(a models.Achievement) string {
	r := models.PersonalRecord{
		Type: a.Type, Weight: a.Weight, Reps: a.Reps, Volume: a.Volume, OneRM: a.OneRM, Time: a.Time,
	}
	msg := fmt.Sprintf("%s: %s", Describe(r), Format(r))

	var prev string
	switch {
	case a.PreviousWeight != nil:
		prev = formatWeight(*a.PreviousWeight) + " " + WeightUnit
	case a.PreviousReps != nil:
		prev = formatWeight(*a.PreviousReps) + " reps"
	case a.PreviousVolume != nil:
		prev = formatWeight(*a.PreviousVolume) + " " + WeightUnit
	case a.PreviousOneRM != nil:
		prev = formatWeight(*a.PreviousOneRM) + " " + WeightUnit
	case a.PreviousTime != nil:
		prev = *a.PreviousTime
	}
	if prev != "" {
		msg += " (was " + prev + ")"
	}
	return msg
}
