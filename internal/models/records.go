package models

// RecordType names a personal-record category.
type RecordType string

const (
	// RecordMaxWeightReps is the heaviest weight lifted for an exact rep count.
	RecordMaxWeightReps RecordType = "max_weight_reps"
	// RecordMaxRepsWeight is the most reps done at an exact weight.
	RecordMaxRepsWeight RecordType = "max_reps_weight"
	// RecordMaxVolume is the best single-set weight*reps.
	RecordMaxVolume RecordType = "max_volume"
	// RecordMax1RM is the best estimated one-rep max.
	RecordMax1RM RecordType = "max_1rm"
	// RecordFastestTime is the lowest elapsed time.
	RecordFastestTime RecordType = "fastest_time"
)

// PersonalRecord is one stored record. Which fields are meaningful depends on
// Type: max_weight_reps is keyed by Reps, max_reps_weight by Weight, the rest
// are one per exercise.
type PersonalRecord struct {
	Type    RecordType `json:"type"`
	Weight  float64    `json:"weight,omitempty"`
	Reps    float64    `json:"reps,omitempty"`
	Volume  float64    `json:"volume,omitempty"`
	OneRM   float64    `json:"oneRM,omitempty"`
	Time    string     `json:"time,omitempty"`
	Seconds int        `json:"seconds,omitempty"`
	Date    string     `json:"date"`
	Set     Set        `json:"set"`
}

// ExerciseRecords holds every record for one exercise.
type ExerciseRecords struct {
	Name    string           `json:"name"`
	Records []PersonalRecord `json:"records"`
}

// Achievement is a record broken by a newly logged set. The Previous* fields
// are nil when no earlier record existed.
type Achievement struct {
	Type   RecordType `json:"type"`
	Weight float64    `json:"weight,omitempty"`
	Reps   float64    `json:"reps,omitempty"`
	Volume float64    `json:"volume,omitempty"`
	OneRM  float64    `json:"oneRM,omitempty"`
	Time   string     `json:"time,omitempty"`

	PreviousWeight *float64 `json:"previousWeight,omitempty"`
	PreviousReps   *float64 `json:"previousReps,omitempty"`
	PreviousVolume *float64 `json:"previousVolume,omitempty"`
	PreviousOneRM  *float64 `json:"previousOneRM,omitempty"`
	PreviousTime   *string  `json:"previousTime,omitempty"`

	Date string `json:"date"`
}

// ExerciseAchievements groups the records broken by one exercise in a workout.
type ExerciseAchievements struct {
	Exercise     string        `json:"exercise"`
	Achievements []Achievement `json:"achievements"`
}
