package model

import "time"

type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further status transitions may occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Activity is a single slot within a day. Time is a free-text label
// ("Morning", "Afternoon", "Evening"), not a clock time.
type Activity struct {
	Time        string `json:"time"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Day is one day of a generated itinerary. Day numbers are 1-based and
// sequential within a job's itinerary.
type Day struct {
	Day        int        `json:"day"`
	Theme      string     `json:"theme"`
	Activities []Activity `json:"activities"`
}

// Job is the lifecycle record of one itinerary-generation request.
// It is written once at submission (status processing) and mutated exactly
// once more, at the terminal transition. Exactly one of Itinerary or Error
// is present once the status is terminal.
type Job struct {
	JobID        string     `json:"jobId"`
	Status       JobStatus  `json:"status"`
	Destination  string     `json:"destination"`
	DurationDays int        `json:"durationDays"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Itinerary    []Day      `json:"itinerary,omitempty"`
	Error        *string    `json:"error,omitempty"`
}
