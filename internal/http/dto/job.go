package dto

import (
	"time"

	"github.com/wayfarerhq/wayfarer/internal/model"
)

// GenerateItineraryRequest is the submission payload. The duration range is
// enforced by the service so the rejection message can state the limit.
type GenerateItineraryRequest struct {
	Destination  string `json:"destination" binding:"required"`
	DurationDays int    `json:"durationDays"`
}

// JobAcceptedResponse acknowledges a submission before any work has happened.
type JobAcceptedResponse struct {
	JobID string `json:"jobId"`
}

// JobStatusResponse is the job projection returned to pollers. Exactly one of
// Itinerary or Error is present once the job is terminal; neither while it is
// processing.
type JobStatusResponse struct {
	JobID        string      `json:"jobId"`
	Status       string      `json:"status"`
	Destination  string      `json:"destination"`
	DurationDays int         `json:"durationDays"`
	CreatedAt    time.Time   `json:"createdAt"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	Itinerary    []model.Day `json:"itinerary,omitempty"`
	Error        *string     `json:"error,omitempty"`
}

func ToJobStatusResponse(job *model.Job) JobStatusResponse {
	return JobStatusResponse{
		JobID:        job.JobID,
		Status:       string(job.Status),
		Destination:  job.Destination,
		DurationDays: job.DurationDays,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
		Itinerary:    job.Itinerary,
		Error:        job.Error,
	}
}

type JobListResponse struct {
	Jobs  []JobStatusResponse `json:"jobs"`
	Count int                 `json:"count"`
}
