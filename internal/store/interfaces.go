package store

import (
	"context"
	"errors"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when an insert collides with an existing key
var ErrDuplicateKey = errors.New("duplicate key")

// JobStore defines the contract for itinerary job data access
type JobStore interface {
	Insert(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, jobID string) (*model.Job, error)
	SetCompleted(ctx context.Context, jobID string, itinerary []model.Day, completedAt time.Time) error
	SetFailed(ctx context.Context, jobID string, message string, completedAt time.Time) error
	ListRecent(ctx context.Context, limit int) ([]model.Job, error)
}

// Pinger reports whether the backing document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
