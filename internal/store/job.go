package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	driver "github.com/arangodb/go-driver/v2/arangodb"

	"github.com/wayfarerhq/wayfarer/common/arangodb"
	"github.com/wayfarerhq/wayfarer/internal/model"
)

// Live request paths (submit, status poll, listing) retry transient store
// failures a couple of times before surfacing them. Terminal writes from the
// background generator are not retried here; the generator logs and moves on.
const (
	liveRetries   = 2
	liveRetryWait = 200 * time.Millisecond
)

// jobDocument is the stored shape of a job. The document key doubles as the
// public jobId so status lookups are single-document reads.
type jobDocument struct {
	Key string `json:"_key"`
	model.Job
}

type jobStore struct {
	stores *Stores
}

func newJobStore(stores *Stores) JobStore {
	return &jobStore{stores: stores}
}

func (s *jobStore) Insert(ctx context.Context, job *model.Job) error {
	col, err := s.stores.handle()
	if err != nil {
		return err
	}

	doc := jobDocument{Key: job.JobID, Job: *job}
	err = s.withLiveRetry(ctx, "insert job", func() error {
		_, err := col.CreateDocument(ctx, doc)
		return err
	})
	if err != nil {
		if arangodb.IsConflict(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *jobStore) GetByID(ctx context.Context, jobID string) (*model.Job, error) {
	col, err := s.stores.handle()
	if err != nil {
		return nil, err
	}

	var doc jobDocument
	err = s.withLiveRetry(ctx, "get job", func() error {
		_, err := col.ReadDocument(ctx, jobID, &doc)
		return err
	})
	if err != nil {
		if arangodb.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &doc.Job, nil
}

func (s *jobStore) SetCompleted(ctx context.Context, jobID string, itinerary []model.Day, completedAt time.Time) error {
	col, err := s.stores.handle()
	if err != nil {
		return err
	}

	patch := struct {
		Status      model.JobStatus `json:"status"`
		Itinerary   []model.Day     `json:"itinerary"`
		CompletedAt time.Time       `json:"completedAt"`
		Error       *string         `json:"error"`
	}{
		Status:      model.JobStatusCompleted,
		Itinerary:   itinerary,
		CompletedAt: completedAt,
	}

	if _, err := col.UpdateDocument(ctx, jobID, patch); err != nil {
		if arangodb.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}

func (s *jobStore) SetFailed(ctx context.Context, jobID string, message string, completedAt time.Time) error {
	col, err := s.stores.handle()
	if err != nil {
		return err
	}

	patch := struct {
		Status      model.JobStatus `json:"status"`
		CompletedAt time.Time       `json:"completedAt"`
		Error       string          `json:"error"`
	}{
		Status:      model.JobStatusFailed,
		CompletedAt: completedAt,
		Error:       message,
	}

	if _, err := col.UpdateDocument(ctx, jobID, patch); err != nil {
		if arangodb.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

const listRecentQuery = `
	FOR job IN @@collection
		SORT job.createdAt DESC
		LIMIT @limit
		RETURN job
`

func (s *jobStore) ListRecent(ctx context.Context, limit int) ([]model.Job, error) {
	db := s.stores.client.Database()
	if db == nil {
		return nil, fmt.Errorf("store schema not initialized, call EnsureSchema first")
	}

	var jobs []model.Job
	err := s.withLiveRetry(ctx, "list jobs", func() error {
		cursor, err := db.Query(ctx, listRecentQuery, &driver.QueryOptions{
			BindVars: map[string]any{
				"@collection": s.stores.collection,
				"limit":       limit,
			},
		})
		if err != nil {
			return err
		}
		defer cursor.Close()

		jobs = jobs[:0]
		for cursor.HasMore() {
			var doc jobDocument
			if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
				return fmt.Errorf("read job document: %w", err)
			}
			jobs = append(jobs, doc.Job)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *jobStore) withLiveRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) || attempt >= liveRetries {
			return err
		}

		slog.WarnContext(ctx, "store operation failed, retrying",
			"op", op,
			"attempt", attempt+1,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(liveRetryWait):
		}
	}
}

// isTransient reports whether a store error is worth retrying. Not-found and
// key conflicts are definitive answers from the server; everything else
// (network failures, 5xx) may clear up on a subsequent attempt.
func isTransient(err error) bool {
	return !arangodb.IsNotFound(err) && !arangodb.IsConflict(err)
}
