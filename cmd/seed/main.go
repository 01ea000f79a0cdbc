package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wayfarerhq/wayfarer/common/arangodb"
	"github.com/wayfarerhq/wayfarer/common/logger"
	"github.com/wayfarerhq/wayfarer/core/config"
	"github.com/wayfarerhq/wayfarer/internal/model"
	"github.com/wayfarerhq/wayfarer/internal/store"
)

// sampleJobID is stable so the status endpoint can be exercised right after
// seeding, without submitting a job first.
const sampleJobID = "sample-job-id-123"

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeSeed)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg)

	arango, err := arangodb.New(ctx, arangodb.Config{
		URL:      cfg.ArangoDB.URL,
		Username: cfg.ArangoDB.Username,
		Password: cfg.ArangoDB.Password,
		Database: cfg.ArangoDB.Database,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to document store", "error", err)
		os.Exit(1)
	}
	defer arango.Close()

	stores := store.NewStores(arango, cfg.ArangoDB.Collection)
	if err := stores.EnsureSchema(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to prepare document store", "error", err)
		os.Exit(1)
	}

	if err := seed(ctx, stores.Jobs()); err != nil {
		slog.ErrorContext(ctx, "seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, jobs store.JobStore) error {
	createdAt := time.Now().UTC()
	job := &model.Job{
		JobID:        sampleJobID,
		Status:       model.JobStatusProcessing,
		Destination:  "Paris, France",
		DurationDays: 2,
		CreatedAt:    createdAt,
	}

	if err := jobs.Insert(ctx, job); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			slog.InfoContext(ctx, "sample job already present", "job_id", sampleJobID)
			return nil
		}
		return fmt.Errorf("inserting sample job: %w", err)
	}

	if err := jobs.SetCompleted(ctx, sampleJobID, sampleItinerary(), createdAt.Add(9*time.Second)); err != nil {
		return fmt.Errorf("completing sample job: %w", err)
	}

	slog.InfoContext(ctx, "sample job seeded",
		"job_id", sampleJobID,
		"destination", job.Destination,
		"duration_days", job.DurationDays,
	)
	return nil
}

func sampleItinerary() []model.Day {
	return []model.Day{
		{
			Day:   1,
			Theme: "Historical Paris",
			Activities: []model.Activity{
				{Time: "Morning", Description: "Visit the Louvre Museum", Location: "Louvre Museum"},
				{Time: "Afternoon", Description: "Walk the Île de la Cité past Notre-Dame", Location: "Île de la Cité"},
				{Time: "Evening", Description: "Sunset cruise on the Seine", Location: "Seine River"},
			},
		},
		{
			Day:   2,
			Theme: "Montmartre and the Left Bank",
			Activities: []model.Activity{
				{Time: "Morning", Description: "Climb to Sacré-Cœur for the city view", Location: "Montmartre"},
				{Time: "Afternoon", Description: "Browse the stalls of the Latin Quarter", Location: "Latin Quarter"},
				{Time: "Evening", Description: "Dinner at a classic bistro", Location: "Saint-Germain-des-Prés"},
			},
		},
	}
}
