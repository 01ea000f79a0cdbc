package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/wayfarerhq/wayfarer/common/logger"
	"github.com/wayfarerhq/wayfarer/internal/generator"
	"github.com/wayfarerhq/wayfarer/internal/model"
	"github.com/wayfarerhq/wayfarer/internal/store"
)

const defaultListLimit = 100

var (
	ErrEmptyDestination = errors.New("destination is required")
	ErrInvalidDuration  = errors.New("durationDays is out of range")
	ErrJobNotFound      = errors.New("job not found")
)

// TaskRunner schedules background units of work. Satisfied by task.Executor;
// declared here so the service depends only on what it uses.
type TaskRunner interface {
	Submit(name string, fn func(ctx context.Context))
}

type JobService interface {
	Submit(ctx context.Context, destination string, durationDays int) (string, error)
	Get(ctx context.Context, jobID string) (*model.Job, error)
	ListRecent(ctx context.Context, limit int) ([]model.Job, error)
}

type jobService struct {
	jobs            store.JobStore
	generator       generator.Generator
	tasks           TaskRunner
	maxDurationDays int
}

func NewJobService(jobs store.JobStore, gen generator.Generator, tasks TaskRunner, maxDurationDays int) JobService {
	if maxDurationDays <= 0 {
		maxDurationDays = 30
	}
	return &jobService{
		jobs:            jobs,
		generator:       gen,
		tasks:           tasks,
		maxDurationDays: maxDurationDays,
	}
}

// Submit validates the request, persists a processing job record, and
// schedules generation in the background. It returns the job's id before any
// generation work begins; callers observe progress by polling Get.
func (s *jobService) Submit(ctx context.Context, destination string, durationDays int) (string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return "", ErrEmptyDestination
	}
	if durationDays < 1 || durationDays > s.maxDurationDays {
		return "", fmt.Errorf("%w: durationDays must be between 1 and %d", ErrInvalidDuration, s.maxDurationDays)
	}

	job := &model.Job{
		JobID:        uuid.NewString(),
		Status:       model.JobStatusProcessing,
		Destination:  destination,
		DurationDays: durationDays,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.jobs.Insert(ctx, job); err != nil {
		slog.ErrorContext(ctx, "failed to create job record",
			"error", err,
			"destination", destination,
		)
		return "", fmt.Errorf("creating job: %w", err)
	}

	// The background span links back to the trace that accepted the request.
	traceID := ""
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}

	jobID := job.JobID
	s.tasks.Submit("generate-itinerary", func(taskCtx context.Context) {
		s.generateAndStore(taskCtx, traceID, jobID, destination, durationDays)
	})

	slog.InfoContext(ctx, "job accepted",
		"job_id", jobID,
		"destination", destination,
		"duration_days", durationDays,
	)
	return jobID, nil
}

func (s *jobService) Get(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		slog.ErrorContext(ctx, "failed to load job",
			"error", err,
			"job_id", jobID,
		)
		return nil, fmt.Errorf("loading job: %w", err)
	}
	return job, nil
}

func (s *jobService) ListRecent(ctx context.Context, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	jobs, err := s.jobs.ListRecent(ctx, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list jobs", "error", err)
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// generateAndStore is the background half of Submit. Every exit path leaves
// the job in exactly one terminal state, except when the terminal write
// itself fails; then the job stays processing and the failure is logged.
func (s *jobService) generateAndStore(ctx context.Context, traceID, jobID, destination string, durationDays int) {
	sc := logger.StartSpanFromTraceID(ctx, traceID, "jobs.generate", trace.WithSpanKind(trace.SpanKindInternal))
	defer sc.End()
	ctx = sc.Context()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:   "wayfarer.jobs",
		JobID:       logger.Ptr(jobID),
		Destination: logger.Ptr(destination),
	})

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic during generation: %v", r)
			sc.RecordError(err)
			slog.ErrorContext(ctx, "panic during generation", "panic", r)
			s.markFailed(ctx, jobID, err.Error())
		}
	}()

	slog.InfoContext(ctx, "generation started")

	itinerary, err := s.generator.Generate(ctx, destination, durationDays)
	if err != nil {
		sc.RecordError(err)
		s.markFailed(ctx, jobID, fmt.Sprintf("Failed to generate itinerary: %v", err))
		return
	}

	if err := s.jobs.SetCompleted(ctx, jobID, itinerary, time.Now().UTC()); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "terminal write failed, job stuck processing",
			"error", err,
		)
		return
	}

	slog.InfoContext(ctx, "generation completed", "days", len(itinerary))
}

// markFailed records the terminal failure. A failed write here leaves the job
// processing and is only logged.
func (s *jobService) markFailed(ctx context.Context, jobID, message string) {
	if err := s.jobs.SetFailed(ctx, jobID, message, time.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "terminal write failed, job stuck processing",
			"error", err,
		)
		return
	}
	slog.WarnContext(ctx, "generation failed", "reason", message)
}
