package handler_test

import (
	"context"

	"github.com/wayfarerhq/wayfarer/internal/model"
)

type mockJobService struct {
	submitFn     func(ctx context.Context, destination string, durationDays int) (string, error)
	getFn        func(ctx context.Context, jobID string) (*model.Job, error)
	listRecentFn func(ctx context.Context, limit int) ([]model.Job, error)
}

func (m *mockJobService) Submit(ctx context.Context, destination string, durationDays int) (string, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, destination, durationDays)
	}
	return "", nil
}

func (m *mockJobService) Get(ctx context.Context, jobID string) (*model.Job, error) {
	if m.getFn != nil {
		return m.getFn(ctx, jobID)
	}
	return nil, nil
}

func (m *mockJobService) ListRecent(ctx context.Context, limit int) ([]model.Job, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return []model.Job{}, nil
}

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}
