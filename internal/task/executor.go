package task

import (
	"context"
	"log/slog"
	"sync"
)

// Executor runs submitted units of work on their own goroutines, capped at a
// fixed number running at once. Work runs on a context detached from the
// submitter's so it survives the request that spawned it.
type Executor struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewExecutor(maxConcurrent int) *Executor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Executor{
		sem: make(chan struct{}, maxConcurrent),
	}
}

// Submit schedules fn to run once a slot frees up. It never blocks and never
// rejects: callers have already persisted the work's record, so refusing here
// would strand it.
func (e *Executor) Submit(name string, fn func(ctx context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		e.sem <- struct{}{}
		defer func() { <-e.sem }()

		e.runSafe(name, fn)
	}()
}

// runSafe executes fn and recovers panics so one bad task cannot take down
// the process or leak a semaphore slot.
func (e *Executor) runSafe(name string, fn func(ctx context.Context)) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in background task",
				"task", name,
				"panic", r)
		}
	}()

	fn(ctx)
}

// Shutdown blocks until every submitted task has finished or ctx expires.
// Tasks are never cancelled; on deadline the stragglers keep running until
// the process exits.
func (e *Executor) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
