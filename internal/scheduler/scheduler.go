// Package scheduler runs periodic background jobs on independent tickers
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"ynvest-tube/utils"
)

// Task is one periodic job. Runs of the same task never overlap.
type Task struct {
	Name       string
	Interval   time.Duration
	RunAtStart bool
	Run        func(ctx context.Context) error
}

// Scheduler owns a table of tasks
type Scheduler struct {
	tasks  []Task
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler for tasks. Tasks with a non-positive interval are disabled.
func New(tasks ...Task) *Scheduler {
	enabled := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Interval <= 0 || t.Run == nil {
			utils.Warn("scheduler: task disabled", map[string]any{"task": t.Name})
			continue
		}
		enabled = append(enabled, t)
	}
	return &Scheduler{tasks: enabled}
}

// Start launches one goroutine per task. Stop or cancel ctx to end them.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
	}
	utils.Info("scheduler started", map[string]any{"tasks": len(s.tasks)})
}

// Stop cancels every task and waits for in-flight runs to return
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	utils.Info("scheduler stopped", nil)
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	defer s.wg.Done()

	if t.RunAtStart {
		runOnce(ctx, t)
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, t)
		}
	}
}

func runOnce(ctx context.Context, t Task) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			utils.Error("scheduler: task panicked", map[string]any{"task": t.Name, "panic": p})
		}
	}()

	err := t.Run(ctx)
	fields := map[string]any{"task": t.Name, "duration_ms": time.Since(start).Milliseconds()}
	switch {
	case err == nil:
		utils.Debug("scheduler: task finished", fields)
	case errors.Is(err, context.Canceled):
		utils.Debug("scheduler: task interrupted", fields)
	default:
		fields["error"] = err.Error()
		utils.Error("scheduler: task failed", fields)
	}
}
