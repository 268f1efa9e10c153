// Package worker runs the background loops that keep snapshots fresh:
// a jittered refresh loop per task plus helpers for timed waits.
package worker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

const (
	logFieldWorker = "worker"
	logFieldTask   = "task"
)

// Task is one periodic job inside a worker loop.
type Task struct {
	// Name identifies the task for logging.
	Name string

	// Interval between runs. Tasks with a non-positive interval never run.
	Interval time.Duration

	// Jitter adds up to this much random delay before each run, so
	// replicas started together don't hit upstream APIs in lockstep.
	Jitter time.Duration

	// RunOnStart runs the task once immediately when the loop starts.
	RunOnStart bool

	// Run executes the task. It must respect ctx cancellation.
	Run func(ctx context.Context)
}

// Config configures a worker loop.
type Config struct {
	Name   string
	Tasks  []Task
	Logger *zerolog.Logger
}

// Loop runs every task on its own ticker until the context is canceled
// and returns the wrapped context error. Tasks run sequentially within
// the loop; a slow task delays the others rather than overlapping them.
func Loop(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Int("tasks", len(cfg.Tasks)).Msg("Worker loop starting")
	defer logger.Info().Str(logFieldWorker, cfg.Name).Msg("Worker loop stopped")

	next := make([]time.Time, len(cfg.Tasks))

	now := time.Now()
	for i, task := range cfg.Tasks {
		if task.RunOnStart {
			next[i] = now
		} else {
			next[i] = now.Add(task.Interval)
		}
	}

	for {
		due, wait := dueTasks(cfg.Tasks, next, time.Now())

		for _, i := range due {
			task := cfg.Tasks[i]

			if err := Wait(ctx, jitterDelay(task.Jitter)); err != nil {
				return fmt.Errorf("worker loop %s: %w", cfg.Name, err)
			}

			logger.Debug().Str(logFieldTask, task.Name).Msg("Task starting")
			task.Run(ctx)

			next[i] = time.Now().Add(task.Interval)
		}

		if err := Wait(ctx, wait); err != nil {
			return fmt.Errorf("worker loop %s: %w", cfg.Name, err)
		}
	}
}

// minPoll bounds how long the loop sleeps between due-task checks.
const minPoll = time.Second

// dueTasks returns the indexes of tasks due at now and how long to sleep
// before the next check.
func dueTasks(tasks []Task, next []time.Time, now time.Time) (due []int, wait time.Duration) {
	wait = minPoll

	for i, task := range tasks {
		if task.Interval <= 0 || task.Run == nil {
			continue
		}

		if !next[i].After(now) {
			due = append(due, i)

			continue
		}

		if until := next[i].Sub(now); until < wait {
			wait = until
		}
	}

	return due, wait
}

func jitterDelay(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	return time.Duration(rand.Int63n(int64(max))) //nolint:gosec // scheduling jitter, not crypto
}

// Wait blocks until d elapses or the context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}

// RunWithTimeout runs fn with a timeout derived from the parent context.
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(timeoutCtx)
}

// RecoverPanic recovers from panics inside a task and logs them, so one
// bad cycle can't take the whole worker down.
// Use as: defer worker.RecoverPanic(logger, "aggregation cycle")
func RecoverPanic(logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("Recovered from panic")
	}
}
