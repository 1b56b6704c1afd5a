package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task is the unit of work run by a [Scheduler] on every tick.
type Task func(ctx context.Context)

// Scheduler runs a [Task] on a fixed repeating interval.
//
// Runs are serialised on a single goroutine: a tick that fires while the task
// is still running is coalesced by the ticker rather than starting a second,
// overlapping run. The first run happens one interval after Start; callers
// that want an immediate run invoke the task themselves before starting.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	interval time.Duration
	task     Task
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewScheduler creates a new [Scheduler]. The interval must be positive.
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop] or by cancelling the context passed to Start.
func NewScheduler(interval time.Duration, task Task, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

// Interval returns the scheduler's fixed tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start begins the tick loop in a background goroutine.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.safeRun(runCtx)
			}
		}
	}()
}

// Stop halts the scheduler and waits for an in-flight run to complete.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// safeRun calls the task with panic recovery. A panic is logged with a
// correlation ID and the full stack trace; the loop keeps ticking.
func (s *Scheduler) safeRun(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.task(ctx)
}
