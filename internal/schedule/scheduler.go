// Package schedule provides the one-shot timer facility behind the
// escalation chain. Callbacks fire at least once after their delay, each
// on its own goroutine; there is no cancellation API. "Cancelling" a
// pending check is done by the session no longer being active when the
// callback fires.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Scheduler struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Start makes the scheduler ready to accept jobs. Jobs scheduled before
// Start are dropped.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
}

// Stop discards all pending timers and waits for in-flight callbacks to
// finish. Pending jobs are lost; durable session state is the source of
// truth, so the server re-arms checks for active sessions on the next
// start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Schedule runs fn once after the given delay. The callback runs on its
// own goroutine so a slow store write or provider call never blocks other
// timers.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil {
		s.logger.Warn("schedule before start, job dropped", "delay", delay)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			fn()
		case <-ctx.Done():
		}
	}()
}
