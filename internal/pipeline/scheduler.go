package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler registers periodic handlers by name, guaranteeing each
// name is only ever wired to one cron entry. It backs the hourly
// EXPORT_SNAPSHOT sweep and any other interval-driven job.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger

	mu         sync.Mutex
	registered map[string]cron.EntryID
}

// NewScheduler builds a Scheduler using the given logger for handler
// failures. Call Start to begin firing registered handlers.
func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		log:        log,
		registered: make(map[string]cron.EntryID),
	}
}

// RegisterPeriodic wires fn to run every interval under name. Calling
// it twice with the same name returns ErrSchedulerBusy without
// touching the existing registration.
func (s *Scheduler) RegisterPeriodic(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registered[name]; exists {
		return ErrSchedulerBusy
	}

	spec := fmt.Sprintf("@every %s", interval.String())
	id, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if err := fn(ctx); err != nil {
			s.log.Error("periodic handler failed", "handler", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register periodic handler %q: %w", name, err)
	}

	s.registered[name] = id
	return nil
}

// Start begins firing registered handlers on their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and returns without waiting; the returned
// context is done once any in-flight handler has returned.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
