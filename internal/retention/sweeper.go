// Package retention prunes old diagrams from the history store on a
// cron schedule so a long-lived server does not accumulate unbounded
// render history.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rendis/vizor/internal/store"
)

// Sweeper deletes diagrams older than MaxAge on the given schedule.
type Sweeper struct {
	store    store.Store
	schedule cron.Schedule
	maxAge   time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper. cronExpr uses the standard five-field
// format, e.g. "0 3 * * *" for daily at 03:00.
func NewSweeper(s store.Store, cronExpr string, maxAge time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("retention max age must be positive, got %s", maxAge)
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse retention schedule %q: %w", cronExpr, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    s,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
	}, nil
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return fmt.Errorf("sweeper already started")
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(sweepCtx)
	s.logger.Info("retention sweeper started", slog.Duration("max_age", s.maxAge))
	return nil
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	for {
		next := s.schedule.Next(time.Now().UTC())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("retention sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sweep prunes expired diagrams immediately. Called by the loop on
// schedule and exposed for manual triggering.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.maxAge)

	pruned, err := s.store.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune diagrams before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if pruned == 0 {
		return nil
	}

	s.logger.Info("pruned expired diagrams",
		slog.Int64("count", pruned),
		slog.Time("cutoff", cutoff),
	)

	// Reclaim file space only when rows were actually removed.
	if err := s.store.Vacuum(ctx); err != nil {
		return fmt.Errorf("vacuum after prune: %w", err)
	}
	return nil
}

// NextSweep returns the next scheduled sweep time after from.
func (s *Sweeper) NextSweep(from time.Time) time.Time {
	return s.schedule.Next(from)
}

// Stop gracefully shuts down the sweeper.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	s.logger.Info("retention sweeper stopped")
	return nil
}
