package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"textinsight/internal/domain"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	runWatchTimeout       = 15 * time.Minute
)

// Runner executes one query through the pipeline.
type Runner interface {
	Run(ctx context.Context, query string) ([]domain.SummaryResult, error)
}

// Store keeps finished runs.
type Store interface {
	SaveRun(ctx context.Context, run domain.Run) (int64, error)
}

// Notifier delivers results to a chat.
type Notifier interface {
	SendResults(ctx context.Context, chatID int64, query string, results []domain.SummaryResult) error
}

// Scheduler re-runs watch queries on their cron schedules.
type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	runner   Runner
	store    Store
	notifier Notifier
	strategy string
	log      *slog.Logger
}

func New(
	ctx context.Context,
	runner Runner,
	store Store,
	notifier Notifier,
	strategy string,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:      ctx,
		cron:     c,
		runner:   runner,
		store:    store,
		notifier: notifier,
		strategy: strategy,
		log:      log,
	}
}

// Start registers every watch and starts the cron loop.
func (s *Scheduler) Start(watches []domain.Watch) error {
	for _, w := range watches {
		if _, err := s.cron.AddFunc(w.Schedule, func() { s.runWatch(w) }); err != nil {
			return fmt.Errorf("add watch (query = %s, schedule = %s): %w", w.Query, w.Schedule, err)
		}
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runWatch(w domain.Watch) {
	ctx, cancel := context.WithTimeout(s.ctx, runWatchTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	results, err := s.runner.Run(ctx, w.Query)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to run watch",
			"error", err,
			"query", w.Query,
			"chatID", w.ChatID)

		return
	}

	runID, err := s.store.SaveRun(ctx, domain.Run{
		Query:     w.Query,
		Strategy:  s.strategy,
		CreatedAt: time.Now(),
		Results:   results,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to save watch run",
			"error", err,
			"query", w.Query)
	} else {
		s.log.InfoContext(ctx, "Watch is done",
			"query", w.Query,
			"runID", runID,
			"results", len(results))
	}

	if w.ChatID == 0 || s.notifier == nil {
		return
	}

	if err = s.notifier.SendResults(ctx, w.ChatID, w.Query, results); err != nil {
		s.log.ErrorContext(ctx, "Failed to send watch results",
			"error", err,
			"query", w.Query,
			"chatID", w.ChatID,
			"results", len(results))
	}
}
