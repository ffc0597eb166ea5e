// Package scheduler triggers crawl runs on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"rentwatch/internal/config"
	"rentwatch/internal/model"
)

// Runner is the crawl pipeline entry point driven by the scheduler.
type Runner interface {
	Run(ctx context.Context, citySlug string, maxPages int) (*model.RunStats, error)
}

// Scheduler periodically runs the pipeline for every configured city.
// Cities are crawled strictly one after another, so a single process
// never runs two crawls concurrently.
type Scheduler struct {
	runner Runner
	cities []config.City
	log    *slog.Logger
	tick   time.Duration
}

// New creates a Scheduler.
func New(runner Runner, cities []config.City, tick time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		cities: cities,
		log:    log,
		tick:   tick,
	}
}

// Run starts the scheduler loop, blocking until ctx is cancelled. The
// first crawl happens immediately.
func (s *Scheduler) Run(ctx context.Context) {
	s.crawlAll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.crawlAll(ctx)
		}
	}
}

func (s *Scheduler) crawlAll(ctx context.Context) {
	for _, city := range s.cities {
		if ctx.Err() != nil {
			return
		}
		stats, err := s.runner.Run(ctx, city.Slug, city.MaxPages)
		if err != nil {
			s.log.Error("crawl run failed", "city", city.Slug, "error", err)
			continue
		}
		s.log.Info("crawl run complete", "city", city.Slug,
			"pages", stats.Pages, "items", stats.ItemsSeen,
			"created", stats.Created, "updated", stats.Updated,
			"failed", stats.Failed, "deactivated", stats.Deactivated)
	}
}
