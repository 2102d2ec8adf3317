// Package scheduler refreshes the default aggregation on a cron cadence so
// the result cache stays warm between user requests.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mkellner/newsdesk/internal/aggregator"
	"github.com/mkellner/newsdesk/internal/logging"
	"github.com/mkellner/newsdesk/internal/models"
	"github.com/mkellner/newsdesk/internal/prefs"
)

// refreshTimeout bounds one scheduled aggregation run.
const refreshTimeout = 2 * time.Minute

type Scheduler struct {
	cron   *cron.Cron
	agg    *aggregator.Aggregator
	store  prefs.Store
	logger *logging.Logger
}

// New builds a Scheduler firing on the given cron spec.
func New(spec string, agg *aggregator.Aggregator, store prefs.Store, logger *logging.Logger) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		agg:    agg,
		store:  store,
		logger: logger,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins the cron loop and kicks off one immediate warm-up run.
func (s *Scheduler) Start() {
	s.cron.Start()
	go s.runOnce()
}

// Stop halts the cron loop. Running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce triggers a single refresh outside the schedule.
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	preferences := s.store.Load()

	start := time.Now()
	resp := s.agg.FetchArticles(ctx, preferences.Sources, models.ArticleFilters{})

	s.logger.Info("Scheduled refresh complete",
		logging.WithField("articles", resp.TotalCount),
		logging.WithField("failed_sources", len(resp.SourceErrors)),
		logging.WithField("elapsed", time.Since(start).String()))
}
