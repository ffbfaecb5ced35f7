// Package cron provides the scheduled roster refresh job using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// refreshSchedule runs every morning after the colleges publish updates.
const refreshSchedule = "0 6 * * *"

// Fetcher downloads a region's roster PDF and returns its local path.
type Fetcher interface {
	FetchRegion(ctx context.Context, region regions.Region, force bool) (string, error)
}

// RosterParser parses a roster file and persists the result.
type RosterParser interface {
	ParseAndStore(ctx context.Context, regionID regions.ID, path string) (schedule.Map, error)
}

// Indexer refreshes the pharmacy search index after a parse run.
type Indexer interface {
	IndexRegion(regionID regions.ID, schedules schedule.Map) error
}

// Notifier pushes refresh outcomes to subscribed devices.
type Notifier interface {
	NotifyRosterUpdated(ctx context.Context, tokens []string, regionName string, scheduleCount int) error
	NotifyRefreshFailure(ctx context.Context, tokens []string, regionName string) error
}

// Scheduler manages the daily roster refresh using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	fetcher  Fetcher
	roster   RosterParser
	indexer  Indexer  // Optional: nil skips search indexing
	notifier Notifier // Optional: nil disables push notifications
	tokens   []string
	logger   *slog.Logger
}

// NewScheduler creates a new roster refresh scheduler.
func NewScheduler(fetcher Fetcher, roster RosterParser, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		fetcher: fetcher,
		roster:  roster,
		logger:  logger,
	}
}

// WithIndexer adds search re-indexing to each refresh run.
func (s *Scheduler) WithIndexer(indexer Indexer) *Scheduler {
	s.indexer = indexer
	return s
}

// WithNotifier adds push notifications for the given device tokens.
func (s *Scheduler) WithNotifier(notifier Notifier, tokens []string) *Scheduler {
	s.notifier = notifier
	s.tokens = tokens
	return s
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(refreshSchedule, s.refreshAllRegions)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers a full refresh (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.refreshAllRegions()
}

// refreshAllRegions re-downloads and re-parses every region's roster.
func (s *Scheduler) refreshAllRegions() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.logger.Info("starting roster refresh")

	refreshed := 0
	failed := 0

	for _, region := range regions.All() {
		if err := s.refreshRegion(ctx, region); err != nil {
			s.logger.Warn("roster refresh failed",
				slog.String("region", string(region.ID)),
				slog.Any("error", err),
			)
			failed++
			continue
		}
		refreshed++
	}

	s.logger.Info("roster refresh completed",
		slog.Int("regions_refreshed", refreshed),
		slog.Int("regions_failed", failed),
	)
}

func (s *Scheduler) refreshRegion(ctx context.Context, region regions.Region) error {
	path, err := s.fetcher.FetchRegion(ctx, region, true)
	if err != nil {
		s.notifyFailure(ctx, region)
		return err
	}

	result, err := s.roster.ParseAndStore(ctx, region.ID, path)
	if err != nil {
		s.notifyFailure(ctx, region)
		return err
	}

	total := 0
	for _, list := range result {
		total += len(list)
	}
	if total == 0 {
		// Parsed without error but produced nothing: the layout likely
		// changed. Alert so the roster doesn't go quietly stale.
		s.notifyFailure(ctx, region)
		s.logger.Warn("roster refresh produced no schedules",
			slog.String("region", string(region.ID)))
		return nil
	}

	if s.indexer != nil {
		if err := s.indexer.IndexRegion(region.ID, result); err != nil {
			s.logger.Warn("search re-index failed",
				slog.String("region", string(region.ID)),
				slog.Any("error", err),
			)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyRosterUpdated(ctx, s.tokens, region.Name, total); err != nil {
			s.logger.Warn("update notification failed",
				slog.String("region", string(region.ID)),
				slog.Any("error", err),
			)
		}
	}

	s.logger.Debug("region refreshed",
		slog.String("region", string(region.ID)),
		slog.Int("schedules", total),
	)
	return nil
}

func (s *Scheduler) notifyFailure(ctx context.Context, region regions.Region) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyRefreshFailure(ctx, s.tokens, region.Name); err != nil {
		s.logger.Warn("failure notification failed",
			slog.String("region", string(region.ID)),
			slog.Any("error", err),
		)
	}
}
