package scheduler

import (
	"context"
	"fmt"
	"time"

	"hirehi-monitor/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Repository is the slice of the job repository the refresher drives.
type Repository interface {
	RefreshJobs(ctx context.Context, params models.SearchParams) ([]models.Job, *models.JobStatistics, error)
}

// Refresher re-fetches the job list on a fixed interval so the cache stays
// warm between requests.
type Refresher struct {
	repo     Repository
	params   models.SearchParams
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func New(repo Repository, params models.SearchParams, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		repo:     repo,
		params:   params,
		interval: interval,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the periodic refresh and blocks until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, func() { r.refresh(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	r.cron.Start()
	r.logger.Info("background refresher started", zap.Duration("interval", r.interval))

	<-ctx.Done()

	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.logger.Info("background refresher stopped")

	return nil
}

func (r *Refresher) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	_, stats, err := r.repo.RefreshJobs(refreshCtx, r.params)
	if err != nil {
		r.logger.Error("scheduled refresh failed", zap.Error(err))
		return
	}

	r.logger.Info("scheduled refresh finished",
		zap.Int("total", stats.TotalJobs),
		zap.Int("filtered", stats.FilteredJobs),
	)
}
