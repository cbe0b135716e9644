package repository

import (
	"context"
	"fmt"
	"time"

	"hirehi-monitor/internal/api/hirehi"
	"hirehi-monitor/internal/cache"
	"hirehi-monitor/internal/models"

	"go.uber.org/zap"
)

// Scraper is the slice of the hirehi scraper the repository needs.
type Scraper interface {
	FetchAll(ctx context.Context, params models.SearchParams) (*hirehi.FetchResult, error)
}

// Repository orchestrates the scraper and the file cache: serve from cache
// unless it is stale, refresh otherwise. Scraper failures degrade to the
// cached list, never to an error for plain reads.
type Repository struct {
	scraper Scraper
	cache   *cache.FileCache
	logger  *zap.Logger
	now     func() time.Time
}

func New(scraper Scraper, fileCache *cache.FileCache, logger *zap.Logger) *Repository {
	return &Repository{
		scraper: scraper,
		cache:   fileCache,
		logger:  logger,
		now:     time.Now,
	}
}

// GetJobs returns the current job list, refreshing first when the cache is
// empty or stale. Within the staleness window repeated calls return the
// cached list unchanged.
func (r *Repository) GetJobs(ctx context.Context, params models.SearchParams) []models.Job {
	cached := r.cache.Load()

	if len(cached) > 0 && !r.cache.IsStale() {
		return cached
	}

	jobs, _, err := r.RefreshJobs(ctx, params)
	if err != nil {
		r.logger.Warn("refresh failed, serving cached jobs",
			zap.Int("cached", len(cached)),
			zap.Error(err),
		)
		return cached
	}

	return jobs
}

// RefreshJobs always re-fetches and persists. On scraper failure the cache
// is left untouched and the previous list is returned alongside the error,
// so a broken fetch never wipes good data.
func (r *Repository) RefreshJobs(ctx context.Context, params models.SearchParams) ([]models.Job, *models.JobStatistics, error) {
	result, err := r.scraper.FetchAll(ctx, params)
	if err != nil {
		return r.cache.Load(), nil, fmt.Errorf("scrape jobs: %w", err)
	}

	stats := &models.JobStatistics{
		TotalJobs:    result.TotalFound,
		FilteredJobs: len(result.Jobs),
		LastUpdated:  r.now().Format(time.RFC3339),
		Keywords:     params.Keywords,
	}

	if err := r.cache.Save(result.Jobs, stats); err != nil {
		// the fetched data is still good; only persistence failed
		r.logger.Error("failed to persist refreshed jobs", zap.Error(err))
	}

	r.logger.Info("jobs refreshed",
		zap.Int("total", stats.TotalJobs),
		zap.Int("filtered", stats.FilteredJobs),
	)

	return result.Jobs, stats, nil
}

// CachedJobs returns the cache content without any refresh.
func (r *Repository) CachedJobs() []models.Job {
	return r.cache.Load()
}

// Statistics returns the statistics persisted with the last refresh.
func (r *Repository) Statistics() *models.JobStatistics {
	return r.cache.Statistics()
}

// LastUpdate exposes the cache timestamp for the status endpoint.
func (r *Repository) LastUpdate() (time.Time, bool) {
	return r.cache.LastUpdate()
}
