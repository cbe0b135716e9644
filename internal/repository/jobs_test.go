package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hirehi-monitor/internal/api/hirehi"
	"hirehi-monitor/internal/cache"
	"hirehi-monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubScraper struct {
	result *hirehi.FetchResult
	err    error
	calls  int
}

func (s *stubScraper) FetchAll(ctx context.Context, params models.SearchParams) (*hirehi.FetchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func freshJobs() []models.Job {
	return []models.Job{
		{ID: "1", Title: "QA Kotlin", Company: "Acme", Level: "middle", Format: "удалённо", URL: "https://hirehi.ru/jobs/1"},
		{ID: "2", Title: "QA Android", Company: "Beta", Level: "senior", Format: "удалённо", URL: "https://hirehi.ru/jobs/2"},
	}
}

func newTestRepo(t *testing.T, scraper Scraper) (*Repository, *cache.FileCache) {
	t.Helper()
	fileCache := cache.New(filepath.Join(t.TempDir(), "jobs.json"), time.Hour, zap.NewNop())
	return New(scraper, fileCache, zap.NewNop()), fileCache
}

func TestGetJobsRefreshesWhenCacheAbsent(t *testing.T) {
	scraper := &stubScraper{result: &hirehi.FetchResult{Jobs: freshJobs(), TotalFound: 5}}
	repo, fileCache := newTestRepo(t, scraper)

	jobs := repo.GetJobs(context.Background(), models.SearchParams{Keywords: []string{"Kotlin"}})

	assert.Equal(t, 1, scraper.calls, "exactly one refresh cycle expected")
	assert.Len(t, jobs, 2)

	stats := fileCache.Statistics()
	require.NotNil(t, stats)
	assert.Equal(t, 5, stats.TotalJobs)
	assert.Equal(t, 2, stats.FilteredJobs)
	assert.Equal(t, []string{"Kotlin"}, stats.Keywords)
	assert.Len(t, fileCache.Load(), 2, "cache file written with the fresh jobs")
}

func TestGetJobsIsIdempotentWithinWindow(t *testing.T) {
	scraper := &stubScraper{result: &hirehi.FetchResult{Jobs: freshJobs(), TotalFound: 2}}
	repo, _ := newTestRepo(t, scraper)

	first := repo.GetJobs(context.Background(), models.SearchParams{})
	second := repo.GetJobs(context.Background(), models.SearchParams{})

	assert.Equal(t, 1, scraper.calls, "no implicit second refresh")
	assert.Equal(t, first, second)
}

func TestGetJobsFallsBackToCacheOnScrapeFailure(t *testing.T) {
	// a nanosecond TTL makes any saved cache immediately stale
	staleCache := cache.New(filepath.Join(t.TempDir(), "jobs.json"), time.Nanosecond, zap.NewNop())
	require.NoError(t, staleCache.Save(freshJobs(), nil))

	scraper := &stubScraper{err: errors.New("remote down")}
	repo := New(scraper, staleCache, zap.NewNop())

	jobs := repo.GetJobs(context.Background(), models.SearchParams{})

	assert.Equal(t, 1, scraper.calls)
	assert.Len(t, jobs, 2, "stale cache served when refresh fails")
	assert.Len(t, staleCache.Load(), 2, "cache not overwritten by the failed fetch")
}

func TestRefreshJobsPersistsEmptyResult(t *testing.T) {
	scraper := &stubScraper{result: &hirehi.FetchResult{Jobs: freshJobs(), TotalFound: 2}}
	repo, fileCache := newTestRepo(t, scraper)
	repo.GetJobs(context.Background(), models.SearchParams{})

	// a successful fetch with zero matches is legitimate data
	scraper.result = &hirehi.FetchResult{Jobs: nil, TotalFound: 40}
	jobs, stats, err := repo.RefreshJobs(context.Background(), models.SearchParams{Keywords: []string{"Erlang"}})

	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, 40, stats.TotalJobs)
	assert.Equal(t, 0, stats.FilteredJobs)
	assert.Empty(t, fileCache.Load())
}

func TestRefreshJobsReturnsErrorAndOldCacheOnFailure(t *testing.T) {
	scraper := &stubScraper{result: &hirehi.FetchResult{Jobs: freshJobs(), TotalFound: 2}}
	repo, fileCache := newTestRepo(t, scraper)
	repo.GetJobs(context.Background(), models.SearchParams{})

	scraper.err = errors.New("remote down")
	jobs, stats, err := repo.RefreshJobs(context.Background(), models.SearchParams{})

	assert.Error(t, err)
	assert.Nil(t, stats)
	assert.Len(t, jobs, 2, "previous cached list returned on failure")
	assert.Len(t, fileCache.Load(), 2)
}
