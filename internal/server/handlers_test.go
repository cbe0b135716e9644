package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hirehi-monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRepo struct {
	jobs       []models.Job
	stats      *models.JobStatistics
	refreshErr error
	refreshes  int
}

func (r *stubRepo) GetJobs(ctx context.Context, params models.SearchParams) []models.Job {
	return r.jobs
}

func (r *stubRepo) RefreshJobs(ctx context.Context, params models.SearchParams) ([]models.Job, *models.JobStatistics, error) {
	r.refreshes++
	if r.refreshErr != nil {
		return r.jobs, nil, r.refreshErr
	}
	return r.jobs, r.stats, nil
}

func (r *stubRepo) Statistics() *models.JobStatistics {
	return r.stats
}

func (r *stubRepo) LastUpdate() (time.Time, bool) {
	if r.stats == nil {
		return time.Time{}, false
	}
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), true
}

type stubArchive struct {
	rows      map[string]models.ArchivedJob
	archiveOK bool
	pingErr   error
}

func newStubArchive() *stubArchive {
	return &stubArchive{rows: map[string]models.ArchivedJob{}, archiveOK: true}
}

func (a *stubArchive) Archive(ctx context.Context, job models.Job, reason string) bool {
	if !a.archiveOK {
		return false
	}
	a.rows[job.ID] = models.ArchivedJob{Job: job, ArchivedAt: time.Now(), ArchiveReason: reason}
	return true
}

func (a *stubArchive) List(ctx context.Context, limit, offset int) ([]models.ArchivedJob, error) {
	out := make([]models.ArchivedJob, 0, len(a.rows))
	for _, row := range a.rows {
		out = append(out, row)
	}
	return out, nil
}

func (a *stubArchive) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := a.rows[id]
	delete(a.rows, id)
	return ok, nil
}

func (a *stubArchive) ArchivedIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(a.rows))
	for id := range a.rows {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (a *stubArchive) Ping(ctx context.Context) error {
	return a.pingErr
}

func (a *stubArchive) Statistics(ctx context.Context) (*models.ArchiveStatistics, error) {
	return &models.ArchiveStatistics{
		TotalArchived:         len(a.rows),
		ArchivedThisMonth:     len(a.rows),
		MostArchivedCompanies: []models.CompanyArchiveCount{},
	}, nil
}

func listingJobs() []models.Job {
	return []models.Job{
		{ID: "1", Title: "QA Kotlin", Company: "Acme", Level: "middle", Format: "удалённо", URL: "https://hirehi.ru/jobs/1"},
		{ID: "2", Title: "QA Android", Company: "Beta", Level: "senior", Format: "удалённо", URL: "https://hirehi.ru/jobs/2"},
	}
}

func newTestServer(repo JobRepository, archive ArchiveStore) *Server {
	return New(repo, archive, models.SearchParams{Keywords: []string{"Kotlin"}}, nil, 0, zap.NewNop())
}

func doRequest(t *testing.T, s *Server, method, target string, body []byte) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestJobsEndpoint(t *testing.T) {
	repo := &stubRepo{jobs: listingJobs()}
	s := newTestServer(repo, nil)

	resp := doRequest(t, s, http.MethodGet, "/api/jobs", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var jobs []models.Job
	decodeJSON(t, resp, &jobs)
	assert.Len(t, jobs, 2)
}

func TestJobsEndpointExcludesArchived(t *testing.T) {
	repo := &stubRepo{jobs: listingJobs()}
	archive := newStubArchive()
	archive.Archive(context.Background(), repo.jobs[0], "")

	s := newTestServer(repo, archive)

	resp := doRequest(t, s, http.MethodGet, "/api/jobs", nil)

	var jobs []models.Job
	decodeJSON(t, resp, &jobs)
	require.Len(t, jobs, 1)
	assert.Equal(t, "2", jobs[0].ID)
}

func TestRefreshEndpoint(t *testing.T) {
	repo := &stubRepo{
		jobs:  listingJobs(),
		stats: &models.JobStatistics{TotalJobs: 37, FilteredJobs: 2, Keywords: []string{"Kotlin"}},
	}
	s := newTestServer(repo, nil)

	resp := doRequest(t, s, http.MethodPost, "/api/refresh", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, repo.refreshes)

	var stats models.JobStatistics
	decodeJSON(t, resp, &stats)
	assert.Equal(t, 37, stats.TotalJobs)
	assert.Equal(t, 2, stats.FilteredJobs)
}

func TestRefreshEndpointFailure(t *testing.T) {
	repo := &stubRepo{refreshErr: assert.AnError}
	s := newTestServer(repo, nil)

	resp := doRequest(t, s, http.MethodPost, "/api/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Contains(t, body, "error")
}

func TestStatusEndpoint(t *testing.T) {
	repo := &stubRepo{
		jobs:  listingJobs(),
		stats: &models.JobStatistics{TotalJobs: 5, FilteredJobs: 2},
	}
	s := newTestServer(repo, newStubArchive())

	resp := doRequest(t, s, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	decodeJSON(t, resp, &status)
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, float64(2), status["jobs"])
	assert.Equal(t, true, status["archiveAvailable"])
	assert.Contains(t, status, "lastUpdated")
}

func TestStatusEndpointArchiveUnreachable(t *testing.T) {
	repo := &stubRepo{jobs: listingJobs()}
	archive := newStubArchive()
	archive.pingErr = assert.AnError
	s := newTestServer(repo, archive)

	resp := doRequest(t, s, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	decodeJSON(t, resp, &status)
	assert.Equal(t, false, status["archiveAvailable"])
}

func TestArchiveEndpoint(t *testing.T) {
	repo := &stubRepo{jobs: listingJobs()}
	archive := newStubArchive()
	s := newTestServer(repo, archive)

	body, _ := json.Marshal(archiveRequest{JobID: "1", Reason: "dup"})
	resp := doRequest(t, s, http.MethodPost, "/api/archive", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result archiveResponse
	decodeJSON(t, resp, &result)
	assert.True(t, result.Success)
	assert.Contains(t, archive.rows, "1")
}

func TestArchiveEndpointUnknownJob(t *testing.T) {
	repo := &stubRepo{jobs: listingJobs()}
	s := newTestServer(repo, newStubArchive())

	body, _ := json.Marshal(archiveRequest{JobID: "does-not-exist"})
	resp := doRequest(t, s, http.MethodPost, "/api/archive", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestArchiveEndpointDuplicate(t *testing.T) {
	repo := &stubRepo{jobs: listingJobs()}
	archive := newStubArchive()
	archive.archiveOK = false
	s := newTestServer(repo, archive)

	body, _ := json.Marshal(archiveRequest{JobID: "1"})
	resp := doRequest(t, s, http.MethodPost, "/api/archive", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var result archiveResponse
	decodeJSON(t, resp, &result)
	assert.False(t, result.Success)
}

func TestArchiveEndpointsWithoutStore(t *testing.T) {
	repo := &stubRepo{jobs: listingJobs()}
	s := newTestServer(repo, nil)

	targets := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/archive"},
		{http.MethodGet, "/api/archive"},
		{http.MethodGet, "/api/archive/statistics"},
		{http.MethodDelete, "/api/archive/1"},
	}

	for _, tt := range targets {
		resp := doRequest(t, s, tt.method, tt.target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "%s %s", tt.method, tt.target)
	}
}

func TestArchiveDeleteEndpoint(t *testing.T) {
	repo := &stubRepo{jobs: listingJobs()}
	archive := newStubArchive()
	archive.Archive(context.Background(), repo.jobs[0], "")
	s := newTestServer(repo, archive)

	resp := doRequest(t, s, http.MethodDelete, "/api/archive/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, s, http.MethodDelete, "/api/archive/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIndexRendersListing(t *testing.T) {
	repo := &stubRepo{
		jobs:  listingJobs(),
		stats: &models.JobStatistics{TotalJobs: 5, FilteredJobs: 2, Keywords: []string{"Kotlin"}},
	}
	s := newTestServer(repo, nil)

	resp := doRequest(t, s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "QA Kotlin")
	assert.Contains(t, string(body), "Acme")
}

func TestIndexEmptyStateNotAnError(t *testing.T) {
	repo := &stubRepo{}
	s := newTestServer(repo, nil)

	resp := doRequest(t, s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Вакансии не найдены")
}
