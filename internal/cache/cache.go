package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hirehi-monitor/internal/models"

	"go.uber.org/zap"
)

// envelope is the canonical on-disk shape: the job list plus metadata.
// The timestamp doubles as the last-update marker, so one atomic rename
// covers the data and its freshness.
type envelope struct {
	Jobs       []cachedJob           `json:"jobs"`
	Total      int                   `json:"total"`
	Timestamp  string                `json:"timestamp"`
	Statistics *models.JobStatistics `json:"statistics,omitempty"`
}

// cachedJob flattens requirements to a single space-joined string, the
// envelope's documented quirk. Multi-word requirement items do not survive
// the round trip.
type cachedJob struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Salary       string `json:"salary,omitempty"`
	Level        string `json:"level"`
	Format       string `json:"format"`
	URL          string `json:"url"`
	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements,omitempty"`
	Benefits     string `json:"benefits,omitempty"`
	Location     string `json:"location,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
}

// FileCache persists the job list to a single local JSON file.
type FileCache struct {
	path   string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func New(path string, ttl time.Duration, logger *zap.Logger) *FileCache {
	return &FileCache{
		path:   path,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Load reads the cached job list. A missing or malformed file is treated as
// an empty cache, never as an error.
func (c *FileCache) Load() []models.Job {
	env, ok := c.read()
	if !ok {
		return nil
	}

	jobs := make([]models.Job, 0, len(env.Jobs))
	for _, cached := range env.Jobs {
		jobs = append(jobs, models.Job{
			ID:           cached.ID,
			Title:        cached.Title,
			Company:      cached.Company,
			Salary:       cached.Salary,
			Level:        cached.Level,
			Format:       cached.Format,
			URL:          cached.URL,
			Description:  cached.Description,
			Requirements: splitJoined(cached.Requirements),
			Benefits:     splitJoined(cached.Benefits),
			Location:     cached.Location,
			PublishedAt:  cached.PublishedAt,
		})
	}
	return jobs
}

// Save overwrites the cache file with the given jobs and statistics. The
// write goes to a temp file first and is renamed into place, so readers
// never observe a partial file.
func (c *FileCache) Save(jobs []models.Job, stats *models.JobStatistics) error {
	env := envelope{
		Jobs:       make([]cachedJob, 0, len(jobs)),
		Total:      len(jobs),
		Timestamp:  c.now().Format(time.RFC3339),
		Statistics: stats,
	}

	for _, job := range jobs {
		env.Jobs = append(env.Jobs, cachedJob{
			ID:           job.ID,
			Title:        job.Title,
			Company:      job.Company,
			Salary:       job.Salary,
			Level:        job.Level,
			Format:       job.Format,
			URL:          job.URL,
			Description:  job.Description,
			Requirements: strings.Join(job.Requirements, " "),
			Benefits:     strings.Join(job.Benefits, " "),
			Location:     job.Location,
			PublishedAt:  job.PublishedAt,
		})
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache envelope: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}

	c.logger.Debug("cache saved",
		zap.String("path", c.path),
		zap.Int("jobs", len(jobs)),
	)

	return nil
}

// LastUpdate returns the envelope timestamp of the current cache file.
func (c *FileCache) LastUpdate() (time.Time, bool) {
	env, ok := c.read()
	if !ok {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, env.Timestamp)
	if err != nil {
		c.logger.Warn("unparseable cache timestamp",
			zap.String("timestamp", env.Timestamp),
		)
		return time.Time{}, false
	}

	return t, true
}

// IsStale reports whether the cache must be refreshed: absent, unreadable,
// or at least the TTL old. The boundary is inclusive: a cache exactly one
// TTL old is stale.
func (c *FileCache) IsStale() bool {
	last, ok := c.LastUpdate()
	if !ok {
		return true
	}
	return c.now().Sub(last) >= c.ttl
}

// Statistics returns the statistics persisted with the last save, if any.
func (c *FileCache) Statistics() *models.JobStatistics {
	env, ok := c.read()
	if !ok {
		return nil
	}
	return env.Statistics
}

func (c *FileCache) read() (*envelope, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read cache file",
				zap.String("path", c.path),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("malformed cache file, treating as empty",
			zap.String("path", c.path),
			zap.Error(err),
		)
		return nil, false
	}

	return &env, true
}

func splitJoined(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
