package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hirehi-monitor/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

// archivedJobRow mirrors the archived_jobs relation. Requirements and
// benefits are stored as JSON text.
type archivedJobRow struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Company       string    `db:"company"`
	Salary        *string   `db:"salary"`
	Level         string    `db:"level"`
	Format        string    `db:"format"`
	URL           string    `db:"url"`
	Description   *string   `db:"description"`
	Requirements  *string   `db:"requirements"`
	Benefits      *string   `db:"benefits"`
	Location      *string   `db:"location"`
	PublishedAt   *string   `db:"published_at"`
	ArchivedAt    time.Time `db:"archived_at"`
	ArchiveReason *string   `db:"archive_reason"`
}

var archiveColumns = []string{
	"id", "title", "company", "salary", "level", "format", "url",
	"description", "requirements", "benefits", "location", "published_at",
	"archived_at", "archive_reason",
}

// Archive inserts one archive row for the job. Archiving is a deliberate
// user action, so failure is reported, but as a boolean: a duplicate id
// (the job is already archived) or any other persistence error yields false.
func (s *Store) Archive(ctx context.Context, job models.Job, reason string) bool {
	row := archivedJobRow{
		ID:            job.ID,
		Title:         job.Title,
		Company:       job.Company,
		Salary:        nullable(job.Salary),
		Level:         job.Level,
		Format:        job.Format,
		URL:           job.URL,
		Description:   nullable(job.Description),
		Requirements:  encodeList(job.Requirements),
		Benefits:      encodeList(job.Benefits),
		Location:      nullable(job.Location),
		PublishedAt:   nullable(job.PublishedAt),
		ArchivedAt:    time.Now().UTC(),
		ArchiveReason: nullable(reason),
	}

	_, err := s.sess.
		InsertInto("archived_jobs").
		Columns(archiveColumns...).
		Record(&row).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to archive job",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return false
	}

	s.logger.Info("job archived",
		zap.String("job_id", job.ID),
		zap.String("company", job.Company),
	)

	return true
}

// List returns archived jobs ordered by archive time, most recent first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]models.ArchivedJob, error) {
	var rows []archivedJobRow

	_, err := s.sess.
		Select("*").
		From("archived_jobs").
		OrderDir("archived_at", false).
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		LoadContext(ctx, &rows)

	if err != nil {
		s.logger.Error("failed to list archived jobs",
			zap.Int("limit", limit),
			zap.Int("offset", offset),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list archived jobs: %w", err)
	}

	jobs := make([]models.ArchivedJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, s.rowToArchivedJob(row))
	}

	return jobs, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.ArchivedJob, error) {
	var row archivedJobRow

	err := s.sess.
		Select("*").
		From("archived_jobs").
		Where("id = ?", id).
		LoadOneContext(ctx, &row)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get archived job",
			zap.String("job_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get archived job: %w", err)
	}

	job := s.rowToArchivedJob(row)
	return &job, nil
}

// Delete removes one archive row. Returns true iff a row was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.sess.
		DeleteFrom("archived_jobs").
		Where("id = ?", id).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete archived job",
			zap.String("job_id", id),
			zap.Error(err),
		)
		return false, fmt.Errorf("delete archived job: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// ArchivedIDs returns the ids of every archived job, used to exclude them
// from the active listing.
func (s *Store) ArchivedIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string

	_, err := s.sess.
		Select("id").
		From("archived_jobs").
		LoadContext(ctx, &ids)

	if err != nil {
		s.logger.Error("failed to load archived ids", zap.Error(err))
		return nil, fmt.Errorf("load archived ids: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set, nil
}

// Statistics aggregates the archive: total rows, rows archived in the
// current calendar month (UTC), and the ten most archived companies. The
// month lower bound is computed here so the query stays portable across
// dialects.
func (s *Store) Statistics(ctx context.Context) (*models.ArchiveStatistics, error) {
	stats := &models.ArchiveStatistics{
		MostArchivedCompanies: []models.CompanyArchiveCount{},
	}

	err := s.sess.
		Select("COUNT(*)").
		From("archived_jobs").
		LoadOneContext(ctx, &stats.TotalArchived)

	if err != nil {
		s.logger.Error("failed to count archived jobs", zap.Error(err))
		return nil, fmt.Errorf("count archived jobs: %w", err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	err = s.sess.
		Select("COUNT(*)").
		From("archived_jobs").
		Where("archived_at >= ?", monthStart).
		LoadOneContext(ctx, &stats.ArchivedThisMonth)

	if err != nil {
		s.logger.Error("failed to count jobs archived this month", zap.Error(err))
		return nil, fmt.Errorf("count archived this month: %w", err)
	}

	var companies []models.CompanyArchiveCount

	_, err = s.sess.
		Select("company", "COUNT(*) AS count").
		From("archived_jobs").
		GroupBy("company").
		OrderDir("count", false).
		Limit(10).
		LoadContext(ctx, &companies)

	if err != nil {
		s.logger.Error("failed to aggregate archived companies", zap.Error(err))
		return nil, fmt.Errorf("aggregate archived companies: %w", err)
	}

	if companies != nil {
		stats.MostArchivedCompanies = companies
	}

	return stats, nil
}

func (s *Store) rowToArchivedJob(row archivedJobRow) models.ArchivedJob {
	return models.ArchivedJob{
		Job: models.Job{
			ID:           row.ID,
			Title:        row.Title,
			Company:      row.Company,
			Salary:       deref(row.Salary),
			Level:        row.Level,
			Format:       row.Format,
			URL:          row.URL,
			Description:  deref(row.Description),
			Requirements: s.decodeList(row.ID, row.Requirements),
			Benefits:     s.decodeList(row.ID, row.Benefits),
			Location:     deref(row.Location),
			PublishedAt:  deref(row.PublishedAt),
		},
		ArchivedAt:    row.ArchivedAt,
		ArchiveReason: deref(row.ArchiveReason),
	}
}

// decodeList turns stored JSON text back into a list. Decode failure yields
// an empty list, never an error.
func (s *Store) decodeList(jobID string, stored *string) []string {
	if stored == nil || *stored == "" {
		return nil
	}

	var items []string
	if err := json.Unmarshal([]byte(*stored), &items); err != nil {
		s.logger.Warn("malformed list field in archive row",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return nil
	}

	return items
}

func encodeList(items []string) *string {
	if len(items) == 0 {
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil
	}

	encoded := string(data)
	return &encoded
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
