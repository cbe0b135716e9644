package server

import (
	"context"
	"strconv"
	"time"

	"hirehi-monitor/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type archiveRequest struct {
	JobID  string `json:"jobId"`
	Reason string `json:"reason,omitempty"`
}

type archiveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	jobs := s.activeJobs(c)

	html, err := renderJobsPage(jobs, s.repo.Statistics())
	if err != nil {
		s.logger.Error("failed to render jobs page", zap.Error(err))
		// degrade to an empty listing, never an error page
		html, _ = renderJobsPage(nil, nil)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

func (s *Server) handleJobs(c *fiber.Ctx) error {
	jobs := s.activeJobs(c)
	if jobs == nil {
		jobs = []models.Job{}
	}
	return c.JSON(jobs)
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	_, stats, err := s.repo.RefreshJobs(c.Context(), s.params)
	if err != nil {
		s.logger.Error("manual refresh failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "refresh failed, serving previous data",
		})
	}
	return c.JSON(stats)
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":           "ok",
		"jobs":             len(s.repo.GetJobs(c.Context(), s.params)),
		"archiveAvailable": s.archiveAvailable(c.Context()),
	}

	if last, ok := s.repo.LastUpdate(); ok {
		status["lastUpdated"] = last.Format(time.RFC3339)
	}

	if stats := s.repo.Statistics(); stats != nil {
		status["statistics"] = stats
	}

	return c.JSON(status)
}

func (s *Server) handleArchive(c *fiber.Ctx) error {
	if s.archive == nil {
		return archiveUnavailable(c)
	}

	var req archiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if req.JobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "jobId is required"})
	}

	var job *models.Job
	for _, j := range s.repo.GetJobs(c.Context(), s.params) {
		if j.ID == req.JobID {
			found := j
			job = &found
			break
		}
	}
	if job == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}

	if !s.archive.Archive(c.Context(), *job, req.Reason) {
		return c.Status(fiber.StatusConflict).JSON(archiveResponse{
			Success: false,
			Message: "job is already archived or could not be saved",
		})
	}

	return c.JSON(archiveResponse{Success: true, Message: "job archived"})
}

func (s *Server) handleArchiveList(c *fiber.Ctx) error {
	if s.archive == nil {
		return archiveUnavailable(c)
	}

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	jobs, err := s.archive.List(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list archived jobs"})
	}
	if jobs == nil {
		jobs = []models.ArchivedJob{}
	}

	return c.JSON(jobs)
}

func (s *Server) handleArchiveStatistics(c *fiber.Ctx) error {
	if s.archive == nil {
		return archiveUnavailable(c)
	}

	stats, err := s.archive.Statistics(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute archive statistics"})
	}

	return c.JSON(stats)
}

func (s *Server) handleArchiveDelete(c *fiber.Ctx) error {
	if s.archive == nil {
		return archiveUnavailable(c)
	}

	deleted, err := s.archive.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete archived job"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(archiveResponse{
			Success: false,
			Message: "archived job not found",
		})
	}

	return c.JSON(archiveResponse{Success: true, Message: "archived job deleted"})
}

// archiveAvailable reports whether the archive store is configured and its
// database is still reachable.
func (s *Server) archiveAvailable(ctx context.Context) bool {
	if s.archive == nil {
		return false
	}
	if err := s.archive.Ping(ctx); err != nil {
		s.logger.Warn("archive database unreachable", zap.Error(err))
		return false
	}
	return true
}

// activeJobs returns the current listing with archived jobs excluded when
// the archive store is available. Archive lookup failures degrade to the
// unfiltered list.
func (s *Server) activeJobs(c *fiber.Ctx) []models.Job {
	jobs := s.repo.GetJobs(c.Context(), s.params)

	if s.archive == nil || len(jobs) == 0 {
		return jobs
	}

	archived, err := s.archive.ArchivedIDs(c.Context())
	if err != nil {
		s.logger.Warn("failed to load archived ids, listing unfiltered", zap.Error(err))
		return jobs
	}

	active := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if _, ok := archived[job.ID]; !ok {
			active = append(active, job)
		}
	}

	return active
}

func archiveUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "archive database is not configured",
	})
}

func queryInt(c *fiber.Ctx, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
