package server

import (
	"context"
	"time"

	"hirehi-monitor/internal/models"
	"hirehi-monitor/internal/server/middleware"
	"hirehi-monitor/internal/storage/redis"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// JobRepository is the slice of the repository the server needs.
type JobRepository interface {
	GetJobs(ctx context.Context, params models.SearchParams) []models.Job
	RefreshJobs(ctx context.Context, params models.SearchParams) ([]models.Job, *models.JobStatistics, error)
	Statistics() *models.JobStatistics
	LastUpdate() (time.Time, bool)
}

// ArchiveStore is the slice of the postgres store the server needs. It stays
// unset when no database is configured; archive endpoints then answer 503.
type ArchiveStore interface {
	Archive(ctx context.Context, job models.Job, reason string) bool
	List(ctx context.Context, limit, offset int) ([]models.ArchivedJob, error)
	Delete(ctx context.Context, id string) (bool, error)
	ArchivedIDs(ctx context.Context) (map[string]struct{}, error)
	Statistics(ctx context.Context) (*models.ArchiveStatistics, error)
	Ping(ctx context.Context) error
}

type Server struct {
	app     *fiber.App
	repo    JobRepository
	archive ArchiveStore
	params  models.SearchParams
	logger  *zap.Logger
}

// New wires the fiber app. archive may be nil; rateLimiter may be nil, which
// disables the per-IP limiter.
func New(repo JobRepository, archive ArchiveStore, params models.SearchParams, rateLimiter *redis.Cache, maxRequestsPerMinute int, logger *zap.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           30 * time.Second,
		}),
		repo:    repo,
		archive: archive,
		params:  params,
		logger:  logger,
	}

	if rateLimiter != nil {
		s.app.Use("/api", middleware.RateLimit(rateLimiter, maxRequestsPerMinute, logger))
	}

	s.app.Get("/", s.handleIndex)
	s.app.Get("/api/jobs", s.handleJobs)
	s.app.Post("/api/refresh", s.handleRefresh)
	s.app.Get("/api/status", s.handleStatus)
	s.app.Post("/api/archive", s.handleArchive)
	s.app.Get("/api/archive", s.handleArchiveList)
	s.app.Get("/api/archive/statistics", s.handleArchiveStatistics)
	s.app.Delete("/api/archive/:id", s.handleArchiveDelete)

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}
