package hirehi

import (
	"context"
	"fmt"
	"time"

	"hirehi-monitor/internal/filter"
	"hirehi-monitor/internal/models"

	"go.uber.org/zap"
)

// FetchResult carries the filtered jobs of one full scrape together with the
// pre-filter total, so statistics are computed once at the source.
type FetchResult struct {
	Jobs       []models.Job
	TotalFound int
}

// Scraper pages through the search API, parses each job and applies the
// keyword filter. Filtering happens here and nowhere else.
type Scraper struct {
	client    *Client
	logger    *zap.Logger
	pageLimit int
	maxPages  int
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewScraper(client *Client, pageLimit, maxPages int, delay time.Duration, logger *zap.Logger) *Scraper {
	return &Scraper{
		client:    client,
		logger:    logger,
		pageLimit: pageLimit,
		maxPages:  maxPages,
		delay:     delay,
		sleep:     sleepCtx,
	}
}

// FetchAll collects every available page. It returns an error only when the
// very first page fails and nothing was gathered; a failure on a later page
// ends pagination and returns the partial accumulation.
func (s *Scraper) FetchAll(ctx context.Context, params models.SearchParams) (*FetchResult, error) {
	result := &FetchResult{}
	seenURLs := make(map[string]struct{})

	for page := 1; page <= s.maxPages; page++ {
		response, err := s.client.searchPage(ctx, params, page, s.pageLimit)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetch first page: %w", err)
			}
			s.logger.Warn("pagination aborted, keeping partial results",
				zap.Int("page", page),
				zap.Int("collected", len(result.Jobs)),
				zap.Error(err),
			)
			return result, nil
		}

		if len(response.Jobs) == 0 {
			s.logger.Debug("empty page, end of results", zap.Int("page", page))
			return result, nil
		}

		result.TotalFound += len(response.Jobs)

		for i, payload := range response.Jobs {
			job, err := s.parseJob(payload)
			if err != nil {
				s.logger.Warn("skipping malformed job",
					zap.Int("page", page),
					zap.Int("index", i),
					zap.Error(err),
				)
				continue
			}

			// the site occasionally repeats postings across pages
			if _, seen := seenURLs[job.URL]; seen {
				continue
			}

			if !filter.Matches(filter.JobFields(job.Title, job.Company, job.Description, job.Requirements), params.Keywords) {
				continue
			}

			seenURLs[job.URL] = struct{}{}
			result.Jobs = append(result.Jobs, job)
		}

		if !response.HasMore {
			s.logger.Debug("last page reached", zap.Int("page", page))
			break
		}

		// courtesy pause between page requests
		if err := s.sleep(ctx, s.delay); err != nil {
			s.logger.Warn("pagination cancelled",
				zap.Int("page", page),
				zap.Error(err),
			)
			return result, nil
		}
	}

	s.logger.Info("scrape finished",
		zap.Int("total_found", result.TotalFound),
		zap.Int("matched", len(result.Jobs)),
		zap.Strings("keywords", params.Keywords),
	)

	return result, nil
}

// parseJob converts a wire payload into a Job. Only id and title are
// required; optional fields fall back to the documented defaults.
func (s *Scraper) parseJob(payload jobPayload) (models.Job, error) {
	if payload.ID == "" {
		return models.Job{}, fmt.Errorf("job has no id")
	}
	if payload.Title == "" {
		return models.Job{}, fmt.Errorf("job %s has no title", payload.ID)
	}

	job := models.Job{
		ID:           payload.ID,
		Title:        payload.Title,
		Company:      payload.Company.Name,
		Salary:       payload.Salary,
		Level:        payload.Level,
		Format:       payload.Format,
		URL:          payload.URL,
		Description:  payload.DescriptionDetails,
		Requirements: payload.Requirements,
		Benefits:     payload.Benefits,
		Location:     payload.Location,
		PublishedAt:  payload.CreatedAt,
	}

	if job.Company == "" {
		job.Company = models.NotSpecified
	}
	if job.Level == "" {
		job.Level = models.NotSpecified
	}
	if job.Format == "" {
		job.Format = models.NotSpecified
	}
	if job.Description == "" {
		job.Description = payload.Description
	}
	if job.URL == "" {
		job.URL = fmt.Sprintf("%s/jobs/%s", s.client.BaseURL(), job.ID)
	}

	return job, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
