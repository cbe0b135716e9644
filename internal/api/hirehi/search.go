package hirehi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"hirehi-monitor/internal/models"

	"go.uber.org/zap"
)

const searchPath = "/api/search/jobs"

// searchPage requests a single page of search results.
func (c *Client) searchPage(ctx context.Context, params models.SearchParams, page, limit int) (*searchResponse, error) {
	queryParams := url.Values{}
	queryParams.Set("page", strconv.Itoa(page))
	queryParams.Set("limit", strconv.Itoa(limit))
	queryParams.Set("sort", "date")

	if params.Category != "" {
		queryParams.Set("category", params.Category)
	}

	if params.Format != "" {
		queryParams.Set("format", params.Format)
	}

	// level is a repeatable parameter
	for _, level := range params.Levels {
		queryParams.Add("level", level)
	}

	if params.Subcategory != "" {
		queryParams.Set("subcategory", params.Subcategory)
	}

	data, err := c.get(ctx, searchPath, queryParams)
	if err != nil {
		c.logger.Error("failed to search jobs",
			zap.Int("page", page),
			zap.String("category", params.Category),
			zap.Error(err),
		)
		return nil, fmt.Errorf("search jobs page %d: %w", page, err)
	}

	var response searchResponse
	if err := c.parseResponse(data, &response); err != nil {
		c.logger.Error("failed to parse search response",
			zap.Int("page", page),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("jobs page fetched",
		zap.Int("page", page),
		zap.Int("returned", len(response.Jobs)),
		zap.Bool("has_more", response.HasMore),
	)

	return &response, nil
}
