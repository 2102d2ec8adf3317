// Package sources holds one HTTP client per news provider. Each client
// translates the unified filter object into its provider's query-parameter
// vocabulary, fetches a single page of raw records, and hands them to the
// adapter layer. Filter fields a provider cannot express are silently
// dropped.
package sources

import (
	"context"
	"time"

	"github.com/mkellner/newsdesk/internal/models"
)

// Fetcher abstracts one news provider.
type Fetcher interface {
	Name() string
	Source() models.Source
	SourceInfo() models.SourceInfo
	Fetch(ctx context.Context, filters models.ArticleFilters) ([]models.Article, error)
}

// FetchResult carries one provider's outcome across the aggregation join.
type FetchResult struct {
	Articles []models.Article
	Source   models.Source
	Err      error
}

// FetcherConfig holds settings shared by all provider clients.
type FetcherConfig struct {
	Timeout    time.Duration
	PageSize   int
	MaxRetries int
	UserAgent  string
}

// DefaultConfig returns the production fetcher settings: each provider
// contributes one fixed page of 20 records, with two retries on transient
// failures.
func DefaultConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:    15 * time.Second,
		PageSize:   20,
		MaxRetries: 2,
		UserAgent:  "Newsdesk/1.0",
	}
}
