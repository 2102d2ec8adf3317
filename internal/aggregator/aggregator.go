// Package aggregator fans out to the enabled news providers, normalizes and
// merges their results, and filters the merged list. A provider failure never
// fails the aggregation: the failing source contributes nothing and is
// reported next to the merged list.
package aggregator

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mkellner/newsdesk/internal/cache"
	"github.com/mkellner/newsdesk/internal/logging"
	"github.com/mkellner/newsdesk/internal/metrics"
	"github.com/mkellner/newsdesk/internal/models"
	"github.com/mkellner/newsdesk/internal/sources"
)

type Aggregator struct {
	fetchers map[models.Source]sources.Fetcher
	order    []models.Source
	cache    cache.Cache
	metrics  metrics.Recorder
	logger   *logging.Logger
}

func New(fetchers []sources.Fetcher, c cache.Cache, rec metrics.Recorder, logger *logging.Logger) *Aggregator {
	byTag := make(map[models.Source]sources.Fetcher, len(fetchers))
	order := make([]models.Source, 0, len(fetchers))
	for _, f := range fetchers {
		byTag[f.Source()] = f
		order = append(order, f.Source())
	}
	return &Aggregator{
		fetchers: byTag,
		order:    order,
		cache:    c,
		metrics:  rec,
		logger:   logger,
	}
}

// FetchArticles queries the enabled providers in parallel and returns the
// merged result sorted by publish time descending. An empty enabled list
// means all registered providers. Identical stories reported by two providers
// stay two entries; no deduplication happens across sources.
func (a *Aggregator) FetchArticles(ctx context.Context, enabled []models.Source, filters models.ArticleFilters) models.AggregatedResponse {
	if len(enabled) == 0 {
		enabled = a.order
	}

	key := queryKey(enabled, filters)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			a.metrics.RecordCacheHit()
			return models.AggregatedResponse{
				Articles:    cached,
				TotalCount:  len(cached),
				FetchedAt:   time.Now(),
				SourceCount: len(enabled),
			}
		}
	}
	a.metrics.RecordCacheMiss()

	var wg sync.WaitGroup
	results := make(chan sources.FetchResult, len(enabled))

	queried := 0
	var sourceErrors []models.SourceError
	for _, source := range enabled {
		fetcher, ok := a.fetchers[source]
		if !ok {
			sourceErrors = append(sourceErrors, models.SourceError{
				Source:  source,
				Message: (&models.UnknownSourceError{Source: source}).Error(),
			})
			continue
		}

		queried++
		wg.Add(1)
		go func(f sources.Fetcher) {
			defer wg.Done()

			start := time.Now()
			articles, err := f.Fetch(ctx, filters)
			a.metrics.RecordFetchLatency(string(f.Source()), time.Since(start))

			results <- sources.FetchResult{
				Articles: articles,
				Source:   f.Source(),
				Err:      err,
			}
		}(fetcher)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	merged := make([]models.Article, 0)
	for result := range results {
		if result.Err != nil {
			a.metrics.RecordFetchFailure(string(result.Source))
			a.logger.Warn("Failed to fetch from source",
				logging.WithField("source", string(result.Source)),
				logging.WithField("error", result.Err.Error()))
			sourceErrors = append(sourceErrors, models.SourceError{
				Source:  result.Source,
				Message: result.Err.Error(),
			})
			continue
		}

		a.metrics.RecordFetchSuccess(string(result.Source), len(result.Articles))
		a.logger.Info("Fetched articles from source",
			logging.WithField("source", string(result.Source)),
			logging.WithField("count", len(result.Articles)))

		merged = append(merged, result.Articles...)
	}

	sortByPublished(merged)

	if a.cache != nil && len(sourceErrors) == 0 {
		a.cache.Set(key, merged)
	}

	// SourceErrors come out of a channel join; order them for stable output.
	sort.Slice(sourceErrors, func(i, j int) bool {
		return sourceErrors[i].Source < sourceErrors[j].Source
	})

	return models.AggregatedResponse{
		Articles:     merged,
		TotalCount:   len(merged),
		FetchedAt:    time.Now(),
		SourceCount:  queried,
		SourceErrors: sourceErrors,
	}
}

// Refresh drops all cached results and fetches the enabled sources fresh.
func (a *Aggregator) Refresh(ctx context.Context, enabled []models.Source) models.AggregatedResponse {
	if a.cache != nil {
		a.cache.Clear()
	}
	return a.FetchArticles(ctx, enabled, models.ArticleFilters{})
}

// GetSources lists the registered providers.
func (a *Aggregator) GetSources() []models.SourceInfo {
	infos := make([]models.SourceInfo, 0, len(a.order))
	for _, source := range a.order {
		infos = append(infos, a.fetchers[source].SourceInfo())
	}
	return infos
}

// queryKey derives a stable cache key from the enabled source set and the
// filter object.
func queryKey(enabled []models.Source, filters models.ArticleFilters) string {
	tags := make([]string, 0, len(enabled))
	for _, s := range enabled {
		tags = append(tags, string(s))
	}
	sort.Strings(tags)

	payload, _ := json.Marshal(struct {
		Sources []string              `json:"sources"`
		Filters models.ArticleFilters `json:"filters"`
	}{Sources: tags, Filters: filters})

	sum := sha256.Sum256(payload)
	return fmt.Sprintf("articles:%x", sum[:8])
}

// publishedLayouts are tried in order when parsing provider timestamps.
// RFC3339 covers NewsAPI and Guardian; NYTimes uses a +0000 style offset.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

func parsePublished(value string) (time.Time, bool) {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortByPublished orders articles newest first. Articles whose timestamp fails
// every known layout sort after all parseable ones, keeping their relative
// order.
func sortByPublished(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, oki := parsePublished(articles[i].PublishedAt)
		tj, okj := parsePublished(articles[j].PublishedAt)
		switch {
		case oki && okj:
			return ti.After(tj)
		case oki:
			return true
		default:
			return false
		}
	})
}
