package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mkellner/newsdesk/internal/adapt"
	"github.com/mkellner/newsdesk/internal/models"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIFetcher queries the NewsAPI headlines and everything endpoints. A
// free-text query routes to /everything; without one the provider's curated
// /top-headlines listing is used.
type NewsAPIFetcher struct {
	apiKey  string
	baseURL string // overridable in tests
	adapter *adapt.Adapter
	config  FetcherConfig
	client  *http.Client
}

type newsAPIEnvelope struct {
	Status       string            `json:"status"`
	TotalResults int               `json:"totalResults"`
	Articles     []json.RawMessage `json:"articles"`
}

func NewNewsAPIFetcher(apiKey string, adapter *adapt.Adapter, config FetcherConfig) *NewsAPIFetcher {
	return &NewsAPIFetcher{
		apiKey:  apiKey,
		baseURL: newsAPIBaseURL,
		adapter: adapter,
		config:  config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// SetBaseURL points the client at a different endpoint, such as a proxy.
func (f *NewsAPIFetcher) SetBaseURL(url string) {
	if url != "" {
		f.baseURL = url
	}
}

func (f *NewsAPIFetcher) Name() string {
	return models.SourceNewsAPI.DisplayName()
}

func (f *NewsAPIFetcher) Source() models.Source {
	return models.SourceNewsAPI
}

func (f *NewsAPIFetcher) SourceInfo() models.SourceInfo {
	return models.SourceInfo{
		ID:      models.SourceNewsAPI,
		Name:    models.SourceNewsAPI.DisplayName(),
		URL:     "https://newsapi.org",
		Enabled: true,
	}
}

func (f *NewsAPIFetcher) Fetch(ctx context.Context, filters models.ArticleFilters) ([]models.Article, error) {
	endpoint := "/top-headlines"
	params := newsAPIHeadlinesParams(filters, f.config.PageSize)
	if filters.Query != "" {
		endpoint = "/everything"
		params = newsAPIEverythingParams(filters, f.config.PageSize)
	}
	params.Set("apiKey", f.apiKey)

	requestURL := f.baseURL + endpoint + "?" + params.Encode()

	var envelope newsAPIEnvelope
	if err := fetchJSON(ctx, f.client, requestURL, f.config.UserAgent, f.config.MaxRetries, &envelope); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}

	articles, err := f.adapter.Many(envelope.Articles, models.SourceNewsAPI)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	return articles, nil
}

// newsAPIHeadlinesParams translates filters for /top-headlines. The endpoint
// accepts a single category and no date bounds; everything else is dropped.
func newsAPIHeadlinesParams(filters models.ArticleFilters, pageSize int) url.Values {
	params := url.Values{}
	params.Set("country", "us")
	params.Set("pageSize", strconv.Itoa(pageSize))

	if filters.Query != "" {
		params.Set("q", filters.Query)
	}
	if len(filters.Categories) > 0 {
		params.Set("category", filters.Categories[0])
	}

	return params
}

// newsAPIEverythingParams translates filters for /everything, which has no
// category vocabulary but accepts date bounds.
func newsAPIEverythingParams(filters models.ArticleFilters, pageSize int) url.Values {
	params := url.Values{}
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("sortBy", "publishedAt")

	if filters.Query != "" {
		params.Set("q", filters.Query)
	}
	if filters.DateFrom != "" {
		params.Set("from", filters.DateFrom)
	}
	if filters.DateTo != "" {
		params.Set("to", filters.DateTo)
	}

	return params
}

var _ Fetcher = (*NewsAPIFetcher)(nil)
