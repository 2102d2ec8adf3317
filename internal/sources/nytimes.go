package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mkellner/newsdesk/internal/adapt"
	"github.com/mkellner/newsdesk/internal/models"
)

const nytimesBaseURL = "https://api.nytimes.com/svc"

// NYTimesFetcher queries the NYTimes article search endpoint. The endpoint
// has no page-size parameter; it returns a fixed page of ten docs per call.
type NYTimesFetcher struct {
	apiKey  string
	baseURL string // overridable in tests
	adapter *adapt.Adapter
	config  FetcherConfig
	client  *http.Client
}

type nytimesEnvelope struct {
	Status   string `json:"status"`
	Response struct {
		Docs []json.RawMessage `json:"docs"`
		Meta struct {
			Hits int `json:"hits"`
		} `json:"meta"`
	} `json:"response"`
}

func NewNYTimesFetcher(apiKey string, adapter *adapt.Adapter, config FetcherConfig) *NYTimesFetcher {
	return &NYTimesFetcher{
		apiKey:  apiKey,
		baseURL: nytimesBaseURL,
		adapter: adapter,
		config:  config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// SetBaseURL points the client at a different endpoint, such as a proxy.
func (f *NYTimesFetcher) SetBaseURL(url string) {
	if url != "" {
		f.baseURL = url
	}
}

func (f *NYTimesFetcher) Name() string {
	return models.SourceNYTimes.DisplayName()
}

func (f *NYTimesFetcher) Source() models.Source {
	return models.SourceNYTimes
}

func (f *NYTimesFetcher) SourceInfo() models.SourceInfo {
	return models.SourceInfo{
		ID:      models.SourceNYTimes,
		Name:    models.SourceNYTimes.DisplayName(),
		URL:     "https://www.nytimes.com",
		Enabled: true,
	}
}

func (f *NYTimesFetcher) Fetch(ctx context.Context, filters models.ArticleFilters) ([]models.Article, error) {
	params := nytimesParams(filters)
	params.Set("api-key", f.apiKey)

	requestURL := f.baseURL + "/search/v2/articlesearch.json?" + params.Encode()

	var envelope nytimesEnvelope
	if err := fetchJSON(ctx, f.client, requestURL, f.config.UserAgent, f.config.MaxRetries, &envelope); err != nil {
		return nil, fmt.Errorf("nytimes: %w", err)
	}

	articles, err := f.adapter.Many(envelope.Response.Docs, models.SourceNYTimes)
	if err != nil {
		return nil, fmt.Errorf("nytimes: %w", err)
	}
	return articles, nil
}

// nytimesParams translates filters for article search. Date bounds collapse
// to YYYYMMDD and categories become a section_name filter query.
func nytimesParams(filters models.ArticleFilters) url.Values {
	params := url.Values{}
	params.Set("sort", "newest")

	if filters.Query != "" {
		params.Set("q", filters.Query)
	}
	if filters.DateFrom != "" {
		params.Set("begin_date", strings.ReplaceAll(filters.DateFrom, "-", ""))
	}
	if filters.DateTo != "" {
		params.Set("end_date", strings.ReplaceAll(filters.DateTo, "-", ""))
	}
	if len(filters.Categories) > 0 {
		params.Set("fq", fmt.Sprintf(`section_name:(%s)`, quoteJoin(filters.Categories)))
	}

	return params
}

// quoteJoin renders ["a","b"] as `"a" OR "b"` for a Lucene filter query.
func quoteJoin(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, `"`+v+`"`)
	}
	return strings.Join(quoted, " OR ")
}

var _ Fetcher = (*NYTimesFetcher)(nil)
