package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mkellner/newsdesk/internal/adapt"
	"github.com/mkellner/newsdesk/internal/models"
)

const (
	guardianBaseURL = "https://content.guardianapis.com"

	// guardianShowFields requests the optional blocks the adapter's fallback
	// chains read from.
	guardianShowFields = "headline,trailText,thumbnail,bodyText,byline"
)

// GuardianFetcher queries the Guardian content search endpoint.
type GuardianFetcher struct {
	apiKey  string
	baseURL string // overridable in tests
	adapter *adapt.Adapter
	config  FetcherConfig
	client  *http.Client
}

type guardianEnvelope struct {
	Response struct {
		Status   string            `json:"status"`
		Total    int               `json:"total"`
		PageSize int               `json:"pageSize"`
		Results  []json.RawMessage `json:"results"`
	} `json:"response"`
}

func NewGuardianFetcher(apiKey string, adapter *adapt.Adapter, config FetcherConfig) *GuardianFetcher {
	return &GuardianFetcher{
		apiKey:  apiKey,
		baseURL: guardianBaseURL,
		adapter: adapter,
		config:  config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// SetBaseURL points the client at a different endpoint, such as a proxy.
func (f *GuardianFetcher) SetBaseURL(url string) {
	if url != "" {
		f.baseURL = url
	}
}

func (f *GuardianFetcher) Name() string {
	return models.SourceGuardian.DisplayName()
}

func (f *GuardianFetcher) Source() models.Source {
	return models.SourceGuardian
}

func (f *GuardianFetcher) SourceInfo() models.SourceInfo {
	return models.SourceInfo{
		ID:      models.SourceGuardian,
		Name:    models.SourceGuardian.DisplayName(),
		URL:     "https://www.theguardian.com",
		Enabled: true,
	}
}

func (f *GuardianFetcher) Fetch(ctx context.Context, filters models.ArticleFilters) ([]models.Article, error) {
	params := guardianParams(filters, f.config.PageSize)
	params.Set("api-key", f.apiKey)

	requestURL := f.baseURL + "/search?" + params.Encode()

	var envelope guardianEnvelope
	if err := fetchJSON(ctx, f.client, requestURL, f.config.UserAgent, f.config.MaxRetries, &envelope); err != nil {
		return nil, fmt.Errorf("guardian: %w", err)
	}

	articles, err := f.adapter.Many(envelope.Response.Results, models.SourceGuardian)
	if err != nil {
		return nil, fmt.Errorf("guardian: %w", err)
	}
	return articles, nil
}

// guardianParams translates filters for /search. The endpoint accepts every
// filter field except author: multiple sections join with "|".
func guardianParams(filters models.ArticleFilters, pageSize int) url.Values {
	params := url.Values{}
	params.Set("page-size", strconv.Itoa(pageSize))
	params.Set("order-by", "newest")
	params.Set("show-fields", guardianShowFields)

	if filters.Query != "" {
		params.Set("q", filters.Query)
	}
	if len(filters.Categories) > 0 {
		params.Set("section", strings.Join(filters.Categories, "|"))
	}
	if filters.DateFrom != "" {
		params.Set("from-date", filters.DateFrom)
	}
	if filters.DateTo != "" {
		params.Set("to-date", filters.DateTo)
	}

	return params
}

var _ Fetcher = (*GuardianFetcher)(nil)
