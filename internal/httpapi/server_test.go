package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkellner/newsdesk/internal/aggregator"
	"github.com/mkellner/newsdesk/internal/logging"
	"github.com/mkellner/newsdesk/internal/metrics"
	"github.com/mkellner/newsdesk/internal/models"
	"github.com/mkellner/newsdesk/internal/prefs"
	"github.com/mkellner/newsdesk/internal/sources"
)

type stubFetcher struct {
	source   models.Source
	articles []models.Article
	calls    int
}

func (f *stubFetcher) Name() string          { return f.source.DisplayName() }
func (f *stubFetcher) Source() models.Source { return f.source }

func (f *stubFetcher) SourceInfo() models.SourceInfo {
	return models.SourceInfo{ID: f.source, Name: f.source.DisplayName(), Enabled: true}
}

func (f *stubFetcher) Fetch(ctx context.Context, filters models.ArticleFilters) ([]models.Article, error) {
	f.calls++
	return f.articles, nil
}

type memStore struct {
	prefs *models.UserPreferences
}

func (s *memStore) Load() models.UserPreferences {
	if s.prefs == nil {
		return prefs.Defaults()
	}
	return *s.prefs
}

func (s *memStore) Save(p models.UserPreferences) { s.prefs = &p }
func (s *memStore) Clear()                        { s.prefs = nil }

func article(id string, source models.Source, category, published string) models.Article {
	return models.Article{
		ID:          id,
		Title:       "Title " + id,
		Description: "Description " + id,
		URL:         "https://example.com/" + id,
		PublishedAt: published,
		Source:      source,
		Category:    category,
	}
}

func newTestServer(fetchers ...sources.Fetcher) (*Server, *memStore) {
	logger := logging.New(logging.LevelError)
	agg := aggregator.New(fetchers, nil, metrics.Noop{}, logger)
	store := &memStore{}
	return New(agg, store, nil, logger), store
}

func TestGetArticles(t *testing.T) {
	newsapi := &stubFetcher{source: models.SourceNewsAPI, articles: []models.Article{
		article("n1", models.SourceNewsAPI, "general", "2024-01-02T00:00:00Z"),
	}}
	guardian := &stubFetcher{source: models.SourceGuardian, articles: []models.Article{
		article("g1", models.SourceGuardian, "technology", "2024-01-03T00:00:00Z"),
	}}
	nytimes := &stubFetcher{source: models.SourceNYTimes, articles: []models.Article{
		article("t1", models.SourceNYTimes, "business", "2024-01-01T00:00:00Z"),
	}}
	srv, _ := newTestServer(newsapi, guardian, nytimes)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp models.AggregatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCount != 3 {
		t.Fatalf("TotalCount = %d, want 3", resp.TotalCount)
	}
	if resp.Articles[0].ID != "g1" || resp.Articles[2].ID != "t1" {
		t.Errorf("articles not sorted newest first: %q, %q, %q",
			resp.Articles[0].ID, resp.Articles[1].ID, resp.Articles[2].ID)
	}
}

func TestGetArticlesSourcesParam(t *testing.T) {
	newsapi := &stubFetcher{source: models.SourceNewsAPI, articles: []models.Article{
		article("n1", models.SourceNewsAPI, "general", "2024-01-02T00:00:00Z"),
	}}
	guardian := &stubFetcher{source: models.SourceGuardian}
	srv, _ := newTestServer(newsapi, guardian)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?sources=newsapi", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if guardian.calls != 0 {
		t.Errorf("guardian queried despite sources=newsapi")
	}
	if newsapi.calls != 1 {
		t.Errorf("newsapi calls = %d, want 1", newsapi.calls)
	}
}

func TestGetArticlesUnknownSource(t *testing.T) {
	srv, _ := newTestServer(&stubFetcher{source: models.SourceNewsAPI})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?sources=reuters", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetArticlesPagination(t *testing.T) {
	newsapi := &stubFetcher{source: models.SourceNewsAPI, articles: []models.Article{
		article("n1", models.SourceNewsAPI, "general", "2024-01-04T00:00:00Z"),
		article("n2", models.SourceNewsAPI, "general", "2024-01-03T00:00:00Z"),
		article("n3", models.SourceNewsAPI, "general", "2024-01-02T00:00:00Z"),
		article("n4", models.SourceNewsAPI, "general", "2024-01-01T00:00:00Z"),
	}}
	srv, _ := newTestServer(newsapi)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?limit=2&offset=1", nil))

	var resp models.AggregatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4 (pre-pagination)", resp.TotalCount)
	}
	if len(resp.Articles) != 2 {
		t.Fatalf("page size = %d, want 2", len(resp.Articles))
	}
	if resp.Articles[0].ID != "n2" || resp.Articles[1].ID != "n3" {
		t.Errorf("page = %q, %q, want n2, n3", resp.Articles[0].ID, resp.Articles[1].ID)
	}
}

func TestGetArticlesPreferredCategories(t *testing.T) {
	newsapi := &stubFetcher{source: models.SourceNewsAPI, articles: []models.Article{
		article("n1", models.SourceNewsAPI, "technology", "2024-01-02T00:00:00Z"),
		article("n2", models.SourceNewsAPI, "sports", "2024-01-01T00:00:00Z"),
	}}
	srv, store := newTestServer(newsapi)
	store.Save(models.UserPreferences{
		Sources:    []models.Source{models.SourceNewsAPI},
		Categories: []string{"technology"},
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	var resp models.AggregatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCount != 1 || resp.Articles[0].ID != "n1" {
		t.Errorf("preferred categories not applied: got %d articles", resp.TotalCount)
	}
}

func TestGetSources(t *testing.T) {
	srv, _ := newTestServer(
		&stubFetcher{source: models.SourceNewsAPI},
		&stubFetcher{source: models.SourceGuardian},
	)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Sources []models.SourceInfo `json:"sources"`
		Count   int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Sources) != 2 {
		t.Fatalf("count = %d, sources = %d, want 2", resp.Count, len(resp.Sources))
	}
}

func TestRefresh(t *testing.T) {
	newsapi := &stubFetcher{source: models.SourceNewsAPI}
	srv, _ := newTestServer(newsapi)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if newsapi.calls != 1 {
		t.Errorf("newsapi calls = %d, want 1", newsapi.calls)
	}
}

func TestRefreshMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(&stubFetcher{source: models.SourceNewsAPI})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	srv, _ := newTestServer(&stubFetcher{source: models.SourceNewsAPI})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/preferences", nil))
	var initial models.UserPreferences
	if err := json.Unmarshal(rec.Body.Bytes(), &initial); err != nil {
		t.Fatalf("decode defaults: %v", err)
	}
	if len(initial.Sources) != len(models.AllSources()) {
		t.Errorf("default sources = %d, want all %d", len(initial.Sources), len(models.AllSources()))
	}

	update := models.UserPreferences{
		Sources:    []models.Source{models.SourceGuardian},
		Categories: []string{"business"},
		Authors:    []string{"Jane Doe"},
	}
	body, _ := json.Marshal(update)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/preferences", nil))
	var saved models.UserPreferences
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved: %v", err)
	}
	if len(saved.Sources) != 1 || saved.Sources[0] != models.SourceGuardian {
		t.Errorf("saved sources = %v, want [guardian]", saved.Sources)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/preferences", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/preferences", nil))
	var reset models.UserPreferences
	if err := json.Unmarshal(rec.Body.Bytes(), &reset); err != nil {
		t.Fatalf("decode reset: %v", err)
	}
	if len(reset.Sources) != len(models.AllSources()) {
		t.Errorf("reset sources = %v, want all sources", reset.Sources)
	}
}

func TestPreferencesValidation(t *testing.T) {
	srv, store := newTestServer(&stubFetcher{source: models.SourceNewsAPI})

	body := []byte(`{"sources":["reuters"],"categories":[],"authors":[]}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if store.prefs != nil {
		t.Errorf("invalid preferences were persisted")
	}

	body = []byte(`{"sources":["newsapi"],"categories":["astrology"],"authors":[]}`)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(&stubFetcher{source: models.SourceNewsAPI})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(&stubFetcher{source: models.SourceNewsAPI})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/articles", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS origin header")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(&stubFetcher{source: models.SourceNewsAPI})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Errorf("no X-Request-ID generated")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want caller's value", got)
	}
}
