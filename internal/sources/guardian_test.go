package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkellner/newsdesk/internal/models"
)

func TestGuardianParams(t *testing.T) {
	params := guardianParams(models.ArticleFilters{
		Query:      "climate",
		Categories: []string{"science", "business"},
		DateFrom:   "2024-01-01",
		DateTo:     "2024-01-31",
		Author:     "smith", // no author vocabulary, dropped
	}, 20)

	if params.Get("q") != "climate" {
		t.Errorf("q = %q", params.Get("q"))
	}
	if params.Get("section") != "science|business" {
		t.Errorf("section = %q, want pipe-joined categories", params.Get("section"))
	}
	if params.Get("from-date") != "2024-01-01" || params.Get("to-date") != "2024-01-31" {
		t.Errorf("date bounds = %q..%q", params.Get("from-date"), params.Get("to-date"))
	}
	if params.Get("order-by") != "newest" {
		t.Errorf("order-by = %q", params.Get("order-by"))
	}
	if params.Get("show-fields") != guardianShowFields {
		t.Errorf("show-fields = %q", params.Get("show-fields"))
	}
	if params.Get("page-size") != "20" {
		t.Errorf("page-size = %q", params.Get("page-size"))
	}
}

func TestGuardianFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if r.URL.Query().Get("api-key") != "test-key" {
			t.Errorf("api-key = %q", r.URL.Query().Get("api-key"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"response": {
				"status": "ok",
				"total": 1,
				"results": [
					{
						"id": "science/2024/jan/15/climate-deal",
						"sectionId": "science",
						"webPublicationDate": "2024-01-15T10:00:00Z",
						"webTitle": "Climate deal reached",
						"webUrl": "https://www.theguardian.com/science/climate-deal",
						"fields": {"trailText": "A <b>landmark</b> agreement"}
					}
				]
			}
		}`))
	}))
	defer server.Close()

	fetcher := NewGuardianFetcher("test-key", testAdapter(), DefaultConfig())
	fetcher.baseURL = server.URL

	articles, err := fetcher.Fetch(context.Background(), models.ArticleFilters{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}

	article := articles[0]
	if article.ID != "science/2024/jan/15/climate-deal" {
		t.Errorf("ID = %q", article.ID)
	}
	if article.Source != models.SourceGuardian {
		t.Errorf("Source = %q", article.Source)
	}
	if article.Category != "science" {
		t.Errorf("Category = %q", article.Category)
	}
	if article.Description != "A landmark agreement" {
		t.Errorf("Description = %q, markup should be stripped", article.Description)
	}
}

func TestGuardianFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := NewGuardianFetcher("bad-key", testAdapter(), DefaultConfig())
	fetcher.baseURL = server.URL

	if _, err := fetcher.Fetch(context.Background(), models.ArticleFilters{}); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
