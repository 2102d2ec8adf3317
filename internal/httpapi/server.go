// Package httpapi exposes the aggregation core over HTTP. It owns no domain
// logic: every handler is a thin translation between query parameters and the
// aggregator, filter engine, and preference store contracts.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkellner/newsdesk/internal/aggregator"
	"github.com/mkellner/newsdesk/internal/logging"
	"github.com/mkellner/newsdesk/internal/models"
	"github.com/mkellner/newsdesk/internal/prefs"
)

type Server struct {
	agg            *aggregator.Aggregator
	store          prefs.Store
	metricsHandler http.Handler
	logger         *logging.Logger
	server         *http.Server
}

func New(agg *aggregator.Aggregator, store prefs.Store, metricsHandler http.Handler, logger *logging.Logger) *Server {
	return &Server{
		agg:            agg,
		store:          store,
		metricsHandler: metricsHandler,
		logger:         logger,
	}
}

// Handler builds the route table. Exposed separately from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/articles", s.middleware(s.handleGetArticles))
	mux.HandleFunc("/api/sources", s.middleware(s.handleGetSources))
	mux.HandleFunc("/api/refresh", s.middleware(s.handleRefresh))
	mux.HandleFunc("/api/preferences", s.middleware(s.handlePreferences))

	mux.HandleFunc("/health", s.handleHealth)
	if s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}

	return mux
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) middleware(next http.HandlerFunc) http.HandlerFunc {
	return s.corsMiddleware(s.requestIDMiddleware(next))
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next(w, r)

		s.logger.Debug("Request handled",
			logging.WithField("request_id", requestID),
			logging.WithField("method", r.Method),
			logging.WithField("path", r.URL.Path),
			logging.WithField("elapsed", time.Since(start).String()))
	}
}

func (s *Server) handleGetArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filters, err := parseFilters(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	preferences := s.store.Load()
	enabled := preferences.Sources
	if len(filters.Sources) > 0 {
		enabled = filters.Sources
	}

	resp := s.agg.FetchArticles(r.Context(), enabled, filters)

	// Preference narrowing applies before the ad hoc filters, matching the
	// order a client session stacks them in.
	articles := aggregator.ByPreferredCategories(resp.Articles, preferences.Categories)
	articles = aggregator.FilterArticles(articles, filters)

	total := len(articles)
	articles = slicePage(articles, r)

	s.writeJSON(w, http.StatusOK, models.AggregatedResponse{
		Articles:     articles,
		TotalCount:   total,
		FetchedAt:    resp.FetchedAt,
		SourceCount:  resp.SourceCount,
		SourceErrors: resp.SourceErrors,
	})
}

func (s *Server) handleGetSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sources := s.agg.GetSources()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": sources,
		"count":   len(sources),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	preferences := s.store.Load()
	resp := s.agg.Refresh(ctx, preferences.Sources)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"articles":     resp.TotalCount,
		"sourceErrors": resp.SourceErrors,
	})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.store.Load())

	case http.MethodPut:
		var preferences models.UserPreferences
		if err := json.NewDecoder(r.Body).Decode(&preferences); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preferences payload"})
			return
		}
		if err := validatePreferences(preferences); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.store.Save(preferences)
		s.writeJSON(w, http.StatusOK, preferences)

	case http.MethodDelete:
		s.store.Clear()
		s.writeJSON(w, http.StatusOK, prefs.Defaults())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseFilters reads the filter vocabulary from query parameters. Unknown
// source or category values are client errors, not silently ignored.
func parseFilters(r *http.Request) (models.ArticleFilters, error) {
	query := r.URL.Query()

	filters := models.ArticleFilters{
		Query:    query.Get("q"),
		Author:   query.Get("author"),
		DateFrom: query.Get("dateFrom"),
		DateTo:   query.Get("dateTo"),
	}

	if raw := query.Get("sources"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			source := models.Source(strings.TrimSpace(tag))
			if !source.IsValid() {
				return models.ArticleFilters{}, fmt.Errorf("unknown source: %s", source)
			}
			filters.Sources = append(filters.Sources, source)
		}
	}

	if raw := query.Get("categories"); raw != "" {
		for _, category := range strings.Split(raw, ",") {
			category = strings.TrimSpace(category)
			if !models.IsKnownCategory(category) {
				return models.ArticleFilters{}, fmt.Errorf("unknown category: %s", category)
			}
			filters.Categories = append(filters.Categories, category)
		}
	}

	return filters, nil
}

func validatePreferences(preferences models.UserPreferences) error {
	for _, source := range preferences.Sources {
		if !source.IsValid() {
			return fmt.Errorf("unknown source: %s", source)
		}
	}
	for _, category := range preferences.Categories {
		if !models.IsKnownCategory(category) {
			return fmt.Errorf("unknown category: %s", category)
		}
	}
	return nil
}

func slicePage(articles []models.Article, r *http.Request) []models.Article {
	query := r.URL.Query()

	offset := 0
	if o := query.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	limit := 0
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if offset >= len(articles) {
		return []models.Article{}
	}
	articles = articles[offset:]
	if limit > 0 && limit < len(articles) {
		articles = articles[:limit]
	}
	return articles
}
