package models

import "time"

// Source identifies one of the supported news providers. The set is closed:
// the adapter router rejects any other value.
type Source string

const (
	SourceNewsAPI  Source = "newsapi"
	SourceGuardian Source = "guardian"
	SourceNYTimes  Source = "nytimes"
)

// AllSources lists every supported provider in a stable order.
func AllSources() []Source {
	return []Source{SourceNewsAPI, SourceGuardian, SourceNYTimes}
}

// IsValid reports whether s names a supported provider.
func (s Source) IsValid() bool {
	switch s {
	case SourceNewsAPI, SourceGuardian, SourceNYTimes:
		return true
	}
	return false
}

// DisplayName returns the human-readable provider name.
func (s Source) DisplayName() string {
	switch s {
	case SourceNewsAPI:
		return "NewsAPI"
	case SourceGuardian:
		return "The Guardian"
	case SourceNYTimes:
		return "The New York Times"
	}
	return string(s)
}

// Categories is the closed set of categories a user may filter by. Provider
// sections outside this set still pass through on articles; the set only
// constrains filter and preference values.
var Categories = []string{
	"business",
	"entertainment",
	"general",
	"health",
	"science",
	"sports",
	"technology",
}

// IsKnownCategory reports whether c belongs to the closed category set.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Article is the unified shape every provider record is normalized into.
// Description and Content are always present (possibly empty); only ImageUrl
// and Author may be null. PublishedAt carries the provider's timestamp
// verbatim, not reformatted. Instances are never mutated after construction.
type Article struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	URL         string  `json:"url"`
	ImageURL    *string `json:"imageUrl"`
	PublishedAt string  `json:"publishedAt"`
	Author      *string `json:"author"`
	Source      Source  `json:"source"`
	Category    string  `json:"category"`
}

// ArticleFilters is a query object. Every field is optional; present fields
// combine with logical AND.
type ArticleFilters struct {
	Query      string   `json:"query,omitempty"`
	Sources    []Source `json:"sources,omitempty"`
	Categories []string `json:"categories,omitempty"`
	DateFrom   string   `json:"dateFrom,omitempty"` // ISO date, inclusive
	DateTo     string   `json:"dateTo,omitempty"`   // ISO date, inclusive
	Author     string   `json:"author,omitempty"`
}

// IsZero reports whether no filter field is set.
func (f ArticleFilters) IsZero() bool {
	return f.Query == "" && len(f.Sources) == 0 && len(f.Categories) == 0 &&
		f.DateFrom == "" && f.DateTo == "" && f.Author == ""
}

// UserPreferences is the persisted user-preference record. Authors is carried
// for storage round-trip compatibility but is not consumed by filtering.
type UserPreferences struct {
	Sources    []Source `json:"sources"`
	Categories []string `json:"categories"`
	Authors    []string `json:"authors"`
}

// SourceError records a per-provider failure observed during aggregation.
type SourceError struct {
	Source  Source `json:"source"`
	Message string `json:"message"`
}

// AggregatedResponse is the result of one aggregation call. SourceErrors
// carries per-provider failures so callers can tell a total outage apart from
// a legitimately empty result.
type AggregatedResponse struct {
	Articles     []Article     `json:"articles"`
	TotalCount   int           `json:"totalCount"`
	FetchedAt    time.Time     `json:"fetchedAt"`
	SourceCount  int           `json:"sourceCount"`
	SourceErrors []SourceError `json:"sourceErrors,omitempty"`
}

// SourceInfo describes one provider for the sources listing endpoint.
type SourceInfo struct {
	ID      Source `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}
