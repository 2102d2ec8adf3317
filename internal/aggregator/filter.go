package aggregator

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/mkellner/newsdesk/internal/models"
)

// FilterArticles applies every present filter field as an independent
// predicate and keeps an article only when all of them pass. Absent fields
// impose no constraint; an empty result is valid. The function is pure and
// idempotent.
func FilterArticles(articles []models.Article, filters models.ArticleFilters) []models.Article {
	if filters.IsZero() {
		return articles
	}

	query := normalizeText(filters.Query)
	author := normalizeText(filters.Author)
	fromTime, hasFrom := parseFilterDate(filters.DateFrom)
	toTime, hasTo := parseFilterDate(filters.DateTo)
	if hasTo {
		// Inclusive bound: admit anything published up to the end of that day.
		toTime = toTime.Add(24*time.Hour - time.Nanosecond)
	}

	filtered := make([]models.Article, 0, len(articles))
	for _, article := range articles {
		if query != "" {
			title := normalizeText(article.Title)
			description := normalizeText(article.Description)
			if !strings.Contains(title, query) && !strings.Contains(description, query) {
				continue
			}
		}

		if len(filters.Sources) > 0 && !containsSource(filters.Sources, article.Source) {
			continue
		}

		if len(filters.Categories) > 0 && !containsString(filters.Categories, article.Category) {
			continue
		}

		if author != "" {
			if article.Author == nil || !strings.Contains(normalizeText(*article.Author), author) {
				continue
			}
		}

		if hasFrom || hasTo {
			published, ok := parsePublished(article.PublishedAt)
			if !ok {
				continue
			}
			if hasFrom && published.Before(fromTime) {
				continue
			}
			if hasTo && published.After(toTime) {
				continue
			}
		}

		filtered = append(filtered, article)
	}

	return filtered
}

// ByPreferredCategories narrows articles to the user's preferred categories.
// An empty preference set means no narrowing.
func ByPreferredCategories(articles []models.Article, categories []string) []models.Article {
	if len(categories) == 0 {
		return articles
	}

	filtered := make([]models.Article, 0, len(articles))
	for _, article := range articles {
		if containsString(categories, article.Category) {
			filtered = append(filtered, article)
		}
	}
	return filtered
}

// normalizeText prepares a string for case-insensitive substring matching.
// NFC normalization keeps composed and decomposed provider text comparable.
func normalizeText(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(norm.NFC.String(s))
}

func parseFilterDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func containsSource(sources []models.Source, target models.Source) bool {
	for _, s := range sources {
		if s == target {
			return true
		}
	}
	return false
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
