// Package adapt normalizes provider-specific article records into the unified
// Article model. The per-provider adapters are pure: same input, same output,
// no I/O, and missing optional fields fall back to documented defaults instead
// of failing.
package adapt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mkellner/newsdesk/internal/models"
	"github.com/mkellner/newsdesk/internal/sanitize"
)

// nytMediaHost prefixes relative NYTimes multimedia paths.
const nytMediaHost = "https://www.nytimes.com/"

// Adapter routes raw provider records to the matching per-provider adapter.
type Adapter struct {
	san *sanitize.Sanitizer
}

// New returns an Adapter using the given sanitizer for provider fields that
// arrive as HTML fragments.
func New(san *sanitize.Sanitizer) *Adapter {
	return &Adapter{san: san}
}

// One decodes raw as a record of the given source and adapts it. An
// unrecognized source tag yields *models.UnknownSourceError.
func (a *Adapter) One(raw json.RawMessage, source models.Source) (models.Article, error) {
	switch source {
	case models.SourceNewsAPI:
		var rec NewsAPIArticle
		if err := json.Unmarshal(raw, &rec); err != nil {
			return models.Article{}, fmt.Errorf("decode newsapi record: %w", err)
		}
		return a.NewsAPI(rec), nil
	case models.SourceGuardian:
		var rec GuardianArticle
		if err := json.Unmarshal(raw, &rec); err != nil {
			return models.Article{}, fmt.Errorf("decode guardian record: %w", err)
		}
		return a.Guardian(rec), nil
	case models.SourceNYTimes:
		var rec NYTimesArticle
		if err := json.Unmarshal(raw, &rec); err != nil {
			return models.Article{}, fmt.Errorf("decode nytimes record: %w", err)
		}
		return a.NYTimes(rec), nil
	default:
		return models.Article{}, &models.UnknownSourceError{Source: source}
	}
}

// Many adapts a batch, preserving input order. The first failure aborts the
// batch; no partial result is returned.
func (a *Adapter) Many(raws []json.RawMessage, source models.Source) ([]models.Article, error) {
	articles := make([]models.Article, 0, len(raws))
	for i, raw := range raws {
		article, err := a.One(raw, source)
		if err != nil {
			var usErr *models.UnknownSourceError
			if errors.As(err, &usErr) {
				return nil, err
			}
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// NewsAPI adapts a NewsAPI record. The provider carries no native identifier,
// so the id is synthesized from the article URL.
func (a *Adapter) NewsAPI(rec NewsAPIArticle) models.Article {
	content := rec.Content
	if content == "" {
		content = rec.Description
	}

	return models.Article{
		ID:          "newsapi-" + rec.URL,
		Title:       rec.Title,
		Description: rec.Description,
		Content:     content,
		URL:         rec.URL,
		ImageURL:    optional(rec.URLToImage),
		PublishedAt: rec.PublishedAt,
		Author:      optional(rec.Author),
		Source:      models.SourceNewsAPI,
		Category:    "general",
	}
}

// Guardian adapts a Guardian content-search record. The optional fields block
// carries HTML fragments, which are reduced to plain text.
func (a *Adapter) Guardian(rec GuardianArticle) models.Article {
	fields := rec.Fields
	if fields == nil {
		fields = &GuardianFields{}
	}

	title := fields.Headline
	if title == "" {
		title = rec.WebTitle
	}

	description := a.san.Plain(fields.TrailText)

	content := a.san.Plain(fields.BodyText)
	if content == "" {
		content = description
	}

	category := rec.SectionID
	if category == "" {
		category = "general"
	}

	return models.Article{
		ID:          rec.ID,
		Title:       title,
		Description: description,
		Content:     content,
		URL:         rec.WebURL,
		ImageURL:    optional(fields.Thumbnail),
		PublishedAt: rec.WebPublicationDate,
		Author:      optional(fields.Byline),
		Source:      models.SourceGuardian,
		Category:    category,
	}
}

// NYTimes adapts an NYTimes article-search doc. Multimedia paths are relative
// and get the provider's media host prefixed.
func (a *Adapter) NYTimes(rec NYTimesArticle) models.Article {
	description := rec.Abstract
	if description == "" {
		description = rec.Snippet
	}

	content := rec.LeadParagraph
	if content == "" {
		content = rec.Abstract
	}

	var imageURL *string
	if len(rec.Multimedia) > 0 && rec.Multimedia[0].URL != "" {
		u := nytMediaHost + rec.Multimedia[0].URL
		imageURL = &u
	}

	category := strings.ToLower(rec.SectionName)
	if category == "" {
		category = "general"
	}

	return models.Article{
		ID:          rec.ID,
		Title:       rec.Headline.Main,
		Description: description,
		Content:     content,
		URL:         rec.WebURL,
		ImageURL:    imageURL,
		PublishedAt: rec.PubDate,
		Author:      optional(rec.Byline.Original),
		Source:      models.SourceNYTimes,
		Category:    category,
	}
}

// optional maps an empty provider string to a null unified field.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
