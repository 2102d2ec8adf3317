// Package sanitize strips markup from provider-supplied rich-text fields.
// Guardian trail and body text arrive as HTML fragments; the unified article
// model carries plain text only.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer reduces an HTML fragment to plain text. It is safe for concurrent
// use and idempotent: sanitizing already-plain text returns it unchanged.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New returns a Sanitizer with a strict policy that allows no elements or
// attributes at all.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Plain strips all markup from s and unescapes the surviving entities.
func (s *Sanitizer) Plain(text string) string {
	if text == "" {
		return ""
	}
	stripped := s.policy.Sanitize(text)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
