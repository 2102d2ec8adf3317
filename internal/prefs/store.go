// Package prefs persists the user's viewing preferences. The stored value is
// one JSON blob under a single fixed key, no versioning. Load never fails:
// missing or corrupt state falls back to the defaults. Save and Clear are
// best-effort; failures are logged and swallowed.
package prefs

import "github.com/mkellner/newsdesk/internal/models"

// StorageKey is the fixed key (and file name stem) the preference record is
// stored under.
const StorageKey = "news_aggregator_preferences"

// Store is the contract the preference backends implement.
type Store interface {
	Load() models.UserPreferences
	Save(prefs models.UserPreferences)
	Clear()
}

// Defaults returns the hard-coded default preferences: every provider
// enabled, no category narrowing, no authors.
func Defaults() models.UserPreferences {
	return models.UserPreferences{
		Sources:    models.AllSources(),
		Categories: []string{},
		Authors:    []string{},
	}
}
