package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mkellner/newsdesk/internal/logging"
	"github.com/mkellner/newsdesk/internal/models"
)

// FileStore keeps the preference record in a JSON file under a data
// directory, the durable local-storage analog for a single-user session.
type FileStore struct {
	path   string
	logger *logging.Logger
}

// NewFileStore creates a FileStore rooted at dir. The directory is created on
// first save, not here.
func NewFileStore(dir string, logger *logging.Logger) *FileStore {
	return &FileStore{
		path:   filepath.Join(dir, StorageKey+".json"),
		logger: logger,
	}
}

func (s *FileStore) Load() models.UserPreferences {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read preferences, using defaults",
				logging.WithField("path", s.path),
				logging.WithField("error", err.Error()))
		}
		return Defaults()
	}

	var prefs models.UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		s.logger.Warn("Stored preferences are corrupt, using defaults",
			logging.WithField("path", s.path),
			logging.WithField("error", err.Error()))
		return Defaults()
	}

	return prefs
}

func (s *FileStore) Save(prefs models.UserPreferences) {
	data, err := json.Marshal(prefs)
	if err != nil {
		s.logger.Error("Failed to encode preferences", logging.WithField("error", err.Error()))
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Error("Failed to create preferences directory",
			logging.WithField("path", s.path),
			logging.WithField("error", err.Error()))
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("Failed to save preferences",
			logging.WithField("path", s.path),
			logging.WithField("error", err.Error()))
	}
}

func (s *FileStore) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to clear preferences",
			logging.WithField("path", s.path),
			logging.WithField("error", err.Error()))
	}
}

var _ Store = (*FileStore)(nil)
