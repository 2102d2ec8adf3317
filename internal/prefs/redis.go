package prefs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkellner/newsdesk/internal/logging"
	"github.com/mkellner/newsdesk/internal/models"
)

// RedisStore keeps the preference record in Redis under the fixed storage
// key, for deployments where the service itself is stateless.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *logging.Logger
}

// RedisConfig holds connection settings for the Redis preference store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and verifies the connection before
// returning.
func NewRedisStore(cfg RedisConfig, logger *logging.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{
		client: client,
		key:    cfg.Prefix + StorageKey,
		logger: logger,
	}, nil
}

func (s *RedisStore) Load() models.UserPreferences {
	ctx := context.Background()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Failed to load preferences, using defaults",
				logging.WithField("error", err.Error()))
		}
		return Defaults()
	}

	var prefs models.UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		s.logger.Warn("Stored preferences are corrupt, using defaults",
			logging.WithField("error", err.Error()))
		return Defaults()
	}

	return prefs
}

func (s *RedisStore) Save(prefs models.UserPreferences) {
	ctx := context.Background()

	data, err := json.Marshal(prefs)
	if err != nil {
		s.logger.Error("Failed to encode preferences", logging.WithField("error", err.Error()))
		return
	}

	// Preferences have no expiry; they live until cleared.
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		s.logger.Error("Failed to save preferences", logging.WithField("error", err.Error()))
	}
}

func (s *RedisStore) Clear() {
	ctx := context.Background()
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.logger.Error("Failed to clear preferences", logging.WithField("error", err.Error()))
	}
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
