package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
	"github.com/jwebster45206/stage-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const saveKeyPrefix = "save:"

// RedisStorage implements the Storage interface using Redis for save slots
// and filesystem for scripts
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	ttl     time.Duration
	scripts scriptDir
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL may be a
// host:port address or a redis:// URL. A zero ttl keeps save slots forever.
func NewRedisStorage(redisURL string, dataDir string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opts = parsed
	}

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  redis.NewClient(opts),
		logger:  logger,
		ttl:     ttl,
		scripts: scriptDir{dataDir: dataDir, logger: logger},
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection pings Redis until it answers, up to attempts times with
// delay between tries. Used at startup, when Redis may still be booting.
func (r *RedisStorage) WaitForConnection(ctx context.Context, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = r.Ping(ctx); err == nil {
			r.logger.Info("Redis connection established", "attempt", attempt)
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", attempt)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("redis unavailable after %d attempts: %w", attempts, err)
}

// Save slot operations (Redis-backed)

func saveKey(id uuid.UUID) string {
	return saveKeyPrefix + id.String()
}

func (r *RedisStorage) SaveGame(ctx context.Context, save *scenario.SaveData) error {
	if save == nil {
		return errors.New("save data cannot be nil")
	}
	save.UpdatedAt = time.Now()

	data, err := json.Marshal(save)
	if err != nil {
		r.logger.Error("Failed to marshal save data", "uuid", save.ID, "error", err)
		return fmt.Errorf("failed to marshal save data: %w", err)
	}

	if err := r.client.Set(ctx, saveKey(save.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save game", "uuid", save.ID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}

	r.logger.Debug("Game saved", "uuid", save.ID, "properties", len(save.Properties))
	return nil
}

func (r *RedisStorage) LoadGame(ctx context.Context, id uuid.UUID) (*scenario.SaveData, error) {
	data, err := r.client.Get(ctx, saveKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Save not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load game", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	var save scenario.SaveData
	if err := json.Unmarshal([]byte(data), &save); err != nil {
		r.logger.Error("Failed to unmarshal save data", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save data: %w", err)
	}

	return &save, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, saveKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete game", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListGames(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, saveKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := uuid.Parse(strings.TrimPrefix(iter.Val(), saveKeyPrefix))
		if err != nil {
			r.logger.Warn("Skipping malformed save key", "key", iter.Val())
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return ids, nil
}

// Script operations (filesystem-backed)

func (r *RedisStorage) ListScripts(ctx context.Context) (map[string]string, error) {
	return r.scripts.listScripts()
}

func (r *RedisStorage) GetScript(ctx context.Context, filename string) (*scenario.Script, error) {
	return r.scripts.getScript(filename)
}
