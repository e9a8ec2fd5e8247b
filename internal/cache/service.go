package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/constants"
	"github.com/podiumreach/speaker-directory-go/internal/domain"
	dirErrors "github.com/podiumreach/speaker-directory-go/pkg/errors"
)

const directorySnapshotKey = "directory:speakers:snapshot"

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Service is the Redis-backed snapshot store. It is strictly optional: the
// directory runs without it, losing only the snapshot rung of the
// degradation chain.
type Service struct {
	client *redis.Client
	logger *zap.Logger
}

func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   constants.RedisConfig.MaxRetries,
		DialTimeout:  constants.RedisConfig.DialTimeout,
		ReadTimeout:  constants.RedisConfig.ReadTimeout,
		WriteTimeout: constants.RedisConfig.WriteTimeout,
		PoolSize:     constants.RedisConfig.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, dirErrors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &Service{
		client: client,
		logger: logger,
	}, nil
}

func (s *Service) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		s.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, dirErrors.NewCacheError("get failed", "get", key, err)
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		s.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return false, dirErrors.NewCacheError("unmarshal failed", "get", key, err)
	}
	return true, nil
}

func (s *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return dirErrors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := s.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		s.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return dirErrors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (s *Service) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return dirErrors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

// GetDirectorySnapshot loads the last persisted good collection. A miss or
// any Redis problem reads as "no snapshot"; the caller walks further down
// the degradation chain.
func (s *Service) GetDirectorySnapshot(ctx context.Context) ([]*domain.Speaker, bool) {
	var speakers []*domain.Speaker
	found, err := s.Get(ctx, directorySnapshotKey, &speakers)
	if err != nil || !found || len(speakers) == 0 {
		return nil, false
	}

	s.logger.Info("Serving directory from Redis snapshot",
		zap.Int("speakers", len(speakers)),
	)
	return speakers, true
}

// SetDirectorySnapshot persists the collection after a successful live
// refresh. Failures are logged and swallowed; snapshotting is best effort.
func (s *Service) SetDirectorySnapshot(ctx context.Context, speakers []*domain.Speaker) {
	if len(speakers) == 0 {
		return
	}
	if err := s.Set(ctx, directorySnapshotKey, speakers, constants.CacheTTL.Snapshot); err != nil {
		s.logger.Warn("Failed to persist directory snapshot", zap.Error(err))
	}
}

func (s *Service) IsConnected(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

func (s *Service) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	s.logger.Info("Redis disconnected")
	return nil
}
