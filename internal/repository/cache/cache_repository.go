package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
)

const metadataKey = "report:metadata"

// releaseScript снимает блокировку только если значение совпадает с владельцем
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// GetMetadata получает метаданные последнего отчёта из кеша
func (r *cacheRepository) GetMetadata(ctx context.Context) (*domain.ReportMetadata, error) {
	data, err := r.Get(ctx, metadataKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var meta domain.ReportMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		r.logger.Error("Failed to unmarshal metadata from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// SetMetadata сохраняет метаданные в кеше
func (r *cacheRepository) SetMetadata(ctx context.Context, meta *domain.ReportMetadata, ttl time.Duration) error {
	data, err := json.Marshal(meta)
	if err != nil {
		r.logger.Error("Failed to marshal metadata", zap.Error(err))
		return fmt.Errorf("marshal metadata: %w", err)
	}

	return r.Set(ctx, metadataKey, data, ttl)
}

func (r *cacheRepository) AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		r.logger.Error("Failed to acquire lock", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("acquire lock: %w", err)
	}

	r.logger.Debug("Lock acquire attempt",
		zap.String("key", key),
		zap.String("owner", owner),
		zap.Bool("acquired", ok),
	)
	return ok, nil
}

func (r *cacheRepository) ReleaseLock(ctx context.Context, key, owner string) error {
	released, err := releaseScript.Run(ctx, r.client, []string{key}, owner).Int()
	if err != nil {
		r.logger.Error("Failed to release lock", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("release lock: %w", err)
	}
	if released == 0 {
		r.logger.Warn("Lock was not held by owner", zap.String("key", key), zap.String("owner", owner))
	}
	return nil
}
