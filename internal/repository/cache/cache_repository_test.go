package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/repository/cache"
)

// getTestCache подключается к локальному Redis (DB 1) или пропускает тест
func getTestCache(t *testing.T) (repository.CacheRepository, *redis.Client) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return cache.NewCacheRepository(cache.NewRedisForTest(client, zap.NewNop())), client
}

func TestCacheRepository_GetSetDelete(t *testing.T) {
	repo, client := getTestCache(t)
	ctx := context.Background()
	key := "test:cache:value"
	defer client.Del(ctx, key)

	miss, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, repo.Set(ctx, key, []byte("payload"), time.Minute))
	val, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)

	require.NoError(t, repo.Delete(ctx, key))
	val, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCacheRepository_Metadata(t *testing.T) {
	repo, client := getTestCache(t)
	ctx := context.Background()
	defer client.Del(ctx, "report:metadata")
	client.Del(ctx, "report:metadata")

	meta, err := repo.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Nil(t, meta)

	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetMetadata(ctx, &domain.ReportMetadata{
		LastUpdated: at,
		TotalLands:  52000,
		ReportURL:   "https://reports.example.com/report.json",
	}, time.Minute))

	meta, err = repo.GetMetadata(ctx)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, 52000, meta.TotalLands)
	assert.True(t, meta.LastUpdated.Equal(at))
}

func TestCacheRepository_Lock(t *testing.T) {
	repo, client := getTestCache(t)
	ctx := context.Background()
	key := "test:lock:run"
	defer client.Del(ctx, key)
	client.Del(ctx, key)

	ok, err := repo.AcquireLock(ctx, key, "owner-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AcquireLock(ctx, key, "owner-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// чужой владелец не может снять блокировку
	require.NoError(t, repo.ReleaseLock(ctx, key, "owner-b"))
	held, err := client.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "owner-a", held)

	require.NoError(t, repo.ReleaseLock(ctx, key, "owner-a"))
	ok, err = repo.AcquireLock(ctx, key, "owner-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
