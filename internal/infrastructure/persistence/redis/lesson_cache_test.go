package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/lesson/lessontest"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/persistence/sqlite"
	"github.com/lk-schedule/schedule-hub/pkg/testhelpers"
)

// countingRepository counts reads that reach the store.
type countingRepository struct {
	lesson.Repository
	reads atomic.Int32
}

func (r *countingRepository) FindByDate(ctx context.Context, date string) ([]lesson.DaySlot, error) {
	r.reads.Add(1)
	return r.Repository.FindByDate(ctx, date)
}

func (r *countingRepository) FindBySubject(ctx context.Context, substr string) ([]lesson.Entry, error) {
	r.reads.Add(1)
	return r.Repository.FindBySubject(ctx, substr)
}

// memoryCache keeps values in a map and can be told to fail writes.
type memoryCache struct {
	mu            sync.Mutex
	values        map[string]string
	failSetString bool
	failDelete    bool
}

var errWriteRefused = errors.New("write refused")

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.values[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal([]byte(v), dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = string(data)
	return nil
}

func (c *memoryCache) GetString(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.values[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) SetString(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failSetString {
		return errWriteRefused
	}
	c.values[key] = value
	return nil
}

func (c *memoryCache) SetStringNX(_ context.Context, key, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = value
	return true, nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failDelete {
		return errWriteRefused
	}
	delete(c.values, key)
	return nil
}

func (c *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			delete(c.values, k)
		}
	}
	return nil
}

func newCache(t *testing.T) *Cache {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Addr = testhelpers.StartRedis(t)

	cache, err := NewCache(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	return cache
}

func newStore(t *testing.T) *countingRepository {
	t.Helper()

	ctx := context.Background()
	conn, err := sqlite.Open(ctx, sqlite.Config{Path: ":memory:", BusyTimeoutMS: 1000})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	repo := sqlite.NewLessonRepository(conn)
	require.NoError(t, repo.EnsureSchema(ctx))

	return &countingRepository{Repository: repo}
}

// isolated gives each repository its own key namespace on the shared server.
func isolated(inner lesson.Repository, cache *Cache) *CachedRepository {
	return NewCachedRepository(inner, cache, CachedRepositoryConfig{
		Prefix: "test:" + uuid.NewString() + ":",
	})
}

func TestCachedRepository_Integration(t *testing.T) {
	cache := newCache(t)

	lessontest.RunRepositoryTests(t, func(t *testing.T) lesson.Repository {
		return isolated(newStore(t), cache)
	})
}

func TestCachedRepository_ServesRepeatedReadsFromCache_Integration(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	repo := isolated(store, newCache(t))

	require.NoError(t, repo.ReplaceAll(ctx, lessontest.Lessons(t)))

	first, err := repo.FindByDate(ctx, "2025-02-26")
	require.NoError(t, err)
	second, err := repo.FindByDate(ctx, "2025-02-26")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), store.reads.Load())
}

func TestCachedRepository_ReloadInvalidates_Integration(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	repo := isolated(store, newCache(t))

	require.NoError(t, repo.ReplaceAll(ctx, lessontest.Lessons(t)))
	entries, err := repo.FindBySubject(ctx, "Физика")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, repo.ReplaceAll(ctx, lessontest.Lessons(t)[1:2]))

	entries, err = repo.FindBySubject(ctx, "Физика")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, int32(2), store.reads.Load())
}

func TestNewCache_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.DialTimeout = 200 * time.Millisecond

	_, err := NewCache(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestCachedRepository_GenerationWriteFails(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	store := newStore(t)
	repo := newCachedRepository(store, cache, CachedRepositoryConfig{})

	require.NoError(t, repo.ReplaceAll(ctx, lessontest.Lessons(t)))
	entries, err := repo.FindBySubject(ctx, "Физика")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	cache.failSetString = true
	require.NoError(t, repo.ReplaceAll(ctx, lessontest.Lessons(t)[1:2]))

	_, err = cache.GetString(ctx, repo.generationKey())
	assert.ErrorIs(t, err, ErrCacheMiss)

	entries, err = repo.FindBySubject(ctx, "Физика")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, int32(2), store.reads.Load())
}

func TestCachedRepository_GenerationStuck(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	repo := newCachedRepository(newStore(t), cache, CachedRepositoryConfig{})

	require.NoError(t, repo.ReplaceAll(ctx, lessontest.Lessons(t)))

	cache.failSetString = true
	cache.failDelete = true
	err := repo.ReplaceAll(ctx, lessontest.Lessons(t)[1:2])
	assert.ErrorIs(t, err, errWriteRefused)
}
