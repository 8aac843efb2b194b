package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
)

// CachedRepository decorates a lesson.Repository with cached reads.
//
// Keys have the form <prefix><generation>:<query>:<argument>. ReplaceAll
// writes a fresh generation after the inner store commits, so answers cached
// for the previous contents are never read again and expire on their own.
// Redis failures on the read path fall back to the inner store.
type CachedRepository struct {
	inner  lesson.Repository
	cache  queryCache
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// queryCache is the part of Cache the repository uses.
type queryCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string) error
	SetStringNX(ctx context.Context, key, value string) (bool, error)
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

var _ queryCache = (*Cache)(nil)

// CachedRepositoryConfig contains configuration for CachedRepository.
type CachedRepositoryConfig struct {
	// Prefix namespaces keys (default PrefixSchedule).
	Prefix string

	// TTL of a cached answer (default TTLQueryCache).
	TTL time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewCachedRepository wraps inner with a query cache.
func NewCachedRepository(inner lesson.Repository, cache *Cache, config CachedRepositoryConfig) *CachedRepository {
	return newCachedRepository(inner, cache, config)
}

func newCachedRepository(inner lesson.Repository, cache queryCache, config CachedRepositoryConfig) *CachedRepository {
	if config.Prefix == "" {
		config.Prefix = PrefixSchedule
	}
	if config.TTL <= 0 {
		config.TTL = TTLQueryCache
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &CachedRepository{
		inner:  inner,
		cache:  cache,
		prefix: config.Prefix,
		ttl:    config.TTL,
		logger: config.Logger,
	}
}

var _ lesson.Repository = (*CachedRepository)(nil)

// EnsureSchema delegates to the inner store.
func (r *CachedRepository) EnsureSchema(ctx context.Context) error {
	return r.inner.EnsureSchema(ctx)
}

// ReplaceAll replaces the inner store contents and starts a new generation.
// When the new generation cannot be written the generation key is dropped,
// so the next read starts a fresh one. If that fails too the cache still
// serves the old contents and an error is returned.
func (r *CachedRepository) ReplaceAll(ctx context.Context, lessons []*lesson.Lesson) error {
	if err := r.inner.ReplaceAll(ctx, lessons); err != nil {
		return err
	}

	old, _ := r.cache.GetString(ctx, r.generationKey())
	next := uuid.NewString()
	if err := r.cache.SetString(ctx, r.generationKey(), next); err != nil {
		if delErr := r.cache.Delete(ctx, r.generationKey()); delErr != nil {
			r.logger.Error("cache generation left stale",
				"error", err, "delete_error", delErr, "ttl", r.ttl.String())
			return fmt.Errorf("redis: cache generation not advanced: %w", errors.Join(err, delErr))
		}
		r.logger.Warn("failed to bump cache generation, dropped it instead", "error", err)
		return nil
	}

	if old != "" {
		if err := r.cache.DeleteByPattern(ctx, r.prefix+old+":*"); err != nil {
			r.logger.Warn("failed to drop stale cache entries", "generation", old, "error", err)
		}
	}

	r.logger.Debug("cache generation bumped", "generation", next)
	return nil
}

// FindByDate returns cached day slots or reads them from the inner store.
func (r *CachedRepository) FindByDate(ctx context.Context, date string) ([]lesson.DaySlot, error) {
	return readThrough(ctx, r, "date", date, r.inner.FindByDate)
}

// FindBySubject returns cached entries or reads them from the inner store.
func (r *CachedRepository) FindBySubject(ctx context.Context, substr string) ([]lesson.Entry, error) {
	return readThrough(ctx, r, "subject", substr, r.inner.FindBySubject)
}

// FindByDescription returns cached entries or reads them from the inner store.
func (r *CachedRepository) FindByDescription(ctx context.Context, fragment string) ([]lesson.Entry, error) {
	return readThrough(ctx, r, "description", fragment, r.inner.FindByDescription)
}

// Stats is not cached.
func (r *CachedRepository) Stats(ctx context.Context) (lesson.Stats, error) {
	return r.inner.Stats(ctx)
}

func (r *CachedRepository) generationKey() string {
	return r.prefix + "generation"
}

// generation returns the current generation, creating one on first use.
func (r *CachedRepository) generation(ctx context.Context) (string, error) {
	gen, err := r.cache.GetString(ctx, r.generationKey())
	if err == nil {
		return gen, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return "", err
	}

	if _, err := r.cache.SetStringNX(ctx, r.generationKey(), uuid.NewString()); err != nil {
		return "", err
	}
	return r.cache.GetString(ctx, r.generationKey())
}

func readThrough[T any](
	ctx context.Context,
	r *CachedRepository,
	query, arg string,
	load func(context.Context, string) ([]T, error),
) ([]T, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.logger.Warn("cache unavailable, reading from store", "query", query, "error", err)
		return load(ctx, arg)
	}

	key := r.prefix + gen + ":" + query + ":" + arg

	var cached []T
	switch err := r.cache.Get(ctx, key, &cached); {
	case err == nil:
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		r.logger.Warn("cache read failed", "key", key, "error", err)
	}

	rows, err := load(ctx, arg)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, rows, r.ttl); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return rows, nil
}
