package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
	"github.com/noah-isme/teacher-admin-api/pkg/jobs"
)

// JobTypeCacheInvalidate identifies queued cache invalidation retries.
const JobTypeCacheInvalidate = "cache.invalidate"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Counter(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
	retries    jobEnqueuer
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// UseRetryQueue routes failed invalidations to q for asynchronous retry.
func (s *CacheService) UseRetryQueue(q jobEnqueuer) {
	if s == nil {
		return
	}
	s.retries = q
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Generation returns the current generation of scope. Entries of a scope must be keyed by
// the generation read before loading their data. ok is false when the cache is disabled or the
// counter cannot be read; the caller must then neither read nor populate the scope.
func (s *CacheService) Generation(ctx context.Context, scope string) (gen int64, ok bool) {
	if !s.Enabled() {
		return 0, false
	}
	gen, err := s.repo.Counter(ctx, generationKey(scope))
	if err != nil {
		s.logger.Warn("cache generation read failed", zap.String("scope", scope), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// Invalidate retires every entry of scope. The generation is bumped before old entries are
// deleted, so a reader that loaded data before the write publishes under a key no later reader
// looks up. When this fails and a retry queue is attached, the scope is queued and the call
// succeeds.
func (s *CacheService) Invalidate(ctx context.Context, scope string) error {
	if !s.Enabled() {
		return nil
	}
	err := s.retire(ctx, scope)
	if err == nil {
		return nil
	}
	s.logger.Warn("cache invalidate failed", zap.String("scope", scope), zap.Error(err))
	if s.retries == nil {
		return err
	}
	if qErr := s.retries.Enqueue(jobs.Job{Type: JobTypeCacheInvalidate, Payload: scope}); qErr != nil {
		s.logger.Error("cache invalidate enqueue failed", zap.String("scope", scope), zap.Error(qErr))
		return err
	}
	return nil
}

// HandleInvalidation is the jobs.Handler that replays queued invalidations.
func (s *CacheService) HandleInvalidation(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeCacheInvalidate {
		return fmt.Errorf("unexpected job type %q", job.Type)
	}
	scope, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("invalid invalidation payload %T", job.Payload)
	}
	if !s.Enabled() {
		return nil
	}
	return s.retire(ctx, scope)
}

func (s *CacheService) retire(ctx context.Context, scope string) error {
	if _, err := s.repo.Incr(ctx, generationKey(scope)); err != nil {
		return err
	}
	return s.repo.DeleteByPattern(ctx, scope+":*")
}

func generationKey(scope string) string {
	return "generation:" + scope
}
