// Package cache provides Redis-based caching for engine output with
// graceful degradation: when Redis is unhealthy, callers fall back to
// recomputing or hitting the database.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the subset of cache operations the typed caches need. The
// concrete implementation is Redis; tests use an in-memory fake.
type Store interface {
	IsHealthy() bool
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Config holds Redis connection settings.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// Service is the Redis-backed Store. Connection failures flip an unhealthy
// flag instead of propagating; periodic health checks recover it.
type Service struct {
	client *redis.Client

	mu           sync.RWMutex
	healthy      bool
	failureCount int
	lastCheck    time.Time

	maxFailures   int
	checkInterval time.Duration
}

// NewService connects to Redis. A failed initial connection returns the
// service in degraded mode rather than an error; the engine works without
// a cache.
func NewService(cfg Config) (*Service, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not enabled in configuration")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	s := &Service{
		client:        client,
		maxFailures:   3,
		checkInterval: 30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return s, nil
	}

	s.healthy = true
	s.lastCheck = time.Now()
	return s, nil
}

// IsHealthy reports whether the cache is usable, re-probing the connection
// when the last check is stale.
func (s *Service) IsHealthy() bool {
	s.mu.RLock()
	healthy := s.healthy
	stale := time.Since(s.lastCheck) > s.checkInterval
	s.mu.RUnlock()

	if !stale {
		return healthy
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.client.Ping(ctx).Err()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCheck = time.Now()
	if err != nil {
		s.healthy = false
		return false
	}
	s.healthy = true
	s.failureCount = 0
	return true
}

// Get fetches a cached value. redis.Nil is returned on a miss.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		s.recordFailure()
	}
	return val, err
}

// Set stores a value with a TTL.
func (s *Service) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	err := s.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		s.recordFailure()
	}
	return err
}

// Delete removes a key.
func (s *Service) Delete(ctx context.Context, key string) error {
	err := s.client.Del(ctx, key).Err()
	if err != nil {
		s.recordFailure()
	}
	return err
}

// Close releases the Redis connection.
func (s *Service) Close() error {
	return s.client.Close()
}

func (s *Service) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureCount++
	if s.failureCount >= s.maxFailures {
		s.healthy = false
	}
}

// IsMiss reports whether a Get error is a plain cache miss.
func IsMiss(err error) bool {
	return err == redis.Nil
}
