package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smc-signal-engine/internal/quality"
)

// Key pattern and TTL for cached quality assessments. Assessments are only
// stable within a session hour, so the TTL is short.
const (
	assessmentKeyPattern = "assessment:%s:%s" // symbol, direction
	DefaultAssessmentTTL = time.Minute
)

// AssessmentCache caches quality assessments per symbol and direction so
// the dashboard can poll without re-running the classifier on every hit.
type AssessmentCache struct {
	store Store
	ttl   time.Duration
}

// NewAssessmentCache creates an assessment cache over a Store.
func NewAssessmentCache(store Store, ttl time.Duration) *AssessmentCache {
	if ttl <= 0 {
		ttl = DefaultAssessmentTTL
	}
	return &AssessmentCache{store: store, ttl: ttl}
}

// Get returns the cached assessment, or (nil, nil) on a miss or an
// unhealthy cache. Decode failures are treated as misses.
func (c *AssessmentCache) Get(ctx context.Context, symbol, direction string) (*quality.Assessment, error) {
	if !c.store.IsHealthy() {
		return nil, nil
	}

	raw, err := c.store.Get(ctx, c.key(symbol, direction))
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}

	var assessment quality.Assessment
	if err := json.Unmarshal([]byte(raw), &assessment); err != nil {
		return nil, nil
	}
	return &assessment, nil
}

// Put stores an assessment. Errors are returned for logging but callers
// should not fail the request over them.
func (c *AssessmentCache) Put(ctx context.Context, symbol, direction string, assessment *quality.Assessment) error {
	if !c.store.IsHealthy() {
		return nil
	}

	data, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	return c.store.Set(ctx, c.key(symbol, direction), string(data), c.ttl)
}

// Invalidate drops the cached assessment for a symbol and direction.
func (c *AssessmentCache) Invalidate(ctx context.Context, symbol, direction string) error {
	if !c.store.IsHealthy() {
		return nil
	}
	return c.store.Delete(ctx, c.key(symbol, direction))
}

func (c *AssessmentCache) key(symbol, direction string) string {
	return fmt.Sprintf(assessmentKeyPattern, symbol, direction)
}
