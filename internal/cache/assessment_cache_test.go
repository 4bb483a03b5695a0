package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smc-signal-engine/internal/quality"
)

// ============================================================================
// FAKE STORE
// ============================================================================

type fakeStore struct {
	mu      sync.Mutex
	healthy bool
	data    map[string]string
	getErr  error
	setErr  error

	getCalls []string
	setCalls []string
	delCalls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{healthy: true, data: make(map[string]string)}
}

func (f *fakeStore) IsHealthy() bool { return f.healthy }

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, key)
	if f.getErr != nil {
		return "", f.getErr
	}
	val, ok := f.data[key]
	if !ok {
		return "", errMiss
	}
	return val, nil
}

func (f *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls = append(f.setCalls, key)
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delCalls = append(f.delCalls, key)
	delete(f.data, key)
	return nil
}

var errMiss = errors.New("fake: miss")

// ============================================================================
// TESTS
// ============================================================================

func TestAssessmentCacheRoundTrip(t *testing.T) {
	store := newFakeStore()
	c := NewAssessmentCache(store, time.Minute)
	ctx := context.Background()

	in := &quality.Assessment{
		Quality:         quality.QualityGood,
		Improvements:    []string{"add more confluence factors before entry"},
		ExpectedWinRate: 65,
		ExpectedRRR:     3.5,
	}
	if err := c.Put(ctx, "EURUSD", "long", in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	out, err := c.Get(ctx, "EURUSD", "long")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out == nil {
		t.Fatal("Get returned nil after Put")
	}
	if out.Quality != in.Quality || out.ExpectedWinRate != in.ExpectedWinRate {
		t.Errorf("Get = %+v, want %+v", out, in)
	}
}

func TestAssessmentCacheUnhealthyStoreIsNoop(t *testing.T) {
	store := newFakeStore()
	store.healthy = false
	c := NewAssessmentCache(store, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "EURUSD", "long", &quality.Assessment{Quality: quality.QualityPoor}); err != nil {
		t.Fatalf("Put on unhealthy store: %v", err)
	}
	if len(store.setCalls) != 0 {
		t.Errorf("Put hit the store while unhealthy: %v", store.setCalls)
	}

	out, err := c.Get(ctx, "EURUSD", "long")
	if err != nil || out != nil {
		t.Errorf("Get on unhealthy store = %v, %v; want nil, nil", out, err)
	}
}

func TestAssessmentCacheGetError(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection reset")
	c := NewAssessmentCache(store, time.Minute)

	_, err := c.Get(context.Background(), "EURUSD", "long")
	if err == nil {
		t.Error("Get swallowed a store error")
	}
}

func TestAssessmentCacheKeySeparatesDirections(t *testing.T) {
	store := newFakeStore()
	c := NewAssessmentCache(store, time.Minute)
	ctx := context.Background()

	long := &quality.Assessment{Quality: quality.QualityExcellent}
	short := &quality.Assessment{Quality: quality.QualityPoor}
	if err := c.Put(ctx, "XAUUSD", "long", long); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, "XAUUSD", "short", short); err != nil {
		t.Fatal(err)
	}

	gotLong, _ := c.Get(ctx, "XAUUSD", "long")
	gotShort, _ := c.Get(ctx, "XAUUSD", "short")
	if gotLong == nil || gotShort == nil {
		t.Fatal("direction-keyed entries missing")
	}
	if gotLong.Quality == gotShort.Quality {
		t.Error("long and short assessments collided on one key")
	}
}

func TestAssessmentCacheInvalidate(t *testing.T) {
	store := newFakeStore()
	c := NewAssessmentCache(store, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "US30", "long", &quality.Assessment{Quality: quality.QualityGood}); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx, "US30", "long"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if len(store.data) != 0 {
		t.Errorf("store still holds %d entries after invalidate", len(store.data))
	}
}
