package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"genstudio/internal/domain"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	default:
		f.values[key] = fmt.Sprint(v)
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestRedisTrackerRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	tracker := NewRedisTracker(fake, time.Hour)
	ctx := context.Background()

	job := domain.VideoJob{ID: "job-1", UserID: "u1", Provider: "d-id", State: domain.JobStatePolling, Attempts: 3}
	if err := tracker.Record(ctx, job); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if fake.ttls["video-job:job-1"] != time.Hour {
		t.Fatalf("ttl = %v, want 1h", fake.ttls["video-job:job-1"])
	}
	got, err := tracker.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.State != domain.JobStatePolling || got.Attempts != 3 || got.UserID != "u1" {
		t.Fatalf("job = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt should be stamped")
	}
}

func TestRedisTrackerMissingJob(t *testing.T) {
	tracker := NewRedisTracker(newFakeRedis(), time.Hour)
	if _, err := tracker.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryTrackerExpiry(t *testing.T) {
	tracker := NewMemoryTracker(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }
	ctx := context.Background()

	if err := tracker.Record(ctx, domain.VideoJob{ID: "a", State: domain.JobStateSubmitted}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if _, err := tracker.Get(ctx, "a"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := tracker.Get(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after ttl", err)
	}
}
