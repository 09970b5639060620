// Package jobs keeps a short-lived view of video generation progress so
// clients can ask where their job is. The remote provider stays
// authoritative; entries expire after a TTL.
package jobs

import (
	"context"
	"sync"
	"time"

	"genstudio/internal/domain"
)

// Tracker records and reads VideoJob views.
type Tracker interface {
	Record(ctx context.Context, job domain.VideoJob) error
	Get(ctx context.Context, id string) (domain.VideoJob, error)
}

// MemoryTracker is an in-process Tracker for single-instance deployments.
type MemoryTracker struct {
	mu   sync.RWMutex
	jobs map[string]domain.VideoJob
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	return &MemoryTracker{jobs: map[string]domain.VideoJob{}, ttl: ttl, now: time.Now}
}

func (m *MemoryTracker) Record(ctx context.Context, job domain.VideoJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = m.now()
	}
	m.jobs[job.ID] = job
	m.evictLocked()
	return nil
}

func (m *MemoryTracker) Get(ctx context.Context, id string) (domain.VideoJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok || m.expired(job) {
		return domain.VideoJob{}, domain.ErrNotFound
	}
	return job, nil
}

func (m *MemoryTracker) expired(job domain.VideoJob) bool {
	return m.ttl > 0 && m.now().Sub(job.UpdatedAt) > m.ttl
}

func (m *MemoryTracker) evictLocked() {
	for id, job := range m.jobs {
		if m.expired(job) {
			delete(m.jobs, id)
		}
	}
}

var _ Tracker = (*MemoryTracker)(nil)
