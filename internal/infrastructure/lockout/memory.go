package lockout

import (
	"context"
	"sync"
	"time"

	"github.com/avdeev/authgate/internal/application/ports"
)

type entry struct {
	failures    int
	lockedUntil time.Time
}

// MemoryStore is an in-memory FailedLoginStore suitable for single-instance
// deployment; counters are process-local and reset on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]*entry
	max      int
	cooldown time.Duration
}

// NewMemoryStore returns a store with the given max attempts and cooldown.
// maxAttempts 0 = disabled.
func NewMemoryStore(maxAttempts int, cooldown time.Duration) *MemoryStore {
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &MemoryStore{
		data:     make(map[string]*entry),
		max:      maxAttempts,
		cooldown: cooldown,
	}
}

func (s *MemoryStore) IsLocked(ctx context.Context, email string) (locked bool, retryAfterSeconds int) {
	if s.max <= 0 {
		return false, 0
	}
	s.mu.RLock()
	e, ok := s.data[email]
	s.mu.RUnlock()
	if !ok || e == nil {
		return false, 0
	}
	if time.Now().Before(e.lockedUntil) {
		secs := int(time.Until(e.lockedUntil).Seconds())
		if secs < 1 {
			secs = 1
		}
		return true, secs
	}
	return false, 0
}

func (s *MemoryStore) RecordFailure(ctx context.Context, email string) {
	if s.max <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.data[email]
	if e == nil {
		e = &entry{}
		s.data[email] = e
	}
	// Cooldown expired: reset the count so lockout can apply again.
	now := time.Now()
	if now.After(e.lockedUntil) && !e.lockedUntil.IsZero() {
		e.failures = 0
		e.lockedUntil = time.Time{}
	}
	e.failures++
	if e.failures >= s.max {
		e.lockedUntil = now.Add(s.cooldown)
	}
}

func (s *MemoryStore) RecordSuccess(ctx context.Context, email string) {
	if s.max <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, email)
}

var _ ports.FailedLoginStore = (*MemoryStore)(nil)
