package session

import (
	"context"
	"sync"
	"time"

	"storefront-api/internal/domain"
)

type memorySlot struct {
	payload   []byte
	expiresAt time.Time
}

type memoryRepo struct {
	mu    sync.RWMutex
	slots map[string]memorySlot
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory returns an in-process Repository. It is the default backend when
// no database is configured; slots expire ttl after their last write, or
// never when ttl is zero.
func NewMemory(ttl time.Duration) Repository {
	return &memoryRepo{
		slots: make(map[string]memorySlot),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (r *memoryRepo) Get(_ context.Context, sessionID string) ([]byte, error) {
	r.mu.RLock()
	slot, ok := r.slots[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !slot.expiresAt.IsZero() && r.now().After(slot.expiresAt) {
		// Drop the dead slot so the map does not keep every session ever
		// seen. Recheck under the write lock: a Put may have refreshed it
		// between the two lock acquisitions.
		r.mu.Lock()
		if current, ok := r.slots[sessionID]; ok && !current.expiresAt.IsZero() && r.now().After(current.expiresAt) {
			delete(r.slots, sessionID)
		}
		r.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	payload := make([]byte, len(slot.payload))
	copy(payload, slot.payload)
	return payload, nil
}

func (r *memoryRepo) Put(_ context.Context, sessionID string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)
	slot := memorySlot{payload: stored}
	if r.ttl > 0 {
		slot.expiresAt = r.now().Add(r.ttl)
	}
	r.mu.Lock()
	r.slots[sessionID] = slot
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.slots, sessionID)
	r.mu.Unlock()
	return nil
}
