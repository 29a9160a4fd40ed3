package session

import (
	"context"
	"sync"
	"time"
)

const revocationSweepInterval = 5 * time.Minute

// RevocationStore records revoked proof ids until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, id string, until time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
	Close()
}

type memoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemoryRevocationStore returns an in-process RevocationStore. Entries
// are swept once their recorded expiry passes.
func NewMemoryRevocationStore() RevocationStore {
	s := &memoryRevocationStore{
		entries: make(map[string]time.Time),
		stopCh:  make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *memoryRevocationStore) Revoke(_ context.Context, id string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = until
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.entries[id]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(s.entries, id)
		return false, nil
	}
	return true, nil
}

func (s *memoryRevocationStore) sweepLoop() {
	ticker := time.NewTicker(revocationSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

func (s *memoryRevocationStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, until := range s.entries {
		if now.After(until) {
			delete(s.entries, id)
		}
	}
}

func (s *memoryRevocationStore) Close() {
	s.once.Do(func() {
		close(s.stopCh)
	})
}
