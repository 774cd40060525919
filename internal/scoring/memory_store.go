package scoring

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for demo mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	nextID  int64
}

// NewMemoryStore creates an in-memory decision store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.nextID++
	cp.ID = s.nextID
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, &cp)
	return nil
}

func (s *MemoryStore) List(_ context.Context, bookingID string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(result) < limit; i-- {
		r := s.records[i]
		if bookingID != "" && r.BookingID != bookingID {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	return result, nil
}
