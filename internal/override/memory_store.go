package override

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the ledger in process memory for the process lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStore creates an in-memory override ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append assigns the next id and timestamp under the store lock, so the
// "compute next id, append" pair is a single critical section.
func (s *MemoryStore) Append(_ context.Context, rec *Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := copyRecord(rec)
	cp.ID = FormatID(int64(len(s.records)) + 1)
	cp.CreatedAt = time.Now().UTC()
	s.records = append(s.records, cp)

	return copyRecord(cp), nil
}

// List returns up to limit records, most recently inserted first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	result := make([]*Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, copyRecord(s.records[i]))
	}
	return result, nil
}

// copyRecord deep-copies a record so callers can never mutate the ledger.
func copyRecord(rec *Record) *Record {
	cp := *rec
	if rec.CaseID != nil {
		v := *rec.CaseID
		cp.CaseID = &v
	}
	if rec.BookingID != nil {
		v := *rec.BookingID
		cp.BookingID = &v
	}
	if rec.Label != nil {
		v := *rec.Label
		cp.Label = &v
	}
	cp.Meta = make(map[string]any, len(rec.Meta))
	for k, v := range rec.Meta {
		cp.Meta[k] = v
	}
	return &cp
}
