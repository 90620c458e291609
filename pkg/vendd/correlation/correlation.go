package correlation

import (
	"context"
	"sync"
	"time"
)

const (
	keyPrefix = "payment_account_ref_"
	// DefaultTTL is how long a correlation entry outlives the push that
	// created it
	DefaultTTL = 24 * time.Hour
)

// Store maps a checkout request id to the caller-supplied account reference
//
// The store bridges the gap between the synchronous push request, which
// knows the reference, and the asynchronous callback, which may omit it.
// Entries expire; they are never updated.
type Store interface {
	Put(ctx context.Context, checkoutID, reference string, ttl time.Duration) error
	Get(ctx context.Context, checkoutID string) (string, bool, error)
}

func entryKey(checkoutID string) string {
	return keyPrefix + checkoutID
}

// MemStore is an in-process Store for single-node deployments and tests
type MemStore struct {
	m       sync.RWMutex
	entries map[string]memEntry

	// now is the clock, overridable in tests
	now func() time.Time
}

type memEntry struct {
	value   string
	expires time.Time
}

// NewMemStore creates an empty in-process store
func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (s *MemStore) Put(ctx context.Context, checkoutID, reference string, ttl time.Duration) error {
	s.m.Lock()
	s.entries[entryKey(checkoutID)] = memEntry{
		value:   reference,
		expires: s.now().Add(ttl),
	}
	s.m.Unlock()
	return nil
}

func (s *MemStore) Get(ctx context.Context, checkoutID string) (string, bool, error) {
	s.m.RLock()
	e, ok := s.entries[entryKey(checkoutID)]
	s.m.RUnlock()
	if !ok {
		return "", false, nil
	}
	if s.now().After(e.expires) {
		s.m.Lock()
		delete(s.entries, entryKey(checkoutID))
		s.m.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}
