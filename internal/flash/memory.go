package flash

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	messages  []Message
	expiresAt time.Time
}

// MemoryStore keeps flash messages in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Push(_ context.Context, key string, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	entry := s.entries[key]
	if entry == nil {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}
	entry.messages = append(entry.messages, msgs...)
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, key string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[key]
	delete(s.entries, key)
	if entry == nil || s.expired(entry, s.now()) {
		return []Message{}, nil
	}
	return entry.messages, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// sweep drops every expired entry. Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	for key, entry := range s.entries {
		if s.expired(entry, now) {
			delete(s.entries, key)
		}
	}
}

func (s *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
