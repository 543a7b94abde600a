package requestlog

import (
	"strings"
	"sync"
	"time"

	"github.com/getfakerest/fakerest/internal/id"
)

// MemoryStore implements Store (and SubscribableStore) with an in-memory
// circular buffer.
type MemoryStore struct {
	entries     []*Entry
	maxEntries  int
	mu          sync.RWMutex
	subscribers map[Subscriber]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new MemoryStore with the given capacity.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1000 // Default
	}
	return &MemoryStore{
		entries:     make([]*Entry, 0, maxEntries),
		maxEntries:  maxEntries,
		subscribers: make(map[Subscriber]struct{}),
	}
}

// Log records a request log entry.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}

	s.mu.Lock()

	// Generate ID if not set
	if entry.ID == "" {
		entry.ID = id.ULID()
	}

	// Set timestamp if not set
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	// FIFO eviction: remove oldest if at capacity
	if len(s.entries) >= s.maxEntries {
		s.entries = s.entries[1:]
	}

	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	// Notify subscribers (non-blocking)
	s.subMu.RLock()
	for sub := range s.subscribers {
		select {
		case sub <- entry:
		default:
			// Drop if subscriber is slow
		}
	}
	s.subMu.RUnlock()
}

// Get retrieves a log entry by ID.
func (s *MemoryStore) Get(entryID string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.ID == entryID {
			return entry
		}
	}
	return nil
}

// List returns all log entries, newest first, optionally filtered.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))

	// Iterate in reverse order (newest first)
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]

		if filter != nil && !matchesFilter(entry, filter) {
			continue
		}

		result = append(result, entry)
	}

	// Apply offset and limit
	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return []*Entry{}
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}

	return result
}

// matchesFilter checks if an entry matches all filter criteria.
func matchesFilter(entry *Entry, filter *Filter) bool {
	if filter.Method != "" && entry.Method != filter.Method {
		return false
	}
	if filter.Path != "" && !strings.HasPrefix(entry.Path, filter.Path) {
		return false
	}
	if filter.MatchedPath != "" && entry.MatchedPath != filter.MatchedPath {
		return false
	}
	if filter.Outcome != "" && entry.Outcome != filter.Outcome {
		return false
	}
	if filter.StatusCode != 0 && entry.ResponseStatus != filter.StatusCode {
		return false
	}
	if filter.HasError != nil {
		hasError := entry.Error != ""
		if *filter.HasError != hasError {
			return false
		}
	}
	return true
}

// Clear removes all log entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*Entry, 0, s.maxEntries)
}

// Count returns the number of log entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers a subscriber to receive new log entries.
// Returns a channel that will receive entries and an unsubscribe function.
func (s *MemoryStore) Subscribe() (Subscriber, func()) {
	ch := make(Subscriber, 100) // Buffer to prevent blocking

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	unsubscribe := func() {
		s.subMu.Lock()
		delete(s.subscribers, ch)
		s.subMu.Unlock()
		close(ch)
	}

	return ch, unsubscribe
}
