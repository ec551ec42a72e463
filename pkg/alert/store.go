package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of records kept before the oldest are evicted.
const DefaultCapacity = 100

// Store is the in-memory alert history, newest first.
// History lives for the process lifetime only.
type Store struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
}

// NewStore creates a store holding at most capacity records.
// A non-positive capacity falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}
}

// Add prepends a record and evicts the oldest entries past capacity.
// An empty ID is replaced with a time-ordered UUID.
func (s *Store) Add(r Record) Record {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, Record{})
	copy(s.records[1:], s.records)
	s.records[0] = r

	if len(s.records) > s.capacity {
		s.records = s.records[:s.capacity]
	}
	return r
}

// List returns a copy of all records, newest first.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// UnreadCount returns the number of unread records.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.records {
		if !r.Read {
			n++
		}
	}
	return n
}

// MarkRead marks one record read. Unknown ids are ignored.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Read = true
			return
		}
	}
}

// MarkAllRead marks every record read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		s.records[i].Read = true
	}
}

// Delete removes a record. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return
		}
	}
}

// ClearAll removes every record.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// ByKind returns the records of one kind, newest first.
func (s *Store) ByKind(kind Kind) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Recent returns the records created after since, newest first.
func (s *Store) Recent(since time.Time) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if r.CreatedAt.After(since) {
			out = append(out, r)
		}
	}
	return out
}

// newID returns a UUIDv7, which embeds the creation time.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
