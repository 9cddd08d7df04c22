// Package blob stores synthesized reply audio between a turn response
// and the client's follow-up fetch.
package blob

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type object struct {
	data        []byte
	contentType string
	storedAt    time.Time
}

// Store is an in-memory blob store with bounded lifetime. It replaces
// a temp-directory hand-off so concurrent turns cannot race on file
// names or cleanup.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*object
}

// NewStore creates an empty blob store.
func NewStore() *Store {
	return &Store{objects: make(map[string]*object)}
}

// Put stores data under a fresh collision-resistant name with the
// given extension and returns the name.
func (s *Store) Put(data []byte, contentType, ext string) string {
	name := "response_" + uuid.NewString() + "." + strings.TrimPrefix(ext, ".")
	s.mu.Lock()
	s.objects[name] = &object{
		data:        data,
		contentType: contentType,
		storedAt:    time.Now(),
	}
	s.mu.Unlock()
	return name
}

// Get returns the stored bytes and content type, or ok=false when the
// name is unknown or already evicted.
func (s *Store) Get(name string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}

// EvictOlder drops blobs stored before now-ttl and returns the count.
func (s *Store) EvictOlder(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for name, obj := range s.objects {
		if obj.storedAt.Before(cutoff) {
			delete(s.objects, name)
			evicted++
		}
	}
	return evicted
}

// Janitor sweeps expired blobs on the given interval until ctx ends.
func (s *Store) Janitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictOlder(ttl)
		}
	}
}
