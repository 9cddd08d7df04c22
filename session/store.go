// Package session holds per-conversation state for both channels.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bigsmile-dental/denty/llm"
)

// Session is one conversation's mutable state. A turn must hold the
// session lock from input to committed reply so concurrent submissions
// for the same id cannot interleave history mutations.
type Session struct {
	ID         string
	History    []llm.ChatMessage
	LastActive time.Time

	mu sync.Mutex
}

// Lock acquires the per-session turn lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records activity for idle eviction.
func (s *Session) Touch() { s.LastActive = time.Now() }

// Store is the conversation store contract the engines depend on.
type Store interface {
	Create(systemPrompt string) *Session
	Attach(id, systemPrompt string) *Session
	Get(id string) (*Session, bool)
	Delete(id string) bool
}

// MemoryStore is an in-process Store. Voice sessions are created with
// random ids; call conversations attach under the carrier's call id.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create makes a session under a fresh unguessable id and seeds its
// history with the system instruction.
func (m *MemoryStore) Create(systemPrompt string) *Session {
	// uuid v4 is drawn from crypto/rand, so ids are not forgeable.
	return m.Attach(uuid.NewString(), systemPrompt)
}

// Attach makes a session under a caller-supplied id, replacing any
// previous conversation with the same id.
func (m *MemoryStore) Attach(id, systemPrompt string) *Session {
	sess := &Session{
		ID:         id,
		History:    []llm.ChatMessage{{Role: "system", Content: systemPrompt}},
		LastActive: time.Now(),
	}
	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	return sess
}

// Get looks up a session by id.
func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Delete removes a session. It reports false when the id is unknown,
// so repeated resets stay idempotent.
func (m *MemoryStore) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictIdle removes sessions idle longer than ttl and returns how many
// were dropped.
func (m *MemoryStore) EvictIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, sess := range m.sessions {
		if sess.LastActive.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Janitor sweeps idle sessions on the given interval until ctx ends.
func (m *MemoryStore) Janitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(ttl)
		}
	}
}
