package blob

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestPutGet(t *testing.T) {
	s := NewStore()
	name := s.Put([]byte("mp3 bytes"), "audio/mpeg", "mp3")

	if !strings.HasPrefix(name, "response_") || !strings.HasSuffix(name, ".mp3") {
		t.Fatalf("unexpected blob name %q", name)
	}

	data, contentType, ok := s.Get(name)
	if !ok {
		t.Fatal("blob not found")
	}
	if contentType != "audio/mpeg" {
		t.Fatalf("expected audio/mpeg, got %q", contentType)
	}
	if !bytes.Equal(data, []byte("mp3 bytes")) {
		t.Fatal("payload not preserved")
	}
}

func TestNamesDoNotCollide(t *testing.T) {
	s := NewStore()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := s.Put([]byte("x"), "audio/mpeg", "mp3")
		if seen[name] {
			t.Fatalf("name %q issued twice", name)
		}
		seen[name] = true
	}
}

func TestGetUnknown(t *testing.T) {
	s := NewStore()
	if _, _, ok := s.Get("response_missing.mp3"); ok {
		t.Fatal("expected not-found for unknown name")
	}
}

func TestEvictOlder(t *testing.T) {
	s := NewStore()
	old := s.Put([]byte("old"), "audio/mpeg", "mp3")
	fresh := s.Put([]byte("fresh"), "audio/mpeg", "mp3")

	s.mu.Lock()
	s.objects[old].storedAt = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	if evicted := s.EvictOlder(10 * time.Minute); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if _, _, ok := s.Get(old); ok {
		t.Fatal("expired blob survived eviction")
	}
	if _, _, ok := s.Get(fresh); !ok {
		t.Fatal("fresh blob was evicted")
	}
}
