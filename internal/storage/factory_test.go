package storage

import "testing"

func TestNewStoreDefaultsToMemory(t *testing.T) {
	store, err := NewStore("", "unused.db")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got=%T", store)
	}

	store, err = NewStore("memory", "unused.db")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got=%T", store)
	}
}

func TestNewStoreRejectsUnknownKind(t *testing.T) {
	if _, err := NewStore("cassandra", "unused.db"); err == nil {
		t.Fatal("expected error for unsupported store kind")
	}
}

func TestDefaultStoreKind(t *testing.T) {
	if got := DefaultStoreKind(); got != "memory" {
		t.Fatalf("expected memory default, got=%s", got)
	}
}

func TestCloseIfSupportedIgnoresMemoryStore(t *testing.T) {
	if err := CloseIfSupported(NewMemoryStore()); err != nil {
		t.Fatalf("close memory store: %v", err)
	}
}
