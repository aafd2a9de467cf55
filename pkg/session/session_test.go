package session

import (
	"path/filepath"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	if err := store.SetToken("jwt-token"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	token, err := store.Token()
	if err != nil || token != "jwt-token" {
		t.Fatalf("expected token round trip, got %q (%v)", token, err)
	}

	if err := store.SetFlag(ConnectedKey("shopify"), true); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	connected, err := store.Flag(ConnectedKey("shopify"))
	if err != nil || !connected {
		t.Fatalf("expected connected flag, got %v (%v)", connected, err)
	}
	synced, _ := store.Flag(SyncedKey("shopify"))
	if synced {
		t.Fatalf("unset flags must read false")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	token, _ = store.Token()
	if token != "" {
		t.Fatalf("expected cleared token, got %q", token)
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.SetToken("jwt-token"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := store.SetFlag(SyncedKey("woocommerce"), true); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	token, err := reopened.Token()
	if err != nil || token != "jwt-token" {
		t.Fatalf("expected persisted token, got %q (%v)", token, err)
	}
	synced, err := reopened.Flag(SyncedKey("woocommerce"))
	if err != nil || !synced {
		t.Fatalf("expected persisted flag, got %v (%v)", synced, err)
	}
}

func TestFileStoreMissingFileReadsEmpty(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	token, err := store.Token()
	if err != nil || token != "" {
		t.Fatalf("expected empty state, got %q (%v)", token, err)
	}
}

func TestFileStoreClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.SetToken("jwt-token"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	token, err := store.Token()
	if err != nil || token != "" {
		t.Fatalf("expected empty state after clear, got %q (%v)", token, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear must be idempotent: %v", err)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatalf("expected error without path")
	}
}
