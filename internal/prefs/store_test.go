package prefs

import (
	"context"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreWithPath(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("NewStoreWithPath() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetMissing(t *testing.T) {
	store := testStore(t)

	value, err := store.Get(context.Background(), KeyLanguage)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "" {
		t.Errorf("Get(missing) = %q, want empty string", value)
	}
}

func TestStore_SetGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, KeyLanguage, "en"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, err := store.Get(ctx, KeyLanguage)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "en" {
		t.Errorf("Get() = %q, want en", value)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, KeyLanguage, "en"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, KeyLanguage, "zh"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, err := store.Get(ctx, KeyLanguage)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "zh" {
		t.Errorf("Get() = %q, want zh after overwrite", value)
	}
}

func TestStore_Delete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, KeyLanguage, "en"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Delete(ctx, KeyLanguage); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	value, err := store.Get(ctx, KeyLanguage)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "" {
		t.Errorf("Get() = %q, want empty after delete", value)
	}
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	store, err := NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStoreWithPath() error = %v", err)
	}
	if err := store.Set(ctx, KeyLanguage, "en"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store.Close()

	reopened, err := NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStoreWithPath() reopen error = %v", err)
	}
	defer reopened.Close()

	value, err := reopened.Get(ctx, KeyLanguage)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "en" {
		t.Errorf("Get() = %q, want en after reopen", value)
	}
}
