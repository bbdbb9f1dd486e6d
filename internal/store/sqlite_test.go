package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	dir := t.TempDir()
	b, err := NewSQLiteBackend(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSQLiteGetMissing(t *testing.T) {
	b := newTestBackend(t)
	v, found, err := b.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found || v != nil {
		t.Errorf("expected not found, got %q found=%v", v, found)
	}
}

func TestSQLiteSetOverwrites(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	if err := b.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := b.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("set again: %v", err)
	}
	v, found, err := b.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if string(v) != `{"a":2}` {
		t.Errorf("expected overwritten value, got %s", v)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "learnpath.db")

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := b.Set(ctx, DataKey, []byte("hello")); err != nil {
		t.Fatalf("set: %v", err)
	}
	b.Close()

	b2, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()
	v, found, _ := b2.Get(ctx, DataKey)
	if !found || string(v) != "hello" {
		t.Errorf("expected persisted value, got %q found=%v", v, found)
	}
	if b2.Path() != path {
		t.Errorf("Path() = %s, want %s", b2.Path(), path)
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}

	if _, found, _ := b.Get(ctx, DataKey); found {
		t.Fatal("expected missing key")
	}
	if err := b.Set(ctx, DataKey, []byte(`{"version":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, found, err := b.Get(ctx, DataKey)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if string(v) != `{"version":1}` {
		t.Errorf("got %s", v)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the data file, found %d entries", len(entries))
	}
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("LEARNPATH_TEST_REDIS")
	if addr == "" {
		t.Skip("LEARNPATH_TEST_REDIS not set")
	}
	ctx := context.Background()
	b, err := NewRedisBackend(ctx, addr, "learnpath-test:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer b.Close()

	if err := b.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, found, err := b.Get(ctx, "k")
	if err != nil || !found || string(v) != "v" {
		t.Errorf("get = %q found=%v err=%v", v, found, err)
	}
}
