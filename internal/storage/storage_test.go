package storage

import (
	"os"
	"path/filepath"
	"testing"
)

// kvContract exercises the behaviour every KV backend must share.
func kvContract(t *testing.T, kv KV) {
	t.Helper()

	// Absent key.
	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	// Set then get.
	if err := kv.Set("k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := kv.Get("k")
	if err != nil || !ok || v != "v1" {
		t.Errorf("Get(k) = %q ok=%v err=%v, want v1", v, ok, err)
	}

	// Last writer wins.
	if err := kv.Set("k", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _, _ = kv.Get("k")
	if v != "v2" {
		t.Errorf("Get(k) after overwrite = %q, want v2", v)
	}

	// Delete is idempotent.
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Error("Get(k) after delete: key still present")
	}
}

func TestMemoryKV(t *testing.T) {
	kvContract(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	kv, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	kvContract(t, kv)
}

func TestFileKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")

	kv, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	if err := kv.Set("broker_user", `{"id":"1"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	v, ok, err := reopened.Get("broker_user")
	if err != nil || !ok || v != `{"id":"1"}` {
		t.Errorf("Get after reopen = %q ok=%v err=%v, want persisted value", v, ok, err)
	}
}

func TestFileKVCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileKV(path); err == nil {
		t.Error("NewFileKV on corrupt file: expected error")
	}
}

func TestSQLiteKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	defer kv.Close()
	kvContract(t, kv)
}
