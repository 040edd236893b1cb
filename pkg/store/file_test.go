package store

import (
	"os"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	if _, ok := s.Get("token"); ok {
		t.Fatalf("expected missing key before Set")
	}
	if err := s.Set("token", "abc123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := s.Get("token")
	if !ok || got != "abc123" {
		t.Fatalf("get after set = %q, %v", got, ok)
	}
	if err := s.Remove("token"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Get("token"); ok {
		t.Fatalf("expected key gone after Remove")
	}
	if err := s.Remove("token"); err != nil {
		t.Fatalf("removing absent key should not fail: %v", err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	if err := NewFileStore(dir).Set("userId", "42"); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened := NewFileStore(dir)
	got, ok := reopened.Get("userId")
	if !ok || got != "42" {
		t.Fatalf("value did not survive reopen: %q, %v", got, ok)
	}
}

func TestFileStoreRejectsEmptyKey(t *testing.T) {
	s := NewFileStore(t.TempDir())
	if err := s.Set("  ", "x"); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	if err := s.Set("../escape", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "___escape.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected single sanitized entry, got %v", names)
	}
	got, ok := s.Get("../escape")
	if !ok || got != "v" {
		t.Fatalf("sanitized key not readable back: %q, %v", got, ok)
	}
}
