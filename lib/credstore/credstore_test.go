// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "credentials.age")
}

func TestSetGetRoundTrip(t *testing.T) {
	store := Open(testStorePath(t))
	if err := store.Set("openai", "sk-test-1234", "hunter2"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	key, err := store.Get("openai", "hunter2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if key != "sk-test-1234" {
		t.Errorf("got key %q, want %q", key, "sk-test-1234")
	}
}

func TestGetWrongPassphrase(t *testing.T) {
	store := Open(testStorePath(t))
	if err := store.Set("openai", "sk-test-1234", "correct"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := store.Get("openai", "incorrect")
	if !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("got %v, want ErrWrongPassphrase", err)
	}
}

func TestGetMissingProvider(t *testing.T) {
	store := Open(testStorePath(t))
	if err := store.Set("openai", "sk-test-1234", "pass"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := store.Get("deepgram", "pass")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetMissingFile(t *testing.T) {
	store := Open(testStorePath(t))
	_, err := store.Get("openai", "pass")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing file should act as empty store, got %v", err)
	}
}

func TestListSorted(t *testing.T) {
	store := Open(testStorePath(t))
	for provider, key := range map[string]string{
		"whisper":  "k1",
		"deepgram": "k2",
		"openai":   "k3",
	} {
		if err := store.Set(provider, key, "pass"); err != nil {
			t.Fatalf("Set %s: %v", provider, err)
		}
	}

	providers, err := store.List("pass")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"deepgram", "openai", "whisper"}
	if len(providers) != len(want) {
		t.Fatalf("got %d providers, want %d", len(providers), len(want))
	}
	for i, provider := range want {
		if providers[i] != provider {
			t.Errorf("providers[%d] = %q, want %q", i, providers[i], provider)
		}
	}
}

func TestDelete(t *testing.T) {
	store := Open(testStorePath(t))
	if err := store.Set("openai", "sk-test", "pass"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete("openai", "pass"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("openai", "pass"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v after delete, want ErrNotFound", err)
	}
	if err := store.Delete("openai", "pass"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestCorruptFile(t *testing.T) {
	path := testStorePath(t)
	if err := os.WriteFile(path, []byte("definitely not an age file"), 0600); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	_, err := Open(path).Get("openai", "pass")
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	if errors.Is(err, ErrWrongPassphrase) {
		t.Fatal("corruption misreported as wrong passphrase")
	}
}

func TestSetRejectsEmptyInputs(t *testing.T) {
	store := Open(testStorePath(t))
	if err := store.Set("", "key", "pass"); err == nil {
		t.Error("expected error for empty provider")
	}
	if err := store.Set("openai", "", "pass"); err == nil {
		t.Error("expected error for empty key")
	}
}
