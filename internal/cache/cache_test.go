package cache

import (
	"bytes"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatal("Failed to open test cache:", err)
	}
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	value, ok, err := store.Get("cachedSpreads")
	if err != nil {
		t.Fatal("Failed to read missing key:", err)
	}
	if ok {
		t.Error("Expected missing key to report not found")
	}
	if value != nil {
		t.Errorf("Expected nil value for missing key, got %v", value)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	payload := []byte(`[{"id":"cat-love","name":"Любовь"}]`)
	if err := store.Set("cachedQuestionCategories", payload); err != nil {
		t.Fatal("Failed to write key:", err)
	}

	value, ok, err := store.Get("cachedQuestionCategories")
	if err != nil {
		t.Fatal("Failed to read key:", err)
	}
	if !ok {
		t.Fatal("Expected key to be present")
	}
	if !bytes.Equal(value, payload) {
		t.Errorf("Expected %s, got %s", payload, value)
	}
}

func TestSetOverwrites(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	if err := store.Set("cachedQuestions", []byte("old")); err != nil {
		t.Fatal("Failed to write key:", err)
	}
	if err := store.Set("cachedQuestions", []byte("new")); err != nil {
		t.Fatal("Failed to overwrite key:", err)
	}

	value, ok, err := store.Get("cachedQuestions")
	if err != nil || !ok {
		t.Fatal("Failed to read key back:", err)
	}
	if string(value) != "new" {
		t.Errorf("Expected overwritten value 'new', got %s", value)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	if err := store.Set("cachedSpreads", []byte("spreads")); err != nil {
		t.Fatal("Failed to write key:", err)
	}
	if err := store.Set("cachedQuestions", []byte("questions")); err != nil {
		t.Fatal("Failed to write key:", err)
	}

	value, ok, err := store.Get("cachedSpreads")
	if err != nil || !ok {
		t.Fatal("Failed to read key back:", err)
	}
	if string(value) != "spreads" {
		t.Errorf("Expected 'spreads', got %s", value)
	}
}
