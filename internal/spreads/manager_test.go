package spreads

import (
	"database/sql"
	"testing"

	"github.com/simorakkaus/tarologist/internal/cache"
	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}
	return db
}

func setupTestCache(t *testing.T) *cache.Store {
	store, err := cache.Open(":memory:")
	if err != nil {
		t.Fatal("Failed to open test cache:", err)
	}
	return store
}

func TestLoadSpreadsFromStore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	spread := models.Spread{
		ID:            "spread-custom",
		Name:          "Свой расклад",
		NumberOfCards: 2,
		Positions: []models.SpreadPosition{
			{ID: "p2", Name: "Второй", Order: 2},
			{ID: "p1", Name: "Первый", Order: 1},
		},
		IsActive: true,
	}
	if err := database.CreateSpread(db, spread); err != nil {
		t.Fatal("Failed to create spread:", err)
	}

	m := NewManager(db, nil)
	loaded := m.LoadSpreads()

	if len(loaded) != 1 {
		t.Fatalf("Expected 1 spread from store, got %d", len(loaded))
	}
	if loaded[0].ID != "spread-custom" {
		t.Errorf("Expected 'spread-custom', got %s", loaded[0].ID)
	}
	if loaded[0].Positions[0].ID != "p1" {
		t.Errorf("Expected positions sorted by order, got %s first", loaded[0].Positions[0].ID)
	}
	if m.IsLoading() {
		t.Error("Expected loading flag cleared after load")
	}
	if m.LastError() != "" {
		t.Errorf("Expected no load error, got %s", m.LastError())
	}
}

func TestEmptyStoreFallsBackToBundled(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	m := NewManager(db, nil)
	loaded := m.LoadSpreads()

	if len(loaded) != 3 {
		t.Fatalf("Expected 3 bundled spreads, got %d", len(loaded))
	}
	if m.LastError() != "" {
		t.Errorf("Bundled fallback is not an error state, got %s", m.LastError())
	}

	spread, ok := m.SpreadByID("spread_three_card")
	if !ok {
		t.Fatal("Expected bundled three-card spread")
	}
	if len(spread.Positions) != 3 {
		t.Fatalf("Expected 3 positions, got %d", len(spread.Positions))
	}
	for i, want := range []string{"Прошлое", "Настоящее", "Будущее"} {
		if spread.Positions[i].Name != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, spread.Positions[i].Name)
		}
	}

	celtic, ok := m.SpreadByID("spread_celtic_cross")
	if !ok {
		t.Fatal("Expected bundled celtic cross spread")
	}
	if len(celtic.Positions) != 10 {
		t.Errorf("Expected 10 positions, got %d", len(celtic.Positions))
	}
}

func TestStoreFailureFallsBackToBundled(t *testing.T) {
	db := setupTestDB(t)
	db.Close() // queries now fail

	m := NewManager(db, nil)
	loaded := m.LoadSpreads()

	if len(loaded) != 3 {
		t.Fatalf("Expected bundled spreads on store failure, got %d", len(loaded))
	}
	if m.LastError() != "" {
		t.Errorf("Bundled fallback should succeed silently, got %s", m.LastError())
	}
}

func TestSuccessfulLoadRefreshesCache(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	spread := models.Spread{
		ID:            "spread-cacheme",
		Name:          "Кэшируемый",
		NumberOfCards: 1,
		Positions:     []models.SpreadPosition{{ID: "p1", Name: "Одна", Order: 1}},
		IsActive:      true,
	}
	if err := database.CreateSpread(db, spread); err != nil {
		t.Fatal("Failed to create spread:", err)
	}

	store := setupTestCache(t)
	defer store.Close()

	m := NewManager(db, store)
	m.LoadSpreads()

	value, ok, err := store.Get("cachedSpreads")
	if err != nil {
		t.Fatal("Failed to read cache:", err)
	}
	if !ok || len(value) == 0 {
		t.Error("Expected spreads written to cache after a store load")
	}
}

func TestSpreadByIDMiss(t *testing.T) {
	m := NewManager(nil, nil)
	if _, ok := m.SpreadByID("anything"); ok {
		t.Error("Expected lookup miss before any load")
	}
}
