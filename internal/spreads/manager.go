package spreads

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/simorakkaus/tarologist/internal/cache"
	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/logger"
	"github.com/simorakkaus/tarologist/internal/models"
)

//go:embed data/default_spreads.json
var spreadFS embed.FS

const cacheKey = "cachedSpreads"

// Manager loads active spread definitions, store-first with a bundled
// fallback. Loaded spreads are immutable for the duration of a reading.
type Manager struct {
	db    *sql.DB
	cache *cache.Store

	mu      sync.RWMutex
	spreads []models.Spread
	loading bool
	lastErr string
}

func NewManager(db *sql.DB, cacheStore *cache.Store) *Manager {
	return &Manager{db: db, cache: cacheStore}
}

// LoadSpreads queries the store for active spreads; on error or an empty
// usable result it falls back to the bundled defaults. The error message
// state is set only when both sources fail.
func (m *Manager) LoadSpreads() []models.Spread {
	m.mu.Lock()
	m.loading = true
	m.lastErr = ""
	m.mu.Unlock()

	loaded, dropped, err := database.GetActiveSpreads(m.db)
	if err != nil {
		logger.Warn("Failed to load spreads from store, using bundled defaults", "error", err)
		return m.loadBundled()
	}
	if dropped > 0 {
		logger.Warn("Dropped malformed spread documents", "count", dropped)
	}

	if len(loaded) == 0 {
		return m.loadBundled()
	}

	for i := range loaded {
		warnOnPositionMismatch(loaded[i])
	}

	m.saveToCache(loaded)

	m.mu.Lock()
	m.spreads = loaded
	m.loading = false
	m.mu.Unlock()

	return loaded
}

func (m *Manager) loadBundled() []models.Spread {
	raw, err := spreadFS.ReadFile("data/default_spreads.json")
	if err != nil {
		m.fail(fmt.Sprintf("failed to read bundled spreads: %v", err))
		return nil
	}

	var bundled []models.Spread
	if err := json.Unmarshal(raw, &bundled); err != nil {
		m.fail(fmt.Sprintf("failed to parse bundled spreads: %v", err))
		return nil
	}

	for i := range bundled {
		sort.SliceStable(bundled[i].Positions, func(a, b int) bool {
			return bundled[i].Positions[a].Order < bundled[i].Positions[b].Order
		})
		warnOnPositionMismatch(bundled[i])
	}

	m.mu.Lock()
	m.spreads = bundled
	m.loading = false
	m.mu.Unlock()

	return bundled
}

func (m *Manager) fail(msg string) {
	logger.Error("Failed to load spreads", "error", msg)
	m.mu.Lock()
	m.lastErr = msg
	m.loading = false
	m.mu.Unlock()
}

func (m *Manager) saveToCache(spreads []models.Spread) {
	if m.cache == nil {
		return
	}
	encoded, err := json.Marshal(spreads)
	if err != nil {
		logger.Warn("Failed to encode spreads for cache", "error", err)
		return
	}
	if err := m.cache.Set(cacheKey, encoded); err != nil {
		logger.Warn("Failed to cache spreads", "error", err)
	}
}

// Spreads returns the most recently loaded list.
func (m *Manager) Spreads() []models.Spread {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.spreads
}

// SpreadByID finds a loaded spread by id.
func (m *Manager) SpreadByID(id string) (models.Spread, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.spreads {
		if s.ID == id {
			return s, true
		}
	}
	return models.Spread{}, false
}

// IsLoading reports whether a load is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// LastError returns the message set when both the store and the bundled
// defaults failed, or empty.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// The data sources are supposed to keep numberOfCards equal to the number
// of positions. Mismatches are tolerated; the position list drives the draw.
func warnOnPositionMismatch(s models.Spread) {
	if len(s.Positions) != s.NumberOfCards {
		logger.Warn("Spread position count differs from numberOfCards",
			"spread_id", s.ID,
			"positions", len(s.Positions),
			"number_of_cards", s.NumberOfCards)
	}
}
