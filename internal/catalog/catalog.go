package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/simorakkaus/tarologist/internal/models"
)

//go:embed data/tarot_cards.json
var cardFS embed.FS

// Catalog holds the full 78-card deck. The data is bundled and never changes
// at runtime, so a catalog is loaded once and shared read-only.
type Catalog struct {
	cards  []models.TarotCard
	byID   map[string]models.TarotCard
	byName map[string]models.TarotCard
}

// Load decodes the bundled card set. A decode failure is returned to the
// caller; there is no fallback because this data ships with the binary.
func Load() (*Catalog, error) {
	raw, err := cardFS.ReadFile("data/tarot_cards.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled cards: %w", err)
	}

	var cards []models.TarotCard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("failed to parse bundled cards: %w", err)
	}

	c := &Catalog{
		cards:  cards,
		byID:   make(map[string]models.TarotCard, len(cards)),
		byName: make(map[string]models.TarotCard, len(cards)),
	}
	for _, card := range cards {
		c.byID[card.ID] = card
		c.byName[strings.ToLower(card.NameEn)] = card
	}

	return c, nil
}

// Cards returns the full deck in catalog order.
func (c *Catalog) Cards() []models.TarotCard {
	return c.cards
}

func (c *Catalog) Count() int {
	return len(c.cards)
}

// CardByID looks a card up by its stable id.
func (c *Catalog) CardByID(id string) (models.TarotCard, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// CardByEnglishName looks a card up by its English name, case-insensitively.
func (c *Catalog) CardByEnglishName(name string) (models.TarotCard, bool) {
	card, ok := c.byName[strings.ToLower(name)]
	return card, ok
}
