package catalog

import (
	"testing"
)

func TestLoadFullDeck(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatal("Failed to load catalog:", err)
	}

	if c.Count() != 78 {
		t.Errorf("Expected 78 cards, got %d", c.Count())
	}

	majors := 0
	suits := make(map[string]int)
	for _, card := range c.Cards() {
		if card.IsMajor {
			majors++
			if card.Suit != "" {
				t.Errorf("Major arcana %s should not carry a suit, got %s", card.ID, card.Suit)
			}
		} else {
			suits[card.Suit]++
		}
	}

	if majors != 22 {
		t.Errorf("Expected 22 major arcana, got %d", majors)
	}
	for _, suit := range []string{"wands", "cups", "swords", "pentacles"} {
		if suits[suit] != 14 {
			t.Errorf("Expected 14 cards in suit %s, got %d", suit, suits[suit])
		}
	}
}

func TestCardFieldsArePopulated(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatal("Failed to load catalog:", err)
	}

	seen := make(map[string]bool)
	for _, card := range c.Cards() {
		if card.ID == "" || card.NameEn == "" || card.NameRu == "" {
			t.Errorf("Card %+v is missing identity fields", card)
		}
		if card.MeaningLight == "" || card.MeaningShadow == "" {
			t.Errorf("Card %s is missing meanings", card.ID)
		}
		if seen[card.ID] {
			t.Errorf("Duplicate card id %s", card.ID)
		}
		seen[card.ID] = true
	}
}

func TestCardLookups(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatal("Failed to load catalog:", err)
	}

	card, ok := c.CardByID("major_00")
	if !ok {
		t.Fatal("Expected to find card major_00")
	}
	if card.NameEn != "The Fool" {
		t.Errorf("Expected 'The Fool', got %s", card.NameEn)
	}

	if _, ok := c.CardByID("no-such-card"); ok {
		t.Error("Expected lookup miss for unknown id")
	}

	// Name lookup is case-insensitive.
	byName, ok := c.CardByEnglishName("the fool")
	if !ok {
		t.Fatal("Expected to find card by lowercased English name")
	}
	if byName.ID != "major_00" {
		t.Errorf("Expected major_00, got %s", byName.ID)
	}
}
