package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/simorakkaus/tarologist/internal/models"
)

func CreateSpread(db *sql.DB, spread models.Spread) error {
	positions, err := json.Marshal(spread.Positions)
	if err != nil {
		return fmt.Errorf("failed to encode spread positions: %w", err)
	}

	query := `
		INSERT INTO spreads (id, name, description, number_of_cards, positions, image_name, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query,
		spread.ID,
		spread.Name,
		spread.Description,
		spread.NumberOfCards,
		string(positions),
		spread.ImageName,
		spread.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create spread: %w", err)
	}

	return nil
}

// GetActiveSpreads returns active spreads with positions sorted by order
// ascending. Rows whose positions payload does not decode are dropped; the
// second return value is the dropped-row count so callers can log it instead
// of the result list silently shrinking.
func GetActiveSpreads(db *sql.DB) ([]models.Spread, int, error) {
	query := `
		SELECT id, name, description, number_of_cards, positions, COALESCE(image_name, ''), is_active
		FROM spreads
		WHERE is_active = true
		ORDER BY number_of_cards, name
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query spreads: %w", err)
	}
	defer rows.Close()

	var spreads []models.Spread
	dropped := 0
	for rows.Next() {
		var spread models.Spread
		var positionsJSON string
		err := rows.Scan(
			&spread.ID,
			&spread.Name,
			&spread.Description,
			&spread.NumberOfCards,
			&positionsJSON,
			&spread.ImageName,
			&spread.IsActive,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan spread: %w", err)
		}

		if err := decodeSpreadPositions(positionsJSON, &spread); err != nil {
			dropped++
			continue
		}

		spreads = append(spreads, spread)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating spreads: %w", err)
	}

	return spreads, dropped, nil
}

func decodeSpreadPositions(positionsJSON string, spread *models.Spread) error {
	var positions []models.SpreadPosition
	if err := json.Unmarshal([]byte(positionsJSON), &positions); err != nil {
		return fmt.Errorf("failed to decode spread positions: %w", err)
	}
	if len(positions) == 0 {
		return fmt.Errorf("spread %s has no positions", spread.ID)
	}

	for _, p := range positions {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("spread %s has a malformed position", spread.ID)
		}
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Order < positions[j].Order
	})

	spread.Positions = positions
	return nil
}
