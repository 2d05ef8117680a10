package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/simorakkaus/tarologist/internal/models"
)

// SaveTarotSession writes a session document keyed by its client-generated
// id. The write is a full-document upsert, so retrying a save with the same
// id is idempotent.
func SaveTarotSession(db *sql.DB, userID string, session models.TarotSession) error {
	drawnCards, err := json.Marshal(session.DrawnCards)
	if err != nil {
		return fmt.Errorf("failed to encode drawn cards: %w", err)
	}

	query := `
		INSERT INTO tarot_sessions (
			id, user_id, client_name, client_age, date, spread_id, spread_name,
			question_category_id, question_category_name, question_id, question_text,
			drawn_cards, interpretation, is_sent
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_name = excluded.client_name,
			client_age = excluded.client_age,
			date = excluded.date,
			spread_id = excluded.spread_id,
			spread_name = excluded.spread_name,
			question_category_id = excluded.question_category_id,
			question_category_name = excluded.question_category_name,
			question_id = excluded.question_id,
			question_text = excluded.question_text,
			drawn_cards = excluded.drawn_cards,
			interpretation = excluded.interpretation,
			is_sent = excluded.is_sent
		WHERE user_id = excluded.user_id
	`

	_, err = db.Exec(query,
		session.ID,
		userID,
		session.ClientName,
		session.ClientAge,
		session.Date,
		session.SpreadID,
		session.SpreadName,
		session.QuestionCategoryID,
		session.QuestionCategoryName,
		session.QuestionID,
		session.QuestionText,
		string(drawnCards),
		session.Interpretation,
		session.IsSent,
	)
	if err != nil {
		return fmt.Errorf("failed to save tarot session: %w", err)
	}

	return nil
}

// GetTarotSessions returns the user's sessions ordered by date descending.
func GetTarotSessions(db *sql.DB, userID string) ([]models.TarotSession, error) {
	query := `
		SELECT id, client_name, COALESCE(client_age, ''), date, spread_id, spread_name,
		       COALESCE(question_category_id, ''), COALESCE(question_category_name, ''),
		       COALESCE(question_id, ''), COALESCE(question_text, ''),
		       drawn_cards, COALESCE(interpretation, ''), is_sent
		FROM tarot_sessions
		WHERE user_id = ?
		ORDER BY date DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tarot sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.TarotSession
	for rows.Next() {
		var session models.TarotSession
		var drawnCardsJSON string
		err := rows.Scan(
			&session.ID,
			&session.ClientName,
			&session.ClientAge,
			&session.Date,
			&session.SpreadID,
			&session.SpreadName,
			&session.QuestionCategoryID,
			&session.QuestionCategoryName,
			&session.QuestionID,
			&session.QuestionText,
			&drawnCardsJSON,
			&session.Interpretation,
			&session.IsSent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tarot session: %w", err)
		}

		if err := json.Unmarshal([]byte(drawnCardsJSON), &session.DrawnCards); err != nil {
			return nil, fmt.Errorf("failed to decode drawn cards for session %s: %w", session.ID, err)
		}

		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tarot sessions: %w", err)
	}

	return sessions, nil
}

// UpdateTarotSession performs a full-document replace of an existing session.
// Callers must supply complete session state; omitted fields are overwritten.
func UpdateTarotSession(db *sql.DB, userID string, session models.TarotSession) error {
	drawnCards, err := json.Marshal(session.DrawnCards)
	if err != nil {
		return fmt.Errorf("failed to encode drawn cards: %w", err)
	}

	query := `
		UPDATE tarot_sessions
		SET client_name = ?, client_age = ?, date = ?, spread_id = ?, spread_name = ?,
		    question_category_id = ?, question_category_name = ?, question_id = ?,
		    question_text = ?, drawn_cards = ?, interpretation = ?, is_sent = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := db.Exec(query,
		session.ClientName,
		session.ClientAge,
		session.Date,
		session.SpreadID,
		session.SpreadName,
		session.QuestionCategoryID,
		session.QuestionCategoryName,
		session.QuestionID,
		session.QuestionText,
		string(drawnCards),
		session.Interpretation,
		session.IsSent,
		session.ID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tarot session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check tarot session update: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// MarkTarotSessionSent flips the is_sent flag as a partial update, leaving
// every other field untouched.
func MarkTarotSessionSent(db *sql.DB, userID, sessionID string) error {
	result, err := db.Exec(
		"UPDATE tarot_sessions SET is_sent = true WHERE id = ? AND user_id = ?",
		sessionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark tarot session sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check tarot session update: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// DeleteTarotSession removes a session document. Deleting an id that is
// already gone is not an error.
func DeleteTarotSession(db *sql.DB, userID, sessionID string) error {
	_, err := db.Exec("DELETE FROM tarot_sessions WHERE id = ? AND user_id = ?", sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tarot session: %w", err)
	}
	return nil
}
