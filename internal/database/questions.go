package database

import (
	"database/sql"
	"fmt"

	"github.com/simorakkaus/tarologist/internal/models"
)

func CreateQuestion(db *sql.DB, question models.Question) error {
	// The referenced category must exist and be active; an unapproved
	// submission into a dead category is never surfaced to moderation.
	category, err := GetQuestionCategory(db, question.CategoryID)
	if err != nil {
		return err
	}
	if !category.IsActive {
		return ErrCategoryNotFound
	}

	query := `
		INSERT INTO questions (id, category_id, text, is_approved, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query,
		question.ID,
		question.CategoryID,
		question.Text,
		question.IsApproved,
		question.IsActive,
		question.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

// GetApprovedQuestions returns the questions clients may browse: active and
// approved, nothing else.
func GetApprovedQuestions(db *sql.DB) ([]models.Question, error) {
	query := `
		SELECT id, category_id, text, is_approved, is_active, created_at
		FROM questions
		WHERE is_active = true AND is_approved = true
		ORDER BY created_at
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var question models.Question
		err := rows.Scan(
			&question.ID,
			&question.CategoryID,
			&question.Text,
			&question.IsApproved,
			&question.IsActive,
			&question.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// GetPendingQuestions returns the moderation queue: active questions that
// have not been approved yet.
func GetPendingQuestions(db *sql.DB) ([]models.Question, error) {
	query := `
		SELECT id, category_id, text, is_approved, is_active, created_at
		FROM questions
		WHERE is_active = true AND is_approved = false
		ORDER BY created_at
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var question models.Question
		err := rows.Scan(
			&question.ID,
			&question.CategoryID,
			&question.Text,
			&question.IsApproved,
			&question.IsActive,
			&question.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending questions: %w", err)
	}

	return questions, nil
}

func SetQuestionApproved(db *sql.DB, questionID string, approved bool) error {
	result, err := db.Exec("UPDATE questions SET is_approved = ? WHERE id = ?", approved, questionID)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check question update: %w", err)
	}
	if rows == 0 {
		return ErrQuestionNotFound
	}

	return nil
}

func SetQuestionActive(db *sql.DB, questionID string, active bool) error {
	result, err := db.Exec("UPDATE questions SET is_active = ? WHERE id = ?", active, questionID)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check question update: %w", err)
	}
	if rows == 0 {
		return ErrQuestionNotFound
	}

	return nil
}
