package database

import (
	"database/sql"
	"fmt"

	"github.com/simorakkaus/tarologist/internal/models"
)

func CreateQuestionCategory(db *sql.DB, category models.QuestionCategory) error {
	query := `
		INSERT INTO question_categories (id, name, description, is_active)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, category.ID, category.Name, category.Description, category.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create question category: %w", err)
	}

	return nil
}

// GetActiveQuestionCategories returns every category with is_active set,
// the only view clients ever see.
func GetActiveQuestionCategories(db *sql.DB) ([]models.QuestionCategory, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), is_active
		FROM question_categories
		WHERE is_active = true
		ORDER BY name
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query question categories: %w", err)
	}
	defer rows.Close()

	var categories []models.QuestionCategory
	for rows.Next() {
		var category models.QuestionCategory
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question categories: %w", err)
	}

	return categories, nil
}

func GetQuestionCategory(db *sql.DB, categoryID string) (*models.QuestionCategory, error) {
	category := &models.QuestionCategory{}
	query := `
		SELECT id, name, COALESCE(description, ''), is_active
		FROM question_categories
		WHERE id = ?
	`

	err := db.QueryRow(query, categoryID).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to query question category: %w", err)
	}

	return category, nil
}

func SetQuestionCategoryActive(db *sql.DB, categoryID string, active bool) error {
	result, err := db.Exec("UPDATE question_categories SET is_active = ? WHERE id = ?", active, categoryID)
	if err != nil {
		return fmt.Errorf("failed to update question category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check question category update: %w", err)
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
