package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Sentinel errors exposed so callers can map store failures onto the
// user-facing error taxonomy instead of string-matching.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrLoginTaken       = errors.New("login already in use")
	ErrUserDisabled     = errors.New("user is disabled")
	ErrSessionNotFound  = errors.New("auth session not found")
	ErrSessionExpired   = errors.New("auth session expired")
	ErrCategoryNotFound = errors.New("question category not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// Collection topics published on the bus after successful writes.
const (
	TopicQuestionCategories = "questionCategories"
	TopicQuestions          = "questions"
)

// SessionsTopic is the per-user topic for tarot session changes.
func SessionsTopic(userID string) string {
	return "users/" + userID + "/sessions"
}

func Initialize(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			login TEXT UNIQUE NOT NULL,
			pseudo_email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN DEFAULT FALSE,
			is_disabled BOOLEAN DEFAULT FALSE,
			is_subscribed BOOLEAN DEFAULT FALSE,
			subscription_activated_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS auth_sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS question_categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			is_active BOOLEAN DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL,
			text TEXT NOT NULL,
			is_approved BOOLEAN DEFAULT FALSE,
			is_active BOOLEAN DEFAULT TRUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (category_id) REFERENCES question_categories(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS spreads (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			number_of_cards INTEGER NOT NULL,
			positions TEXT NOT NULL,
			image_name TEXT,
			is_active BOOLEAN DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS tarot_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			client_name TEXT NOT NULL,
			client_age TEXT,
			date DATETIME NOT NULL,
			spread_id TEXT NOT NULL,
			spread_name TEXT NOT NULL,
			question_category_id TEXT,
			question_category_name TEXT,
			question_id TEXT,
			question_text TEXT,
			drawn_cards TEXT NOT NULL,
			interpretation TEXT,
			is_sent BOOLEAN DEFAULT FALSE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_sessions_user_id ON auth_sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_sessions_expires_at ON auth_sessions(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_category_id ON questions(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_flags ON questions(is_active, is_approved)`,
		`CREATE INDEX IF NOT EXISTS idx_tarot_sessions_user_id ON tarot_sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tarot_sessions_date ON tarot_sessions(user_id, date)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}
