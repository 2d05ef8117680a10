package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	user := &models.User{}
	var activatedAt sql.NullTime
	query := `
		SELECT id, login, pseudo_email, password_hash, COALESCE(is_admin, false),
		       COALESCE(is_disabled, false), COALESCE(is_subscribed, false),
		       subscription_activated_at, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	err := db.QueryRow(query, userID).Scan(
		&user.ID,
		&user.Login,
		&user.PseudoEmail,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsDisabled,
		&user.IsSubscribed,
		&activatedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if activatedAt.Valid {
		user.SubscriptionActivatedAt = &activatedAt.Time
	}

	return user, nil
}

func CreateUser(db *sql.DB, login, pseudoEmail, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// First user becomes admin and takes over moderation duties.
	var userCount int
	err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	isAdmin := userCount == 0
	userID := uuid.NewString()

	query := `
		INSERT INTO users (id, login, pseudo_email, password_hash, is_admin)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, userID, login, pseudoEmail, string(hashedPassword), isAdmin)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := &models.User{
		ID:           userID,
		Login:        login,
		PseudoEmail:  pseudoEmail,
		PasswordHash: string(hashedPassword),
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	return user, nil
}

func AuthenticateUser(db *sql.DB, pseudoEmail, password string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, login, pseudo_email, password_hash, COALESCE(is_admin, false),
		       COALESCE(is_disabled, false), created_at, updated_at
		FROM users
		WHERE pseudo_email = ?
	`

	err := db.QueryRow(query, pseudoEmail).Scan(
		&user.ID,
		&user.Login,
		&user.PseudoEmail,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsDisabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if user.IsDisabled {
		return nil, ErrUserDisabled
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

func CreateAuthSession(db *sql.DB, userID string, sessionDuration time.Duration) (*models.AuthSession, error) {
	token := uuid.NewString()
	expiresAt := time.Now().Add(sessionDuration)

	query := `
		INSERT INTO auth_sessions (token, user_id, expires_at)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, token, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth session: %w", err)
	}

	session := &models.AuthSession{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	return session, nil
}

// ValidateAuthSession resolves a token to its user. Expired tokens are
// deleted on sight; disabled users fail validation even with a live token.
func ValidateAuthSession(db *sql.DB, token string) (*models.User, error) {
	var userID string
	var expiresAt time.Time
	query := `
		SELECT user_id, expires_at
		FROM auth_sessions
		WHERE token = ?
	`

	err := db.QueryRow(query, token).Scan(&userID, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query auth session: %w", err)
	}

	if time.Now().After(expiresAt) {
		_, _ = db.Exec("DELETE FROM auth_sessions WHERE token = ?", token)
		return nil, ErrSessionExpired
	}

	user, err := GetUserByID(db, userID)
	if err != nil {
		return nil, err
	}

	if user.IsDisabled {
		return nil, ErrUserDisabled
	}

	return user, nil
}

func DeleteAuthSession(db *sql.DB, token string) error {
	_, err := db.Exec("DELETE FROM auth_sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("failed to delete auth session: %w", err)
	}
	return nil
}

func DeleteUserAuthSessions(db *sql.DB, userID string) error {
	_, err := db.Exec("DELETE FROM auth_sessions WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete user auth sessions: %w", err)
	}
	return nil
}

// SetSubscription toggles the subscription flag as a partial update so other
// user fields written concurrently are untouched.
func SetSubscription(db *sql.DB, userID string, active bool) error {
	var query string
	if active {
		query = `
			UPDATE users
			SET is_subscribed = true, subscription_activated_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
	} else {
		query = `
			UPDATE users
			SET is_subscribed = false, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
	}

	result, err := db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check subscription update: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func SetUserDisabled(db *sql.DB, userID string, disabled bool) error {
	result, err := db.Exec("UPDATE users SET is_disabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", disabled, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check user update: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
