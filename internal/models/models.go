package models

import (
	"time"
)

// User mirrors the identity provider's account record. The pseudo-email is
// derived from the login handle and only exists to satisfy the provider's
// credential format.
type User struct {
	ID                      string     `json:"id" db:"id"`
	Login                   string     `json:"login" db:"login"`
	PseudoEmail             string     `json:"pseudo_email" db:"pseudo_email"`
	PasswordHash            string     `json:"-" db:"password_hash"`
	IsAdmin                 bool       `json:"is_admin" db:"is_admin"`
	IsDisabled              bool       `json:"is_disabled" db:"is_disabled"`
	IsSubscribed            bool       `json:"is_subscribed" db:"is_subscribed"`
	SubscriptionActivatedAt *time.Time `json:"subscription_activated_at,omitempty" db:"subscription_activated_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

// AuthSession is an opaque bearer token tied to a user.
type AuthSession struct {
	Token     string    `json:"token" db:"token"`
	UserID    string    `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// QuestionCategory is administrator-managed and read-only to clients.
// Identity is by ID.
type QuestionCategory struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	IsActive    bool   `json:"isActive" db:"is_active"`
}

// Question is surfaced to clients only when both IsActive and IsApproved
// are set. User-submitted questions start unapproved.
type Question struct {
	ID         string    `json:"id" db:"id"`
	CategoryID string    `json:"categoryId" db:"category_id"`
	Text       string    `json:"text" db:"text"`
	IsApproved bool      `json:"isApproved" db:"is_approved"`
	IsActive   bool      `json:"isActive" db:"is_active"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// SpreadPosition is one named slot in a spread. Order defines both the draw
// sequence and the display order.
type SpreadPosition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// Spread is a tarot layout. Positions are kept sorted by Order ascending and
// the spread is immutable for the duration of a reading.
type Spread struct {
	ID            string           `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Description   string           `json:"description" db:"description"`
	NumberOfCards int              `json:"numberOfCards" db:"number_of_cards"`
	Positions     []SpreadPosition `json:"positions" db:"positions"`
	ImageName     string           `json:"imageName,omitempty" db:"image_name"`
	IsActive      bool             `json:"isActive" db:"is_active"`
}

// TarotCard is one of the 78 cards in the bundled catalog. Suit is empty for
// major arcana.
type TarotCard struct {
	ID            string `json:"id"`
	NameEn        string `json:"nameEn"`
	NameRu        string `json:"nameRu"`
	ImageName     string `json:"imageName"`
	Description   string `json:"description"`
	MeaningLight  string `json:"meaningLight"`
	MeaningShadow string `json:"meaningShadow"`
	IsMajor       bool   `json:"isMajor"`
	Suit          string `json:"suit,omitempty"`
}

// DrawnCard pairs a card with the position it was drawn into. It exists only
// while a reading is in progress; persisted sessions keep DrawnCardRecord.
type DrawnCard struct {
	Card       TarotCard      `json:"card"`
	Position   SpreadPosition `json:"position"`
	IsReversed bool           `json:"isReversed"`
}

// Meaning returns the meaning matching the card's orientation.
func (d DrawnCard) Meaning() string {
	if d.IsReversed {
		return d.Card.MeaningShadow
	}
	return d.Card.MeaningLight
}

// DrawnCardRecord is the flattened form of a DrawnCard stored inside a
// session document.
type DrawnCardRecord struct {
	CardID       string `json:"cardId"`
	PositionID   string `json:"positionId"`
	PositionName string `json:"positionName"`
	IsReversed   bool   `json:"isReversed"`
}

// TarotSession is one completed reading, owned by the user who created it.
// The ID is assigned once at creation and used as the document key, so
// retried writes are idempotent. Category and spread names are denormalized
// copies taken at save time.
type TarotSession struct {
	ID                   string            `json:"id" db:"id"`
	ClientName           string            `json:"clientName" db:"client_name"`
	ClientAge            string            `json:"clientAge,omitempty" db:"client_age"`
	Date                 time.Time         `json:"date" db:"date"`
	SpreadID             string            `json:"spreadId" db:"spread_id"`
	SpreadName           string            `json:"spreadName" db:"spread_name"`
	QuestionCategoryID   string            `json:"questionCategoryId,omitempty" db:"question_category_id"`
	QuestionCategoryName string            `json:"questionCategoryName,omitempty" db:"question_category_name"`
	QuestionID           string            `json:"questionId,omitempty" db:"question_id"`
	QuestionText         string            `json:"questionText,omitempty" db:"question_text"`
	DrawnCards           []DrawnCardRecord `json:"drawnCards" db:"drawn_cards"`
	Interpretation       string            `json:"interpretation,omitempty" db:"interpretation"`
	IsSent               bool              `json:"isSent" db:"is_sent"`
}
