package reading

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simorakkaus/tarologist/internal/auth"
	"github.com/simorakkaus/tarologist/internal/bus"
	"github.com/simorakkaus/tarologist/internal/catalog"
	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/logger"
	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/google/uuid"
)

var (
	ErrEmptyCatalog      = errors.New("card catalog is empty")
	ErrNoPositions       = errors.New("spread has no positions")
	ErrCardCountMismatch = errors.New("drawn card count does not match spread positions")
	ErrSessionNotFound   = errors.New("session not found")
)

// RNG abstracts random number generation so draws are deterministic in tests.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Service orchestrates a reading: drawing cards into spread positions,
// generating an interpretation, and the session document lifecycle.
type Service struct {
	db          *sql.DB
	catalog     *catalog.Catalog
	interpreter Interpreter
	fallback    TemplateInterpreter
	rng         RNG
	bus         *bus.Bus
}

// NewService wires a reading service. interpreter may be nil, in which case
// the canned template is the only backend.
func NewService(db *sql.DB, cat *catalog.Catalog, interpreter Interpreter, rng RNG, b *bus.Bus) *Service {
	return &Service{
		db:          db,
		catalog:     cat,
		interpreter: interpreter,
		rng:         rng,
		bus:         b,
	}
}

// DrawCards draws one card per spread position in ascending order. Every
// draw picks uniformly from the full catalog, so the same card can land in
// several positions, and each card's orientation is an independent fair
// coin flip. Logically this is one synchronous batch draw; presenting it
// card by card is the caller's concern.
func (s *Service) DrawCards(spread models.Spread) ([]models.DrawnCard, error) {
	cards := s.catalog.Cards()
	if len(cards) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(spread.Positions) == 0 {
		return nil, ErrNoPositions
	}

	drawn := make([]models.DrawnCard, len(spread.Positions))
	for i, position := range spread.Positions {
		drawn[i] = models.DrawnCard{
			Card:       cards[s.rng.Intn(len(cards))],
			Position:   position,
			IsReversed: s.rng.Intn(2) == 1,
		}
	}

	return drawn, nil
}

// GenerateInterpretation produces the reading text for a completed draw.
// When the generative backend is unconfigured or fails, the canned template
// takes over so the reading always completes.
func (s *Service) GenerateInterpretation(ctx context.Context, in InterpretInput) (string, error) {
	if len(in.Cards) == 0 {
		return "", fmt.Errorf("no drawn cards to interpret")
	}

	if s.interpreter != nil {
		text, err := s.interpreter.Interpret(ctx, in)
		if err == nil {
			return text, nil
		}
		logger.Warn("Interpretation backend failed, using template", "error", err)
	}

	return s.fallback.Interpret(ctx, in)
}

// SaveReadingInput is everything a completed reading needs to become a
// persisted session document.
type SaveReadingInput struct {
	ClientName     string
	ClientAge      string
	Category       models.QuestionCategory
	Question       *models.Question
	CustomQuestion string
	Spread         models.Spread
	DrawnCards     []models.DrawnCard
	Interpretation string
}

// SaveReading assembles a session from a completed reading and writes it as
// one document under the user's sessions. The session id is generated here
// and returned; the write either lands whole or fails whole. An empty
// userID fails with ErrUnauthenticated before anything is written.
func (s *Service) SaveReading(userID string, in SaveReadingInput) (string, error) {
	if userID == "" {
		return "", auth.ErrUnauthenticated
	}
	if len(in.DrawnCards) != len(in.Spread.Positions) {
		return "", ErrCardCountMismatch
	}

	session := models.TarotSession{
		ID:                   uuid.NewString(),
		ClientName:           in.ClientName,
		ClientAge:            in.ClientAge,
		Date:                 time.Now(),
		SpreadID:             in.Spread.ID,
		SpreadName:           in.Spread.Name,
		QuestionCategoryID:   in.Category.ID,
		QuestionCategoryName: in.Category.Name,
		Interpretation:       in.Interpretation,
		IsSent:               false,
	}

	if in.Question != nil {
		session.QuestionID = in.Question.ID
		session.QuestionText = in.Question.Text
	} else {
		session.QuestionText = in.CustomQuestion
	}

	session.DrawnCards = make([]models.DrawnCardRecord, len(in.DrawnCards))
	for i, card := range in.DrawnCards {
		session.DrawnCards[i] = models.DrawnCardRecord{
			CardID:       card.Card.ID,
			PositionID:   card.Position.ID,
			PositionName: card.Position.Name,
			IsReversed:   card.IsReversed,
		}
	}

	if err := database.SaveTarotSession(s.db, userID, session); err != nil {
		return "", err
	}

	s.bus.Publish(database.SessionsTopic(userID))
	logger.Info("Reading saved", "user_id", userID, "session_id", session.ID)
	return session.ID, nil
}

// FetchSessions returns the user's sessions, newest first.
func (s *Service) FetchSessions(userID string) ([]models.TarotSession, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}
	return database.GetTarotSessions(s.db, userID)
}

// StartSessionsListener opens a live subscription on the user's sessions.
// The initial snapshot is delivered immediately, then the full updated list
// on every change. The caller owns the cancel function and must invoke it
// when the subscription is no longer observed.
func (s *Service) StartSessionsListener(userID string) (<-chan []models.TarotSession, func(), error) {
	if userID == "" {
		return nil, nil, auth.ErrUnauthenticated
	}

	changes, cancelSub := s.bus.Subscribe(database.SessionsTopic(userID))
	out := make(chan []models.TarotSession, 1)

	push := func() {
		sessions, err := database.GetTarotSessions(s.db, userID)
		if err != nil {
			logger.Error("Sessions listener query failed", "user_id", userID, "error", err)
			return
		}
		// Replace a pending stale snapshot rather than queueing behind it.
		select {
		case out <- sessions:
		default:
			select {
			case <-out:
			default:
			}
			out <- sessions
		}
	}

	push()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range changes {
			push()
		}
	}()

	cancel := func() {
		cancelSub()
		<-done
		close(out)
	}

	return out, cancel, nil
}

// UpdateSession replaces the full session document. Callers supply complete
// state; fields left zero are overwritten with zero.
func (s *Service) UpdateSession(userID string, session models.TarotSession) error {
	if userID == "" {
		return auth.ErrUnauthenticated
	}

	err := database.UpdateTarotSession(s.db, userID, session)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}

	s.bus.Publish(database.SessionsTopic(userID))
	return nil
}

// MarkAsSent flips only the isSent flag, leaving every other field as the
// store has it.
func (s *Service) MarkAsSent(userID, sessionID string) error {
	if userID == "" {
		return auth.ErrUnauthenticated
	}

	err := database.MarkTarotSessionSent(s.db, userID, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}

	s.bus.Publish(database.SessionsTopic(userID))
	return nil
}

// DeleteSession removes the document. Deleting an already-deleted id
// succeeds.
func (s *Service) DeleteSession(userID, sessionID string) error {
	if userID == "" {
		return auth.ErrUnauthenticated
	}

	if err := database.DeleteTarotSession(s.db, userID, sessionID); err != nil {
		return err
	}

	s.bus.Publish(database.SessionsTopic(userID))
	return nil
}
