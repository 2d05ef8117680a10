package reading

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/simorakkaus/tarologist/internal/auth"
	"github.com/simorakkaus/tarologist/internal/bus"
	"github.com/simorakkaus/tarologist/internal/catalog"
	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

type seededRNG struct {
	r *rand.Rand
}

func (s seededRNG) Intn(n int) int { return s.r.Intn(n) }

func setupTestService(t *testing.T) (*Service, *sql.DB) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		t.Fatal("Failed to load catalog:", err)
	}

	rng := seededRNG{r: rand.New(rand.NewSource(1))}
	return NewService(db, cat, nil, rng, bus.New()), db
}

func threeCardSpread() models.Spread {
	return models.Spread{
		ID:            "spread_three_card",
		Name:          "Расклад на три карты",
		NumberOfCards: 3,
		Positions: []models.SpreadPosition{
			{ID: "pos_1", Name: "Прошлое", Order: 1},
			{ID: "pos_2", Name: "Настоящее", Order: 2},
			{ID: "pos_3", Name: "Будущее", Order: 3},
		},
		IsActive: true,
	}
}

func TestDrawCards(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	spread := threeCardSpread()
	drawn, err := s.DrawCards(spread)
	if err != nil {
		t.Fatal("Failed to draw cards:", err)
	}

	if len(drawn) != 3 {
		t.Fatalf("Expected 3 drawn cards, got %d", len(drawn))
	}
	for i, card := range drawn {
		if card.Position.ID != spread.Positions[i].ID {
			t.Errorf("Card %d landed in position %s, expected %s", i, card.Position.ID, spread.Positions[i].ID)
		}
		if card.Card.ID == "" {
			t.Errorf("Card %d is empty", i)
		}
	}
}

func TestDrawCardsEdgeCases(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	if _, err := s.DrawCards(models.Spread{ID: "empty"}); !errors.Is(err, ErrNoPositions) {
		t.Errorf("Expected ErrNoPositions, got %v", err)
	}
}

func TestDrawDistribution(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	spread := models.Spread{
		ID:            "spread_one_card",
		NumberOfCards: 1,
		Positions:     []models.SpreadPosition{{ID: "pos_1", Name: "Совет", Order: 1}},
	}

	const draws = 2000
	reversed := 0
	repeats := 0
	var last string
	for i := 0; i < draws; i++ {
		drawn, err := s.DrawCards(spread)
		if err != nil {
			t.Fatal("Failed to draw:", err)
		}
		if drawn[0].IsReversed {
			reversed++
		}
		if drawn[0].Card.ID == last {
			repeats++
		}
		last = drawn[0].Card.ID
	}

	// A fair coin over 2000 draws stays comfortably inside 40-60%.
	if reversed < draws*40/100 || reversed > draws*60/100 {
		t.Errorf("Reversal rate looks biased: %d of %d", reversed, draws)
	}
	// Repeats are allowed; with 78 cards a few immediate repeats are expected
	// over 2000 independent draws.
	if repeats == 0 {
		t.Log("No immediate repeats observed; possible but unlikely with replacement")
	}
}

func TestGenerateInterpretationFallsBackToTemplate(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	drawn, err := s.DrawCards(threeCardSpread())
	if err != nil {
		t.Fatal("Failed to draw:", err)
	}

	text, err := s.GenerateInterpretation(context.Background(), InterpretInput{
		ClientName: "Анна",
		Question:   "Что меня ждет?",
		Cards:      drawn,
	})
	if err != nil {
		t.Fatal("Failed to generate interpretation:", err)
	}
	if !strings.Contains(text, "Общая рекомендация") {
		t.Error("Expected the template footer in the fallback interpretation")
	}
	if !strings.Contains(text, drawn[0].Card.NameRu) {
		t.Error("Expected the first card name in the interpretation")
	}
}

type failingInterpreter struct{}

func (failingInterpreter) Interpret(context.Context, InterpretInput) (string, error) {
	return "", errors.New("upstream unavailable")
}

func TestBackendFailureFallsBackToTemplate(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		t.Fatal("Failed to load catalog:", err)
	}

	s := NewService(db, cat, failingInterpreter{}, seededRNG{r: rand.New(rand.NewSource(1))}, bus.New())

	drawn, err := s.DrawCards(threeCardSpread())
	if err != nil {
		t.Fatal("Failed to draw:", err)
	}

	text, err := s.GenerateInterpretation(context.Background(), InterpretInput{Cards: drawn})
	if err != nil {
		t.Fatal("Expected the template to cover a backend failure:", err)
	}
	if !strings.Contains(text, "Общая рекомендация") {
		t.Error("Expected the template fallback text")
	}
}

func saveTestReading(t *testing.T, s *Service, userID string) string {
	t.Helper()

	drawn, err := s.DrawCards(threeCardSpread())
	if err != nil {
		t.Fatal("Failed to draw:", err)
	}

	id, err := s.SaveReading(userID, SaveReadingInput{
		ClientName:     "Анна",
		ClientAge:      "34",
		Category:       models.QuestionCategory{ID: "cat-love", Name: "Любовь"},
		CustomQuestion: "Что меня ждет?",
		Spread:         threeCardSpread(),
		DrawnCards:     drawn,
		Interpretation: "Толкование",
	})
	if err != nil {
		t.Fatal("Failed to save reading:", err)
	}
	return id
}

func TestSaveReadingAndFetch(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	user, err := database.CreateUser(db, "reader", "reader@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}

	id := saveTestReading(t, s, user.ID)
	if id == "" {
		t.Fatal("Expected a session id")
	}

	sessions, err := s.FetchSessions(user.ID)
	if err != nil {
		t.Fatal("Failed to fetch sessions:", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}

	session := sessions[0]
	if session.ID != id {
		t.Errorf("Expected session %s, got %s", id, session.ID)
	}
	if session.SpreadName != "Расклад на три карты" {
		t.Errorf("Expected denormalized spread name, got %s", session.SpreadName)
	}
	if session.QuestionCategoryName != "Любовь" {
		t.Errorf("Expected denormalized category name, got %s", session.QuestionCategoryName)
	}
	if session.QuestionText != "Что меня ждет?" {
		t.Errorf("Expected custom question text, got %s", session.QuestionText)
	}
	if len(session.DrawnCards) != 3 {
		t.Errorf("Expected 3 drawn card records, got %d", len(session.DrawnCards))
	}
	if session.IsSent {
		t.Error("New sessions must start unsent")
	}
}

func TestSaveReadingValidation(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	drawn, err := s.DrawCards(threeCardSpread())
	if err != nil {
		t.Fatal("Failed to draw:", err)
	}

	_, err = s.SaveReading("", SaveReadingInput{Spread: threeCardSpread(), DrawnCards: drawn})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for empty user, got %v", err)
	}

	_, err = s.SaveReading("user-1", SaveReadingInput{Spread: threeCardSpread(), DrawnCards: drawn[:2]})
	if !errors.Is(err, ErrCardCountMismatch) {
		t.Errorf("Expected ErrCardCountMismatch, got %v", err)
	}
}

func TestSessionLifecycleThroughService(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	user, err := database.CreateUser(db, "reader", "reader@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}

	id := saveTestReading(t, s, user.ID)

	sessions, err := s.FetchSessions(user.ID)
	if err != nil {
		t.Fatal("Failed to fetch sessions:", err)
	}

	edited := sessions[0]
	edited.ClientName = "Мария"
	if err := s.UpdateSession(user.ID, edited); err != nil {
		t.Fatal("Failed to update session:", err)
	}

	if err := s.MarkAsSent(user.ID, id); err != nil {
		t.Fatal("Failed to mark session sent:", err)
	}

	sessions, err = s.FetchSessions(user.ID)
	if err != nil {
		t.Fatal("Failed to fetch sessions:", err)
	}
	if sessions[0].ClientName != "Мария" {
		t.Errorf("Expected edited client name, got %s", sessions[0].ClientName)
	}
	if !sessions[0].IsSent {
		t.Error("Expected session marked sent")
	}

	if err := s.MarkAsSent(user.ID, "no-such"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	ghost := edited
	ghost.ID = "no-such"
	if err := s.UpdateSession(user.ID, ghost); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	if err := s.DeleteSession(user.ID, id); err != nil {
		t.Fatal("Failed to delete session:", err)
	}
	if err := s.DeleteSession(user.ID, id); err != nil {
		t.Error("Expected idempotent delete, got:", err)
	}
}

func TestSessionsListener(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	user, err := database.CreateUser(db, "reader", "reader@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}

	snapshots, cancel, err := s.StartSessionsListener(user.ID)
	if err != nil {
		t.Fatal("Failed to start listener:", err)
	}

	// The initial snapshot arrives without any write.
	select {
	case initial := <-snapshots:
		if len(initial) != 0 {
			t.Errorf("Expected empty initial snapshot, got %d sessions", len(initial))
		}
	case <-time.After(time.Second):
		t.Fatal("Expected an initial snapshot")
	}

	id := saveTestReading(t, s, user.ID)

	select {
	case updated := <-snapshots:
		if len(updated) != 1 || updated[0].ID != id {
			t.Errorf("Expected snapshot with the saved session, got %v", updated)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a snapshot after save")
	}

	cancel()
	if _, ok := <-snapshots; ok {
		// A final buffered snapshot may arrive; the channel must then close.
		if _, ok := <-snapshots; ok {
			t.Error("Expected snapshot channel to close after cancel")
		}
	}

	// Writes after cancel must not panic or deliver.
	if err := s.DeleteSession(user.ID, id); err != nil {
		t.Fatal("Failed to delete after cancel:", err)
	}
}

func TestSessionsListenerIsPerUser(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	alice, err := database.CreateUser(db, "alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}
	bob, err := database.CreateUser(db, "bob", "bob@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}

	snapshots, cancel, err := s.StartSessionsListener(alice.ID)
	if err != nil {
		t.Fatal("Failed to start listener:", err)
	}
	defer cancel()

	<-snapshots // initial

	saveTestReading(t, s, bob.ID)

	select {
	case got := <-snapshots:
		t.Errorf("Alice's listener saw Bob's write: %v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestListenerRequiresUser(t *testing.T) {
	s, db := setupTestService(t)
	defer db.Close()

	if _, _, err := s.StartSessionsListener(""); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
	if _, err := s.FetchSessions(""); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
}
