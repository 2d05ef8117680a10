package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/logger"
	"github.com/simorakkaus/tarologist/internal/models"
)

// The identity provider only accepts email-shaped credentials, so a
// pseudo-email is derived from the chosen handle. No real email is collected.
const pseudoEmailDomain = "@example.com"

var loginRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidLogin     = errors.New("invalid login format")
	ErrPasswordTooShort = errors.New("password too short")
)

// Event is one auth state transition delivered to state-change subscribers.
type Event struct {
	UserID   string
	SignedIn bool
}

// Service is the identity provider client contract: sign-in, sign-up,
// sign-out, reload, current-user lookup, and a change-notification stream.
type Service struct {
	db              *sql.DB
	sessionDuration time.Duration

	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewService(db *sql.DB, sessionDuration time.Duration) *Service {
	return &Service{
		db:              db,
		sessionDuration: sessionDuration,
		subs:            make(map[int]chan Event),
	}
}

// PseudoEmail derives the provider-facing credential from a login handle.
func PseudoEmail(login string) string {
	return login + pseudoEmailDomain
}

// SignUp registers a new account for the handle and opens an auth session.
func (s *Service) SignUp(login, password string) (*models.User, *models.AuthSession, error) {
	if len(login) < 3 || len(login) > 30 || !loginRegex.MatchString(login) {
		return nil, nil, ErrInvalidLogin
	}
	// Firebase's minimum; kept so existing accounts stay importable.
	if len(password) < 6 {
		return nil, nil, ErrPasswordTooShort
	}

	user, err := database.CreateUser(s.db, login, PseudoEmail(login), password)
	if err != nil {
		return nil, nil, err
	}

	session, err := database.CreateAuthSession(s.db, user.ID, s.sessionDuration)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session after sign-up: %w", err)
	}

	s.notify(Event{UserID: user.ID, SignedIn: true})
	logger.Info("User signed up", "user_id", user.ID)
	return user, session, nil
}

// SignIn authenticates the handle and opens an auth session.
func (s *Service) SignIn(login, password string) (*models.User, *models.AuthSession, error) {
	user, err := database.AuthenticateUser(s.db, PseudoEmail(login), password)
	if err != nil {
		return nil, nil, err
	}

	session, err := database.CreateAuthSession(s.db, user.ID, s.sessionDuration)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session after sign-in: %w", err)
	}

	s.notify(Event{UserID: user.ID, SignedIn: true})
	logger.Info("User signed in", "user_id", user.ID)
	return user, session, nil
}

// SignOut invalidates the token. Unknown tokens sign out cleanly.
func (s *Service) SignOut(token string) error {
	user, err := database.ValidateAuthSession(s.db, token)
	if err == nil {
		s.notify(Event{UserID: user.ID, SignedIn: false})
	}

	if err := database.DeleteAuthSession(s.db, token); err != nil {
		return err
	}

	logger.Info("User signed out", "token", token)
	return nil
}

// CurrentUser resolves a token to its user without side effects.
func (s *Service) CurrentUser(token string) (*models.User, error) {
	user, err := database.ValidateAuthSession(s.db, token)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CurrentUserID resolves a token to a user id, or returns
// ErrUnauthenticated.
func (s *Service) CurrentUserID(token string) (string, error) {
	user, err := database.ValidateAuthSession(s.db, token)
	if err != nil {
		return "", ErrUnauthenticated
	}
	return user.ID, nil
}

// Reload revalidates a locally-held token against the store, the way the app
// reloads its cached credentials on start. Recognized invalidation reasons
// (expired or revoked token, disabled or deleted account) force a local
// sign-out; anything else (store unreachable) leaves the session alone so a
// transient outage does not log the user out.
func (s *Service) Reload(token string) (*models.User, error) {
	user, err := database.ValidateAuthSession(s.db, token)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, database.ErrSessionExpired) ||
		errors.Is(err, database.ErrSessionNotFound) ||
		errors.Is(err, database.ErrUserDisabled) ||
		errors.Is(err, database.ErrUserNotFound) {
		_ = database.DeleteAuthSession(s.db, token)
		s.notify(Event{SignedIn: false})
		logger.Info("Reload forced sign-out", "token", token, "reason", err)
		return nil, ErrUnauthenticated
	}

	return nil, err
}

// StateChanges subscribes to auth state transitions. The caller owns the
// returned cancel function and must invoke it when done.
func (s *Service) StateChanges() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, 8)
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}

	return ch, cancel
}

func (s *Service) notify(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
