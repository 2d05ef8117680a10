package questions

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/simorakkaus/tarologist/internal/bus"
	"github.com/simorakkaus/tarologist/internal/cache"
	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/logger"
	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/google/uuid"
)

const (
	categoriesCacheKey = "cachedQuestionCategories"
	questionsCacheKey  = "cachedQuestions"
)

// Manager loads active categories and approved questions, keeps them in
// memory for pure filtering, and falls back to the local cache when the
// store is unreachable.
type Manager struct {
	db    *sql.DB
	cache *cache.Store
	bus   *bus.Bus

	mu         sync.RWMutex
	categories []models.QuestionCategory
	questions  []models.Question

	listenerMu       sync.Mutex
	cancelCategories func()
	cancelQuestions  func()
	listenerWG       sync.WaitGroup
}

func NewManager(db *sql.DB, cacheStore *cache.Store, b *bus.Bus) *Manager {
	return &Manager{db: db, cache: cacheStore, bus: b}
}

// LoadCategories fetches active categories. On success the in-memory list
// and the cache copy are replaced; on failure the last cached list is used.
// An empty result with no cache is a soft failure, not an error.
func (m *Manager) LoadCategories() []models.QuestionCategory {
	categories, err := database.GetActiveQuestionCategories(m.db)
	if err != nil {
		logger.Warn("Failed to load question categories, trying cache", "error", err)
		return m.loadCategoriesFromCache()
	}

	m.mu.Lock()
	m.categories = categories
	m.mu.Unlock()

	m.saveToCache(categoriesCacheKey, categories)
	return categories
}

// LoadQuestions fetches questions that are both active and approved, with
// the same cache-fallback behavior as LoadCategories.
func (m *Manager) LoadQuestions() []models.Question {
	questions, err := database.GetApprovedQuestions(m.db)
	if err != nil {
		logger.Warn("Failed to load questions, trying cache", "error", err)
		return m.loadQuestionsFromCache()
	}

	m.mu.Lock()
	m.questions = questions
	m.mu.Unlock()

	m.saveToCache(questionsCacheKey, questions)
	return questions
}

// Categories returns the in-memory category list.
func (m *Manager) Categories() []models.QuestionCategory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.categories
}

// Questions returns the in-memory question list.
func (m *Manager) Questions() []models.Question {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.questions
}

// QuestionsForCategory filters the already-loaded questions by category.
// No I/O happens here.
func (m *Manager) QuestionsForCategory(categoryID string) []models.Question {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []models.Question
	for _, q := range m.questions {
		if q.CategoryID == categoryID {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// SubmitCustomQuestion persists a user-proposed question for moderation.
// The question gets a fresh id and starts unapproved, so it never shows up
// for other users until a moderator flips the flag.
func (m *Manager) SubmitCustomQuestion(categoryID, text string) (models.Question, error) {
	question := models.Question{
		ID:         uuid.NewString(),
		CategoryID: categoryID,
		Text:       text,
		IsApproved: false,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}

	if err := database.CreateQuestion(m.db, question); err != nil {
		logger.Error("Failed to submit custom question", "category_id", categoryID, "error", err)
		return models.Question{}, err
	}

	m.bus.Publish(database.TopicQuestions)
	logger.Info("Custom question submitted for moderation", "question_id", question.ID)
	return question, nil
}

// ApproveQuestion is the moderation write path. Approved questions become
// visible to every live questions listener.
func (m *Manager) ApproveQuestion(questionID string) error {
	if err := database.SetQuestionApproved(m.db, questionID, true); err != nil {
		return err
	}
	m.bus.Publish(database.TopicQuestions)
	return nil
}

// DeactivateQuestion retires a question from every surface.
func (m *Manager) DeactivateQuestion(questionID string) error {
	if err := database.SetQuestionActive(m.db, questionID, false); err != nil {
		return err
	}
	m.bus.Publish(database.TopicQuestions)
	return nil
}

// AddCategory is the administrator write path for categories.
func (m *Manager) AddCategory(name, description string) (models.QuestionCategory, error) {
	category := models.QuestionCategory{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		IsActive:    true,
	}

	if err := database.CreateQuestionCategory(m.db, category); err != nil {
		return models.QuestionCategory{}, err
	}

	m.bus.Publish(database.TopicQuestionCategories)
	return category, nil
}

// SetupRealTimeListeners opens live subscriptions on the categories and
// questions collections. Each delivery re-runs the load (with its cache
// fallback) so the in-memory lists track the store. Calling setup while
// listeners are active first tears the previous ones down.
func (m *Manager) SetupRealTimeListeners() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()

	m.removeListenersLocked()

	catCh, cancelCat := m.bus.Subscribe(database.TopicQuestionCategories)
	qCh, cancelQ := m.bus.Subscribe(database.TopicQuestions)
	m.cancelCategories = cancelCat
	m.cancelQuestions = cancelQ

	m.listenerWG.Add(2)
	go func() {
		defer m.listenerWG.Done()
		for range catCh {
			m.LoadCategories()
		}
	}()
	go func() {
		defer m.listenerWG.Done()
		for range qCh {
			m.LoadQuestions()
		}
	}()
}

// RemoveListeners tears down both subscriptions. It is safe to call when no
// listeners are active.
func (m *Manager) RemoveListeners() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.removeListenersLocked()
}

func (m *Manager) removeListenersLocked() {
	if m.cancelCategories != nil {
		m.cancelCategories()
		m.cancelCategories = nil
	}
	if m.cancelQuestions != nil {
		m.cancelQuestions()
		m.cancelQuestions = nil
	}
	m.listenerWG.Wait()
}

func (m *Manager) saveToCache(key string, value interface{}) {
	if m.cache == nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := m.cache.Set(key, encoded); err != nil {
		logger.Warn("Failed to write cache entry", "key", key, "error", err)
	}
}

func (m *Manager) loadCategoriesFromCache() []models.QuestionCategory {
	if m.cache == nil {
		return m.Categories()
	}

	raw, ok, err := m.cache.Get(categoriesCacheKey)
	if err != nil || !ok {
		return m.Categories()
	}

	var categories []models.QuestionCategory
	if err := json.Unmarshal(raw, &categories); err != nil {
		logger.Warn("Failed to decode cached categories", "error", err)
		return m.Categories()
	}

	m.mu.Lock()
	m.categories = categories
	m.mu.Unlock()
	return categories
}

func (m *Manager) loadQuestionsFromCache() []models.Question {
	if m.cache == nil {
		return m.Questions()
	}

	raw, ok, err := m.cache.Get(questionsCacheKey)
	if err != nil || !ok {
		return m.Questions()
	}

	var questions []models.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		logger.Warn("Failed to decode cached questions", "error", err)
		return m.Questions()
	}

	m.mu.Lock()
	m.questions = questions
	m.mu.Unlock()
	return questions
}
