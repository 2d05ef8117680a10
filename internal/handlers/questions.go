package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/logger"
	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/gin-gonic/gin"
)

func (a *App) handleCategories(c *gin.Context) {
	categories := a.Questions.LoadCategories()
	if categories == nil {
		categories = []models.QuestionCategory{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (a *App) handleQuestions(c *gin.Context) {
	questions := a.Questions.LoadQuestions()

	if categoryID := c.Query("category"); categoryID != "" {
		questions = a.Questions.QuestionsForCategory(categoryID)
	}
	if questions == nil {
		questions = []models.Question{}
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

type submitQuestionRequest struct {
	CategoryID string `json:"categoryId"`
	Text       string `json:"text"`
}

func (a *App) handleSubmitQuestion(c *gin.Context) {
	var req submitQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Текст вопроса не может быть пустым"})
		return
	}

	question, err := a.Questions.SubmitCustomQuestion(req.CategoryID, text)
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Категория не найдена"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось отправить вопрос"})
		return
	}

	// Moderation mail is best-effort; the submission already landed.
	if a.Email.IsEnabled() {
		category, err := database.GetQuestionCategory(a.DB, req.CategoryID)
		if err == nil {
			go func(q models.Question, cat models.QuestionCategory) {
				if err := a.Email.SendQuestionModerationEmail(q, cat); err != nil {
					logger.Warn("Failed to send moderation email", "question_id", q.ID, "error", err)
				}
			}(question, *category)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"question": question})
}

type suggestionRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (a *App) handleSuggestion(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}

	if !a.Email.IsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Отправка предложений временно недоступна"})
		return
	}

	user := c.MustGet("user").(*models.User)
	if err := a.Email.SendSuggestionEmail(user.Login, req.Subject, req.Body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось отправить предложение"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
