package handlers

import (
	"errors"
	"net/http"

	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (a *App) handleCreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}

	category, err := a.Questions.AddCategory(req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать категорию"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (a *App) handlePendingQuestions(c *gin.Context) {
	pending, err := database.GetPendingQuestions(a.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить вопросы"})
		return
	}
	if pending == nil {
		pending = []models.Question{}
	}

	c.JSON(http.StatusOK, gin.H{"questions": pending})
}

func (a *App) handleApproveQuestion(c *gin.Context) {
	if err := a.Questions.ApproveQuestion(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Вопрос не найден"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось одобрить вопрос"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) handleDeactivateQuestion(c *gin.Context) {
	if err := a.Questions.DeactivateQuestion(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Вопрос не найден"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось отключить вопрос"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) handleCreateSpread(c *gin.Context) {
	var req struct {
		Name        string                  `json:"name"`
		Description string                  `json:"description"`
		Positions   []models.SpreadPosition `json:"positions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}
	if len(req.Positions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Расклад должен содержать хотя бы одну позицию"})
		return
	}

	spread := models.Spread{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		NumberOfCards: len(req.Positions),
		Positions:     req.Positions,
		IsActive:      true,
	}
	if err := database.CreateSpread(a.DB, spread); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать расклад"})
		return
	}

	// Refresh the in-memory list so the new spread is served immediately.
	a.Spreads.LoadSpreads()

	c.JSON(http.StatusCreated, gin.H{"spread": spread})
}
