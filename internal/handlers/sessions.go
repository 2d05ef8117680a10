package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/simorakkaus/tarologist/internal/models"
	"github.com/simorakkaus/tarologist/internal/reading"

	"github.com/gin-gonic/gin"
)

func (a *App) handleDraw(c *gin.Context) {
	var req struct {
		SpreadID string `json:"spreadId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}

	spread, ok := a.Spreads.SpreadByID(req.SpreadID)
	if !ok {
		// Spreads may not have been loaded in this process yet.
		a.Spreads.LoadSpreads()
		spread, ok = a.Spreads.SpreadByID(req.SpreadID)
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Расклад не найден"})
		return
	}

	drawn, err := a.Readings.DrawCards(spread)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось вытянуть карты"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spread": spread, "drawnCards": drawn})
}

type interpretRequest struct {
	ClientName       string             `json:"clientName"`
	ClientAge        string             `json:"clientAge"`
	Question         string             `json:"question"`
	QuestionCategory string             `json:"questionCategory"`
	DrawnCards       []models.DrawnCard `json:"drawnCards"`
}

func (a *App) handleInterpret(c *gin.Context) {
	var req interpretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}
	if len(req.DrawnCards) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Нет вытянутых карт"})
		return
	}

	text, err := a.Readings.GenerateInterpretation(c.Request.Context(), reading.InterpretInput{
		ClientName:       req.ClientName,
		ClientAge:        req.ClientAge,
		Question:         req.Question,
		QuestionCategory: req.QuestionCategory,
		Cards:            req.DrawnCards,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Не удалось получить толкование"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"interpretation": text})
}

type saveReadingRequest struct {
	ClientName     string                  `json:"clientName"`
	ClientAge      string                  `json:"clientAge"`
	Category       models.QuestionCategory `json:"category"`
	Question       *models.Question        `json:"question"`
	CustomQuestion string                  `json:"customQuestion"`
	SpreadID       string                  `json:"spreadId"`
	DrawnCards     []models.DrawnCard      `json:"drawnCards"`
	Interpretation string                  `json:"interpretation"`
}

func (a *App) handleSaveReading(c *gin.Context) {
	var req saveReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}

	spread, ok := a.Spreads.SpreadByID(req.SpreadID)
	if !ok {
		a.Spreads.LoadSpreads()
		spread, ok = a.Spreads.SpreadByID(req.SpreadID)
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Расклад не найден"})
		return
	}

	user := c.MustGet("user").(*models.User)
	sessionID, err := a.Readings.SaveReading(user.ID, reading.SaveReadingInput{
		ClientName:     req.ClientName,
		ClientAge:      req.ClientAge,
		Category:       req.Category,
		Question:       req.Question,
		CustomQuestion: req.CustomQuestion,
		Spread:         spread,
		DrawnCards:     req.DrawnCards,
		Interpretation: req.Interpretation,
	})
	if err != nil {
		if errors.Is(err, reading.ErrCardCountMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Число карт не совпадает с раскладом"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить сессию"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sessionId": sessionID})
}

func (a *App) handleSessions(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	sessions, err := a.Readings.FetchSessions(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить сессии"})
		return
	}
	if sessions == nil {
		sessions = []models.TarotSession{}
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// handleSessionsSubscribe streams the user's session list over SSE: one
// snapshot immediately, then one per change, until the client disconnects.
func (a *App) handleSessionsSubscribe(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	snapshots, cancel, err := a.Readings.StartSessionsListener(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось открыть подписку"})
		return
	}
	defer cancel()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case sessions, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("sessions", sessions)
			return true
		}
	})
}

func (a *App) handleUpdateSession(c *gin.Context) {
	var session models.TarotSession
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}
	session.ID = c.Param("id")

	user := c.MustGet("user").(*models.User)
	if err := a.Readings.UpdateSession(user.ID, session); err != nil {
		if errors.Is(err, reading.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить сессию"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) handleMarkSent(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	if err := a.Readings.MarkAsSent(user.ID, c.Param("id")); err != nil {
		if errors.Is(err, reading.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось отметить сессию"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) handleDeleteSession(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	if err := a.Readings.DeleteSession(user.ID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось удалить сессию"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
