package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/simorakkaus/tarologist/internal/auth"
	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (a *App) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}

	login := strings.TrimSpace(req.Login)
	user, session, err := a.Auth.SignUp(login, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, database.ErrLoginTaken) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": auth.UserMessage(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":       user,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

func (a *App) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный запрос"})
		return
	}

	user, session, err := a.Auth.SignIn(strings.TrimSpace(req.Login), req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

func (a *App) handleLogout(c *gin.Context) {
	token := c.MustGet("token").(string)
	if err := a.Auth.SignOut(token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось выйти из учетной записи"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) handleAccount(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"is_subscribed": user.IsSubscribed,
	})
}

func (a *App) handleActivateSubscription(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	if err := database.SetSubscription(a.DB, user.ID, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось активировать подписку"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_subscribed": true})
}

func (a *App) handleDeactivateSubscription(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	if err := database.SetSubscription(a.DB, user.ID, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось отключить подписку"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_subscribed": false})
}
