package handlers

import (
	"net/http"

	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/gin-gonic/gin"
)

func (a *App) handleSpreads(c *gin.Context) {
	spreads := a.Spreads.LoadSpreads()
	if spreads == nil {
		spreads = []models.Spread{}
	}

	if errMsg := a.Spreads.LastError(); errMsg != "" && len(spreads) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Не удалось загрузить расклады"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spreads": spreads})
}

func (a *App) handleCards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cards": a.Catalog.Cards()})
}

func (a *App) handleCard(c *gin.Context) {
	id := c.Param("id")

	card, ok := a.Catalog.CardByID(id)
	if !ok {
		// Fall back to the English-name lookup so both forms of the
		// identifier work on one route.
		card, ok = a.Catalog.CardByEnglishName(id)
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Карта не найдена"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}
