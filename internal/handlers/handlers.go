package handlers

import (
	"database/sql"

	"github.com/simorakkaus/tarologist/internal/auth"
	"github.com/simorakkaus/tarologist/internal/catalog"
	"github.com/simorakkaus/tarologist/internal/config"
	"github.com/simorakkaus/tarologist/internal/email"
	"github.com/simorakkaus/tarologist/internal/middleware"
	"github.com/simorakkaus/tarologist/internal/questions"
	"github.com/simorakkaus/tarologist/internal/reading"
	"github.com/simorakkaus/tarologist/internal/spreads"

	"github.com/gin-gonic/gin"
)

// App bundles every dependency the handlers need. It is assembled once in
// main and handed to SetupRoutes, so tests can wire fakes per-test instead
// of reaching for globals.
type App struct {
	DB        *sql.DB
	Auth      *auth.Service
	Questions *questions.Manager
	Spreads   *spreads.Manager
	Catalog   *catalog.Catalog
	Readings  *reading.Service
	Email     *email.Service
	Config    *config.Config
}

func SetupRoutes(r *gin.Engine, app *App) {
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders())

	api := r.Group("/api")

	api.POST("/register", middleware.AuthRateLimit(app.Config), app.handleRegister)
	api.POST("/login", middleware.AuthRateLimit(app.Config), app.handleLogin)

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(app.Auth))
	{
		protected.POST("/logout", app.handleLogout)
		protected.GET("/account", app.handleAccount)
		protected.POST("/account/subscription", app.handleActivateSubscription)
		protected.DELETE("/account/subscription", app.handleDeactivateSubscription)

		protected.GET("/categories", app.handleCategories)
		protected.GET("/questions", app.handleQuestions)
		protected.POST("/questions", app.handleSubmitQuestion)
		protected.POST("/suggestions", app.handleSuggestion)

		protected.GET("/spreads", app.handleSpreads)
		protected.GET("/cards", app.handleCards)
		protected.GET("/cards/:id", app.handleCard)

		protected.POST("/readings/draw", app.handleDraw)
		protected.POST("/readings/interpret", app.handleInterpret)

		protected.POST("/sessions", app.handleSaveReading)
		protected.GET("/sessions", app.handleSessions)
		protected.GET("/sessions/subscribe", app.handleSessionsSubscribe)
		protected.PUT("/sessions/:id", app.handleUpdateSession)
		protected.POST("/sessions/:id/sent", app.handleMarkSent)
		protected.DELETE("/sessions/:id", app.handleDeleteSession)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(app.Auth))
	{
		admin.POST("/categories", app.handleCreateCategory)
		admin.GET("/questions/pending", app.handlePendingQuestions)
		admin.POST("/questions/:id/approve", app.handleApproveQuestion)
		admin.POST("/questions/:id/deactivate", app.handleDeactivateQuestion)
		admin.POST("/spreads", app.handleCreateSpread)
	}
}
