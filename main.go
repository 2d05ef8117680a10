package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/simorakkaus/tarologist/internal/auth"
	"github.com/simorakkaus/tarologist/internal/bus"
	"github.com/simorakkaus/tarologist/internal/cache"
	"github.com/simorakkaus/tarologist/internal/catalog"
	"github.com/simorakkaus/tarologist/internal/config"
	"github.com/simorakkaus/tarologist/internal/database"
	"github.com/simorakkaus/tarologist/internal/email"
	"github.com/simorakkaus/tarologist/internal/handlers"
	"github.com/simorakkaus/tarologist/internal/logger"
	"github.com/simorakkaus/tarologist/internal/middleware"
	"github.com/simorakkaus/tarologist/internal/questions"
	"github.com/simorakkaus/tarologist/internal/reading"
	"github.com/simorakkaus/tarologist/internal/spreads"

	"github.com/gin-gonic/gin"
)

type stdRNG struct {
	r *rand.Rand
}

func (s stdRNG) Intn(n int) int {
	return s.r.Intn(n)
}

func main() {
	cfg := config.Load()

	logLevel := logger.INFO
	if cfg.IsDevelopment() {
		logLevel = logger.DEBUG
	}
	logger.Initialize(logLevel, cfg.IsDevelopment())

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	cacheStore, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Fatal("Failed to open cache store:", err)
	}
	defer cacheStore.Close()

	cardCatalog, err := catalog.Load()
	if err != nil {
		log.Fatal("Failed to load card catalog:", err)
	}
	logger.Info("Card catalog loaded", "cards", cardCatalog.Count())

	eventBus := bus.New()
	defer eventBus.Close()

	authService := auth.NewService(db, cfg.SessionDuration)

	questionManager := questions.NewManager(db, cacheStore, eventBus)
	questionManager.LoadCategories()
	questionManager.LoadQuestions()
	questionManager.SetupRealTimeListeners()
	defer questionManager.RemoveListeners()

	spreadManager := spreads.NewManager(db, cacheStore)
	spreadManager.LoadSpreads()

	var interpreter reading.Interpreter
	if cfg.OpenRouterAPIKey != "" {
		interpreter = reading.NewOpenRouterInterpreter(
			&http.Client{Timeout: cfg.InterpretTimeout},
			cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel,
		)
		logger.Info("Interpretation backend enabled", "model", cfg.OpenRouterModel)
	} else {
		logger.Info("Interpretation backend disabled - using built-in templates")
	}

	rng := stdRNG{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
	readingService := reading.NewService(db, cardCatalog, interpreter, rng, eventBus)

	emailService := email.NewService(cfg)
	if emailService.IsEnabled() {
		log.Println("Email service enabled with Mailgun")
	} else {
		log.Println("Email service disabled - Mailgun not configured")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg))

	handlers.SetupRoutes(r, &handlers.App{
		DB:        db,
		Auth:      authService,
		Questions: questionManager,
		Spreads:   spreadManager,
		Catalog:   cardCatalog,
		Readings:  readingService,
		Email:     emailService,
		Config:    cfg,
	})

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(r.Run(":" + cfg.Port))
}
