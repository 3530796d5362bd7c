package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quizgod-api/internal/config"
	"quizgod-api/internal/database"
	"quizgod-api/internal/handlers"
	"quizgod-api/internal/llm"
	appmetrics "quizgod-api/internal/metrics"
	"quizgod-api/internal/middleware/ratelimit"
	"quizgod-api/internal/quizgen"
	"quizgod-api/internal/services"
)

func main() {

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewConnection(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Initialize Redis
	redisClient, err := database.NewRedisConnection(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	userService := services.NewUserService(db, redisClient)
	generationService := services.NewGenerationService(db)
	rateLimiter := ratelimit.NewRateLimiter(ratelimit.Config{
		Window:        cfg.RateLimitWindow,
		StandardLimit: cfg.StandardLimit,
		PremiumLimit:  cfg.PremiumLimit,
	})

	// A missing API key keeps the server up; generation requests fail with
	// a server error until it is configured.
	var completer quizgen.Completer
	if cfg.GroqAPIKey != "" {
		completer = quizgen.InstrumentCompleter(llm.NewClient(llm.Config{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
			Model:   cfg.GroqModel,
			Timeout: cfg.ProviderTimeout,
		}), appmetrics.ProviderDurationSeconds)
	} else {
		log.Println("Warning: GROQ_API_KEY is not set, quiz generation is disabled")
	}

	pipeline := quizgen.NewService(userService, rateLimiter, completer, cfg.FreeQuestionCap, cfg.MaxSourceLength)

	// Metrics
	registry := prometheus.NewRegistry()
	appmetrics.MustRegister(registry)

	// Initialize Echo
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize handlers
	h := handlers.NewHandler(pipeline, userService, generationService, redisClient)

	// Routes
	e.GET("/health", h.HealthCheck)
	e.POST("/api/quiz/generate", h.GenerateQuiz)
	e.GET("/user/stats", h.GetUserStats)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
