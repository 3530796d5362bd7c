package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	appmetrics "quizgod-api/internal/metrics"
	"quizgod-api/internal/models"
	"quizgod-api/internal/quizgen"
)

// UserStore is the subset of the user service the handlers need.
type UserStore interface {
	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	Ping(ctx context.Context) error
}

// GenerationStore persists generation audit records.
type GenerationStore interface {
	SaveGeneration(ctx context.Context, gen *models.Generation) error
}

type Handler struct {
	pipeline    *quizgen.Service
	users       UserStore
	generations GenerationStore
	redisClient *redis.Client
}

func NewHandler(
	pipeline *quizgen.Service,
	users UserStore,
	generations GenerationStore,
	redisClient *redis.Client,
) *Handler {
	return &Handler{
		pipeline:    pipeline,
		users:       users,
		generations: generations,
		redisClient: redisClient,
	}
}

func (h *Handler) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	dbStatus := "healthy"
	if err := h.users.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if h.redisClient == nil {
		redisStatus = "disabled"
	} else if err := h.redisClient.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  dbStatus,
		Redis:     redisStatus,
	}

	return c.JSON(http.StatusOK, response)
}

func (h *Handler) GenerateQuiz(c echo.Context) error {
	ctx := c.Request().Context()

	// Metrics: count + in-flight
	appmetrics.GenerationRequestsTotal.Inc()
	appmetrics.ActiveRequests.Inc()
	defer appmetrics.ActiveRequests.Dec()

	startWall := time.Now()
	defer func() {
		appmetrics.RequestDurationSeconds.Observe(time.Since(startWall).Seconds())
	}()

	var req models.GenerateQuizRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid JSON body"})
	}

	result, err := h.pipeline.Generate(ctx, &req)
	if err != nil {
		return h.writeGenerateError(c, err)
	}

	appmetrics.QuestionsGeneratedTotal.Add(float64(result.QuestionCount))

	// Persist the audit record off the request path (best-effort).
	if h.generations != nil {
		duration := time.Since(startWall).Seconds()
		go h.saveGeneration(&req, result, duration)
	}

	c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.RateLimit.Remaining))
	c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(result.RateLimit.Limit))

	return c.JSON(http.StatusOK, models.GenerateQuizResponse{
		GeneratedText: result.Text,
		Success:       true,
		RateLimit: models.RateLimitInfo{
			Remaining: result.RateLimit.Remaining,
			Limit:     result.RateLimit.Limit,
		},
	})
}

func (h *Handler) writeGenerateError(c echo.Context, err error) error {
	var (
		invalid  *quizgen.InvalidRequestError
		limited  *quizgen.RateLimitError
		premium  *quizgen.PremiumRequiredError
		provider *quizgen.ProviderError
	)

	switch {
	case errors.Is(err, quizgen.ErrMissingUserID):
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "User ID is required"})

	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: invalid.Reason})

	case errors.As(err, &limited):
		appmetrics.RateLimitDroppedTotal.Inc()
		c.Response().Header().Set("X-RateLimit-Remaining", "0")
		c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(limited.Decision.ResetAt.UnixMilli(), 10))
		return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:      "Rate limit exceeded. Please try again later.",
			RetryAfter: int(limited.RetryAfter.Seconds()),
		})

	case errors.As(err, &premium):
		appmetrics.PremiumRejectionsTotal.Inc()
		return c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:           premium.Error(),
			PremiumRequired: true,
			Limit:           premium.QuestionCap,
		})

	case errors.Is(err, quizgen.ErrNotConfigured),
		errors.Is(err, quizgen.ErrEmptyOutput),
		errors.As(err, &provider):
		// Provider details stay in the server log only.
		log.Printf("generation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "AI generation failed. Please try again.",
		})

	default:
		log.Printf("generate quiz error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Server error. Please try again.",
		})
	}
}

func (h *Handler) saveGeneration(req *models.GenerateQuizRequest, result *quizgen.Result, duration float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbStart := time.Now()
	err := h.generations.SaveGeneration(ctx, &models.Generation{
		UserID:        req.UserID,
		Subject:       req.Subject,
		Difficulty:    req.Difficulty,
		QuestionCount: result.QuestionCount,
		Duration:      duration,
	})
	appmetrics.DBWriteDurationSeconds.Observe(time.Since(dbStart).Seconds())
	if err != nil {
		log.Printf("failed to save generation for user %s: %v", req.UserID, err)
	}
}

func (h *Handler) GetUserStats(c echo.Context) error {
	ctx := c.Request().Context()

	userID := c.Request().Header.Get("X-User-Id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "X-User-Id header is required"})
	}

	// Try Redis cache first
	cacheKey := "user_stats:" + userID
	if h.redisClient != nil {
		if cached, err := h.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			return c.JSONBlob(http.StatusOK, []byte(cached))
		}
	}

	stats, err := h.users.GetUserStats(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get user stats"})
	}

	// Cache for 5 minutes (best-effort)
	if h.redisClient != nil {
		if payload, err := json.Marshal(stats); err == nil {
			_ = h.redisClient.Set(ctx, cacheKey, payload, 5*time.Minute).Err()
		}
	}

	return c.JSON(http.StatusOK, stats)
}
