package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quizgod-api/internal/models"
)

const premiumCacheTTL = 5 * time.Minute

type UserService struct {
	db    *sql.DB
	redis *redis.Client
}

type GenerationService struct {
	db *sql.DB
}

func NewUserService(db *sql.DB, redisClient *redis.Client) *UserService {
	return &UserService{db: db, redis: redisClient}
}

func NewGenerationService(db *sql.DB) *GenerationService {
	return &GenerationService{db: db}
}

func (s *UserService) GetOrCreateUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	query := `SELECT user_id, is_premium, created_at, updated_at FROM users WHERE user_id = ?`

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID, &user.IsPremium, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		// First time we see this identity: create a free-tier account.
		insertQuery := `INSERT INTO users (user_id, is_premium) VALUES (?, FALSE)`
		_, err = s.db.ExecContext(ctx, insertQuery, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		user = models.User{
			UserID:    userID,
			IsPremium: false,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// IsPremium reports whether the user has a premium subscription. The flag
// is cached in Redis for a short TTL; cache failures fall through to the
// database.
func (s *UserService) IsPremium(ctx context.Context, userID string) (bool, error) {
	cacheKey := "user_premium:" + userID
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			return cached == "1", nil
		}
	}

	user, err := s.GetOrCreateUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if s.redis != nil {
		value := "0"
		if user.IsPremium {
			value = "1"
		}
		_ = s.redis.Set(ctx, cacheKey, value, premiumCacheTTL).Err()
	}

	return user.IsPremium, nil
}

// SetPremium flips the subscription flag and invalidates the cached copy.
func (s *UserService) SetPremium(ctx context.Context, userID string, premium bool) error {
	query := `UPDATE users SET is_premium = ?, updated_at = NOW() WHERE user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, premium, userID); err != nil {
		return fmt.Errorf("failed to update premium flag: %w", err)
	}

	if s.redis != nil {
		_ = s.redis.Del(ctx, "user_premium:"+userID).Err()
	}
	return nil
}

func (s *UserService) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	var stats models.UserStats
	query := `
		SELECT u.user_id, u.is_premium,
		       COUNT(g.id), COALESCE(SUM(g.question_count), 0)
		FROM users u
		LEFT JOIN generations g ON g.user_id = u.user_id
		WHERE u.user_id = ?
		GROUP BY u.user_id, u.is_premium`

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.UserID, &stats.IsPremium, &stats.GenerationCount, &stats.QuestionsCreated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return &stats, nil
}

func (s *UserService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *GenerationService) SaveGeneration(ctx context.Context, gen *models.Generation) error {
	if gen.ID == "" {
		gen.ID = uuid.NewString()
	}

	query := `INSERT INTO generations (id, user_id, subject, difficulty, question_count, duration)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		gen.ID, gen.UserID, gen.Subject, gen.Difficulty, gen.QuestionCount, gen.Duration)
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}
