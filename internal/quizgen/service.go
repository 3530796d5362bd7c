// Package quizgen implements the quiz generation pipeline: request
// validation, entitlement and quota enforcement, prompt construction,
// the provider call, and output sanitization.
package quizgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizgod-api/internal/middleware/ratelimit"
	"quizgod-api/internal/models"
)

// EntitlementChecker looks up whether a user has a premium subscription.
type EntitlementChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// Completer is the text generation provider.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Limiter is the per-user request rate limiter.
type Limiter interface {
	CheckAndConsume(userID string, premium bool) ratelimit.Decision
	Window() time.Duration
}

// Result is a successful generation outcome.
type Result struct {
	Text          string
	QuestionCount int
	Premium       bool
	RateLimit     ratelimit.Decision
}

type Service struct {
	entitlements    EntitlementChecker
	limiter         Limiter
	completer       Completer
	freeQuestionCap int
	maxSourceLength int
}

const DefaultFreeQuestionCap = 10

// NewService wires the pipeline. A nil completer marks the provider as not
// configured; requests then fail with ErrNotConfigured instead of at startup.
func NewService(entitlements EntitlementChecker, limiter Limiter, completer Completer, freeQuestionCap, maxSourceLength int) *Service {
	if freeQuestionCap <= 0 {
		freeQuestionCap = DefaultFreeQuestionCap
	}
	if maxSourceLength <= 0 {
		maxSourceLength = DefaultMaxSourceLength
	}
	return &Service{
		entitlements:    entitlements,
		limiter:         limiter,
		completer:       completer,
		freeQuestionCap: freeQuestionCap,
		maxSourceLength: maxSourceLength,
	}
}

// Generate runs one request through the pipeline. Every failure is one of
// the typed errors in errors.go; callers map them to transport responses.
func (s *Service) Generate(ctx context.Context, req *models.GenerateQuizRequest) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	premium, err := s.entitlements.IsPremium(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("entitlement lookup failed: %w", err)
	}

	decision := s.limiter.CheckAndConsume(req.UserID, premium)
	if !decision.Allowed {
		return nil, &RateLimitError{RetryAfter: s.limiter.Window(), Decision: decision}
	}

	if !premium {
		for _, tag := range models.QuestionTypeOrder {
			if models.PremiumQuestionTypes[tag] && req.QuestionTypes[tag] > 0 {
				return nil, &PremiumRequiredError{QuestionType: tag}
			}
		}
	}

	total := req.TotalQuestions()
	if !premium && total > s.freeQuestionCap {
		return nil, &PremiumRequiredError{QuestionCap: s.freeQuestionCap}
	}

	if s.completer == nil {
		return nil, ErrNotConfigured
	}

	prompt := BuildPrompt(req, s.maxSourceLength)
	raw, err := s.completer.Complete(ctx, SystemPrompt(), prompt)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	cleaned := Sanitize(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, ErrEmptyOutput
	}

	return &Result{
		Text:          cleaned,
		QuestionCount: total,
		Premium:       premium,
		RateLimit:     decision,
	}, nil
}

func validate(req *models.GenerateQuizRequest) error {
	if req.UserID == "" {
		return ErrMissingUserID
	}
	if req.PDFText == "" {
		return &InvalidRequestError{Reason: "pdfText is required"}
	}
	if len(req.QuestionTypes) == 0 {
		return &InvalidRequestError{Reason: "questionTypes is required"}
	}
	if req.Subject == "" {
		return &InvalidRequestError{Reason: "subject is required"}
	}
	switch req.Difficulty {
	case "easy", "medium", "hard":
	case "":
		return &InvalidRequestError{Reason: "difficulty is required"}
	default:
		return &InvalidRequestError{Reason: "difficulty must be one of easy, medium, hard"}
	}

	total := 0
	for tag, count := range req.QuestionTypes {
		if count < 0 {
			return &InvalidRequestError{Reason: fmt.Sprintf("question count for %s must not be negative", tag)}
		}
		total += count
	}
	if total == 0 {
		return &InvalidRequestError{Reason: "at least one question must be requested"}
	}

	return nil
}
