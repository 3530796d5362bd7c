package quizgen

import (
	"errors"
	"fmt"
	"time"

	"quizgod-api/internal/middleware/ratelimit"
)

var (
	// ErrMissingUserID means no caller identity was supplied.
	ErrMissingUserID = errors.New("userId is required")

	// ErrNotConfigured means the generation provider credentials are absent.
	ErrNotConfigured = errors.New("generation provider is not configured")

	// ErrEmptyOutput means the provider responded but produced no usable text.
	ErrEmptyOutput = errors.New("provider returned no usable content")
)

// InvalidRequestError reports a missing or malformed request field.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return e.Reason
}

// RateLimitError reports an exhausted quota window.
type RateLimitError struct {
	RetryAfter time.Duration
	Decision   ratelimit.Decision
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded"
}

// PremiumRequiredError reports a request that needs a premium subscription,
// either for a gated question type or for exceeding the free question cap.
// Exactly one of QuestionType and QuestionCap is set.
type PremiumRequiredError struct {
	QuestionType string
	QuestionCap  int
}

func (e *PremiumRequiredError) Error() string {
	if e.QuestionType != "" {
		return fmt.Sprintf("%s questions require a premium subscription", e.QuestionType)
	}
	return fmt.Sprintf("free accounts are limited to %d questions per quiz", e.QuestionCap)
}

// ProviderError wraps a failed call to the generation provider.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
