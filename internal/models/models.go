package models

import (
	"time"
)

// Question type tags accepted in GenerateQuizRequest.QuestionTypes.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
	TypeFillBlank      = "fill-blank"
)

// QuestionTypeOrder fixes the order in which type instructions appear in
// prompts, independent of map iteration order.
var QuestionTypeOrder = []string{TypeMultipleChoice, TypeTrueFalse, TypeFillBlank}

// PremiumQuestionTypes are the formats that require a premium subscription.
var PremiumQuestionTypes = map[string]bool{TypeFillBlank: true}

type GenerateQuizRequest struct {
	UserID        string         `json:"userId"`
	PDFText       string         `json:"pdfText"`
	QuestionTypes map[string]int `json:"questionTypes"`
	Difficulty    string         `json:"difficulty"`
	Subject       string         `json:"subject"`
}

// TotalQuestions sums the requested count across all question types.
func (r *GenerateQuizRequest) TotalQuestions() int {
	total := 0
	for _, n := range r.QuestionTypes {
		total += n
	}
	return total
}

type RateLimitInfo struct {
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

type GenerateQuizResponse struct {
	GeneratedText string        `json:"generatedText"`
	Success       bool          `json:"success"`
	RateLimit     RateLimitInfo `json:"rateLimit"`
}

// ErrorResponse is the JSON body for every non-2xx outcome. The optional
// fields are populated only for the error kinds that carry them.
type ErrorResponse struct {
	Error           string `json:"error"`
	RetryAfter      int    `json:"retryAfter,omitempty"`
	PremiumRequired bool   `json:"premiumRequired,omitempty"`
	Limit           int    `json:"limit,omitempty"`
}

type User struct {
	UserID    string    `json:"user_id" db:"user_id"`
	IsPremium bool      `json:"is_premium" db:"is_premium"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Generation is the audit record persisted after a successful generation.
type Generation struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Subject       string    `json:"subject" db:"subject"`
	Difficulty    string    `json:"difficulty" db:"difficulty"`
	QuestionCount int       `json:"question_count" db:"question_count"`
	Duration      float64   `json:"duration" db:"duration"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type UserStats struct {
	UserID           string `json:"user_id"`
	IsPremium        bool   `json:"is_premium"`
	GenerationCount  int    `json:"generation_count"`
	QuestionsCreated int    `json:"questions_created"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
}
