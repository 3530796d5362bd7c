package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizgod-api/internal/middleware/ratelimit"
	"quizgod-api/internal/models"
	"quizgod-api/internal/quizgen"
)

type fakeEntitlements struct {
	premium map[string]bool
}

func (f *fakeEntitlements) IsPremium(ctx context.Context, userID string) (bool, error) {
	return f.premium[userID], nil
}

type fakeCompleter struct {
	output string
	err    error
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f.output, f.err
}

type fakeUserStore struct {
	stats map[string]*models.UserStats
}

func (f *fakeUserStore) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	stats, ok := f.stats[userID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return stats, nil
}

func (f *fakeUserStore) Ping(ctx context.Context) error { return nil }

type fakeGenerationStore struct {
	mu    sync.Mutex
	saved []*models.Generation
	done  chan struct{}
}

func (f *fakeGenerationStore) SaveGeneration(ctx context.Context, gen *models.Generation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, gen)
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	return nil
}

func newTestHandler(completer quizgen.Completer, premium map[string]bool) *Handler {
	limiter := ratelimit.NewRateLimiter(ratelimit.Config{})
	pipeline := quizgen.NewService(&fakeEntitlements{premium: premium}, limiter, completer, 0, 0)
	return NewHandler(pipeline, &fakeUserStore{stats: map[string]*models.UserStats{}}, nil, nil)
}

func doGenerate(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/quiz/generate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.GenerateQuiz(e.NewContext(req, rec)))
	return rec
}

const validBody = `{
	"userId": "u1",
	"pdfText": "The cell is the basic unit of life.",
	"questionTypes": {"multiple-choice": 3, "true-false": 2},
	"difficulty": "easy",
	"subject": "Biology"
}`

func TestGenerateQuizSuccess(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "Sure thing!\n1. Q?\nA) x\nB) y*\nGood luck!"}, nil)

	rec := doGenerate(t, h, validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.GenerateQuizResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "1. Q?\nA) x\nB) y*", resp.GeneratedText)
	assert.Equal(t, 2, resp.RateLimit.Remaining)
	assert.Equal(t, 3, resp.RateLimit.Limit)

	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
}

func TestGenerateQuizFourthCallRateLimited(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)

	for i := 0; i < 3; i++ {
		rec := doGenerate(t, h, validBody)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doGenerate(t, h, validBody)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 60, resp.RetryAfter)
	assert.NotEmpty(t, resp.Error)

	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestGenerateQuizMissingUserID(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)

	body := strings.Replace(validBody, `"userId": "u1",`, "", 1)
	rec := doGenerate(t, h, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateQuizMissingField(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)

	body := strings.Replace(validBody, `"subject": "Biology"`, `"subject": ""`, 1)
	rec := doGenerate(t, h, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateQuizInvalidJSON(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)

	rec := doGenerate(t, h, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateQuizGatedTypeForbidden(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)

	body := strings.Replace(validBody, `"true-false": 2`, `"true-false": 2, "fill-blank": 1`, 1)
	rec := doGenerate(t, h, body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.PremiumRequired)
	assert.Zero(t, resp.Limit)
}

func TestGenerateQuizFreeCapForbidden(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)

	body := strings.Replace(validBody,
		`{"multiple-choice": 3, "true-false": 2}`,
		`{"multiple-choice": 8, "true-false": 3}`, 1)
	rec := doGenerate(t, h, body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.PremiumRequired)
	assert.Equal(t, 10, resp.Limit)
}

func TestGenerateQuizPremiumUserPassesGates(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, map[string]bool{"u1": true})

	body := strings.Replace(validBody,
		`{"multiple-choice": 3, "true-false": 2}`,
		`{"multiple-choice": 10, "true-false": 5, "fill-blank": 5}`, 1)
	rec := doGenerate(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.GenerateQuizResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 29, resp.RateLimit.Remaining)
	assert.Equal(t, 30, resp.RateLimit.Limit)
}

func TestGenerateQuizProviderFailure(t *testing.T) {
	h := newTestHandler(&fakeCompleter{err: errors.New("upstream down")}, nil)

	rec := doGenerate(t, h, validBody)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AI generation failed. Please try again.", resp.Error)
	assert.NotContains(t, resp.Error, "upstream down", "provider details must not leak")
}

func TestGenerateQuizProviderNotConfigured(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := doGenerate(t, h, validBody)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AI generation failed. Please try again.", resp.Error)
}

func TestGenerateQuizPersistsAuditRecord(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)
	store := &fakeGenerationStore{done: make(chan struct{})}
	done := store.done
	h.generations = store

	rec := doGenerate(t, h, validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("generation record was not persisted")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.saved, 1)
	assert.Equal(t, "u1", store.saved[0].UserID)
	assert.Equal(t, "Biology", store.saved[0].Subject)
	assert.Equal(t, 5, store.saved[0].QuestionCount)
}

func TestGetUserStats(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)
	h.users = &fakeUserStore{stats: map[string]*models.UserStats{
		"u1": {UserID: "u1", IsPremium: true, GenerationCount: 4, QuestionsCreated: 20},
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user/stats", nil)
	req.Header.Set("X-User-Id", "u1")
	rec := httptest.NewRecorder()

	require.NoError(t, h.GetUserStats(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.UserStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.True(t, stats.IsPremium)
	assert.Equal(t, 4, stats.GenerationCount)
}

func TestGetUserStatsMissingHeader(t *testing.T) {
	h := newTestHandler(&fakeCompleter{output: "1. Q?\nA) x*"}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user/stats", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.GetUserStats(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
