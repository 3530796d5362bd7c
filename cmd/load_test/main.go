package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Drives concurrent quiz generation traffic at a running instance. Most
// responses are expected to be 429s: the point is to verify the rate
// limiter holds up under concurrency, not to burn provider quota.

type LoadTestResult struct {
	TotalRequests       int64
	SuccessfulRequests  int64
	RateLimitedRequests int64
	FailedRequests      int64
	TotalDuration       time.Duration
	AverageResponseTime time.Duration
	RequestsPerSecond   float64
}

type RequestResult struct {
	UserID     string
	Success    bool
	Duration   time.Duration
	Error      error
	StatusCode int
}

type generatePayload struct {
	UserID        string         `json:"userId"`
	PDFText       string         `json:"pdfText"`
	QuestionTypes map[string]int `json:"questionTypes"`
	Difficulty    string         `json:"difficulty"`
	Subject       string         `json:"subject"`
}

func main() {
	baseURL := "http://localhost:8080"
	if v := os.Getenv("LOAD_TEST_BASE_URL"); v != "" {
		baseURL = v
	}

	totalRequests := 500
	numUsers := 10
	concurrentWorkers := 50

	// For quick test
	if len(os.Args) > 1 && os.Args[1] == "quick" {
		totalRequests = 50
		concurrentWorkers = 10
		log.Println("QUICK TEST MODE: 50 requests, 10 concurrent workers")
	}

	userIDs := generateUserIDs(numUsers)
	log.Printf("Starting load test: %d requests from %d users against %s", totalRequests, numUsers, baseURL)

	result := runLoadTest(baseURL, totalRequests, userIDs, concurrentWorkers)

	printResults(result)
}

func generateUserIDs(count int) []string {
	userIDs := make([]string, count)
	for i := 0; i < count; i++ {
		userIDs[i] = fmt.Sprintf("loadtest_user_%d", i+1)
	}
	return userIDs
}

func runLoadTest(baseURL string, totalRequests int, userIDs []string, concurrentWorkers int) LoadTestResult {
	var (
		successfulRequests  int64
		rateLimitedRequests int64
		failedRequests      int64
		totalDuration       int64
	)

	requestChan := make(chan string, totalRequests)
	resultChan := make(chan RequestResult, totalRequests)

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < concurrentWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range requestChan {
				resultChan <- makeRequest(baseURL, userID)
			}
		}()
	}

	// Start result collector
	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for result := range resultChan {
			switch {
			case result.Success:
				atomic.AddInt64(&successfulRequests, 1)
			case result.StatusCode == http.StatusTooManyRequests:
				atomic.AddInt64(&rateLimitedRequests, 1)
			default:
				atomic.AddInt64(&failedRequests, 1)
			}
			atomic.AddInt64(&totalDuration, int64(result.Duration))
		}
	}()

	startTime := time.Now()

	for i := 0; i < totalRequests; i++ {
		requestChan <- userIDs[i%len(userIDs)]
	}

	close(requestChan)
	wg.Wait()
	close(resultChan)
	collectorWg.Wait()

	duration := time.Since(startTime)

	successful := atomic.LoadInt64(&successfulRequests)
	rateLimited := atomic.LoadInt64(&rateLimitedRequests)
	failed := atomic.LoadInt64(&failedRequests)
	total := atomic.LoadInt64(&totalDuration)

	avgTime := time.Duration(0)
	if totalRequests > 0 {
		avgTime = time.Duration(total / int64(totalRequests))
	}

	return LoadTestResult{
		TotalRequests:       int64(totalRequests),
		SuccessfulRequests:  successful,
		RateLimitedRequests: rateLimited,
		FailedRequests:      failed,
		TotalDuration:       duration,
		AverageResponseTime: avgTime,
		RequestsPerSecond:   float64(totalRequests) / duration.Seconds(),
	}
}

func makeRequest(baseURL, userID string) RequestResult {
	startTime := time.Now()

	payload := generatePayload{
		UserID:  userID,
		PDFText: "The cell is the basic structural and functional unit of all known organisms.",
		QuestionTypes: map[string]int{
			"multiple-choice": 3,
			"true-false":      2,
		},
		Difficulty: "easy",
		Subject:    "Biology",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return RequestResult{UserID: userID, Success: false, Error: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/quiz/generate", bytes.NewReader(body))
	if err != nil {
		return RequestResult{UserID: userID, Success: false, Error: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		return RequestResult{UserID: userID, Success: false, Duration: duration, Error: err}
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return RequestResult{UserID: userID, Success: false, Duration: duration, Error: err, StatusCode: resp.StatusCode}
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	return RequestResult{UserID: userID, Success: success, Duration: duration, StatusCode: resp.StatusCode}
}

func printResults(result LoadTestResult) {
	log.Println("Load test complete")
	log.Printf("  Total requests:      %d", result.TotalRequests)
	log.Printf("  Successful:          %d", result.SuccessfulRequests)
	log.Printf("  Rate limited (429):  %d", result.RateLimitedRequests)
	log.Printf("  Failed:              %d", result.FailedRequests)
	log.Printf("  Total duration:      %s", result.TotalDuration)
	log.Printf("  Avg response time:   %s", result.AverageResponseTime)
	log.Printf("  Requests per second: %.2f", result.RequestsPerSecond)
}
