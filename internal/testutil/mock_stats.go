// Package testutil provides testing utilities for the stats API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior of one mock stats endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockStats is a configurable mock stats API server for testing. It
// tracks request counts and the maximum number of concurrently in-flight
// requests, which is how concurrency-limit tests observe the gate.
type MockStats struct {
	server    *httptest.Server
	mu        sync.Mutex
	handlers  map[string]func(w http.ResponseWriter, r *http.Request)
	sequences map[string][]MockResponse

	requestCount int
	pathCounts   map[string]int
	inFlight     int
	maxInFlight  int
}

// NewMockStats creates a new mock stats server.
func NewMockStats() *MockStats {
	mock := &MockStats{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		sequences:  make(map[string][]MockResponse),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.inFlight++
		if mock.inFlight > mock.maxInFlight {
			mock.maxInFlight = mock.inFlight
		}

		var resp *MockResponse
		if seq, ok := mock.sequences[r.URL.Path]; ok && len(seq) > 0 {
			resp = &seq[0]
			if len(seq) > 1 {
				mock.sequences[r.URL.Path] = seq[1:]
			}
		}
		handler := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		defer func() {
			mock.mu.Lock()
			mock.inFlight--
			mock.mu.Unlock()
		}()

		switch {
		case resp != nil:
			writeResponse(w, *resp)
		case handler != nil:
			handler(w, r)
		default:
			mock.defaultHandler(w, r)
		}
	}))

	return mock
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// URL returns the mock server URL.
func (m *MockStats) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockStats) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a specific path.
func (m *MockStats) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockStats) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetSequence configures per-request responses for a path: the first
// request gets the first response and so on, with the final response
// repeated once the sequence is exhausted. Used to script fail-then-
// succeed scenarios.
func (m *MockStats) SetSequence(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[path] = responses
}

// RequestCount returns the total number of requests served.
func (m *MockStats) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// PathCount returns the number of requests served for one path.
func (m *MockStats) PathCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pathCounts[path]
}

// MaxInFlight returns the highest number of concurrently in-flight
// requests observed so far.
func (m *MockStats) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// defaultHandler serves an empty tabular payload.
func (m *MockStats) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(TabularBody("Default", []string{"id"}, [][]any{})))
}

// TabularBody builds a resultSets payload with one named block.
func TabularBody(name string, headers []string, rows [][]any) string {
	payload := map[string]any{
		"resultSets": []any{
			map[string]any{
				"name":    name,
				"headers": headers,
				"rowSet":  rows,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal tabular body: %v", err))
	}
	return string(body)
}

// NewTabularResponse creates a 200 OK response carrying one tabular
// block.
func NewTabularResponse(name string, headers []string, rows [][]any) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       TabularBody(name, headers, rows),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
// retryAfter is the Retry-After header value; empty omits the header.
func NewRateLimitResponse(retryAfter string) MockResponse {
	headers := map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}
	if retryAfter != "" {
		headers["Retry-After"] = retryAfter
	}
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers:    headers,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "Resource not found"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
