package client

import (
	"errors"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{400, ErrorClassClient},
		{401, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassRateLimit},
		{500, ErrorClassServer},
		{502, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{ErrorClassClient, false},
		{ErrorClassDecode, false},
	}

	for _, tt := range tests {
		if got := shouldRetry(tt.class); got != tt.want {
			t.Errorf("shouldRetry(%s) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{
		Endpoint:   "scoreboardv3",
		StatusCode: 503,
		Class:      ErrorClassServer,
		Attempts:   4,
		Message:    "503 Service Unavailable",
	}

	msg := err.Error()
	for _, want := range []string{"scoreboardv3", "503", "4 attempts", "server"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &APIError{Endpoint: "scoreboardv3", Class: ErrorClassNetwork, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("APIError must unwrap to its cause")
	}
}
