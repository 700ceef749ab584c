package quizdex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "localhost:8080"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q): expected error", raw)
		}
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := New("http://localhost:8080/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	c, err := New("http://localhost:8080")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.httpc.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", c.httpc.Timeout, defaultTimeout)
	}
}

func TestNew_WithTimeout(t *testing.T) {
	c, err := New("http://localhost:8080", WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.httpc.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.httpc.Timeout)
	}
}

func TestNew_WithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c, err := New("http://localhost:8080", WithHTTPClient(hc))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.httpc != hc {
		t.Error("expected the provided http client to be used")
	}
}

func TestClient_UserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithUserAgent("quizdex-sdk-test/1.0"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Libraries().List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotUA != "quizdex-sdk-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestAPIError_SentinelMapping(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"bad_request", ErrValidation},
		{"validation_failed", ErrValidation},
		{"library_not_found", ErrNotFound},
		{"library_empty", ErrEmptyLibrary},
		{"library_corrupt", ErrCorruptIndex},
		{"provider_error", ErrProvider},
		{"extraction_failed", ErrExtractionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &APIError{StatusCode: 400, Code: tt.code, Message: "m"}
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%q, %v) = false", tt.code, tt.want)
			}
		})
	}
}

func TestAPIError_UnknownCode(t *testing.T) {
	err := &APIError{StatusCode: 500, Code: "internal_error", Message: "internal error"}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		t.Error("unknown code must not match a sentinel")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Error("errors.As(*APIError) = false")
	}
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/readyz" {
			t.Errorf("path = %q, want /readyz", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"degraded","checks":{"storage":"ok","embedding":"error"}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	if status.Checks["embedding"] != "error" {
		t.Errorf("checks = %v", status.Checks)
	}
}
