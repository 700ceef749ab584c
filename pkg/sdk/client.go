package quizdex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// Client is the quizdex API client entry point.
type Client struct {
	baseURL   string
	httpc     *http.Client
	userAgent string
	logger    *slog.Logger
}

// New creates a quizdex Client for the service at baseURL,
// e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("quizdex: invalid base URL %q", baseURL)
	}

	httpc := cfg.httpClient
	if httpc == nil {
		timeout := cfg.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpc:     httpc,
		userAgent: cfg.userAgent,
		logger:    cfg.logger,
	}, nil
}

// Libraries returns the library management sub-service.
func (c *Client) Libraries() *LibrariesService {
	return &LibrariesService{client: c}
}

// Quiz returns the quiz sub-service bound to a library.
func (c *Client) Quiz(libraryID string) *QuizService {
	return &QuizService{client: c, libraryID: libraryID}
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// Health checks service readiness. A degraded service returns the
// report with a nil error; network failures return an error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("quizdex: health check: %w", err)
	}
	defer resp.Body.Close()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("quizdex: decode health response: %w", err)
	}
	return status, nil
}

// doJSON sends a request and decodes a JSON response into out.
// Non-2xx responses are decoded into *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("quizdex: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logRequest(method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("quizdex: decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func (c *Client) logRequest(method, path string, status int, elapsed time.Duration) {
	if c.logger == nil {
		return
	}
	c.logger.Debug("quizdex request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("elapsed", elapsed),
	)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		apiErr.Message = resp.Status
		return apiErr
	}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal(data, &body); jsonErr != nil || body.Code == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	apiErr.Code = body.Code
	apiErr.Message = body.Message
	return apiErr
}
