// Package extract turns uploaded files into page text. Plain text formats
// are decoded in-process; PDF extraction is delegated to a sidecar HTTP
// service.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/quizdex/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Extractor extracts page text from uploaded documents.
type Extractor struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Config holds the extraction sidecar settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates a document extractor.
func New(cfg *Config) *Extractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

// extractResponse is the sidecar response format.
type extractResponse struct {
	Pages []string `json:"pages"`
	Error string   `json:"error,omitempty"`
}

// Extract returns the page texts of an uploaded file. Text formats yield a
// single page; PDFs go through the sidecar and keep page boundaries.
func (e *Extractor) Extract(ctx context.Context, upload domain.Upload) (domain.ExtractedDocument, error) {
	switch ext := strings.ToLower(filepath.Ext(upload.Filename)); ext {
	case ".txt", ".md":
		return domain.ExtractedDocument{
			Filename: upload.Filename,
			Pages:    []string{string(upload.Data)},
		}, nil
	case ".pdf":
		pages, err := e.extractRemote(ctx, upload)
		if err != nil {
			return domain.ExtractedDocument{}, err
		}
		return domain.ExtractedDocument{Filename: upload.Filename, Pages: pages}, nil
	default:
		return domain.ExtractedDocument{}, fmt.Errorf("unsupported file type %q: %w", ext, domain.ErrValidation)
	}
}

func (e *Extractor) extractRemote(ctx context.Context, upload domain.Upload) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", bytes.NewReader(upload.Data))
	if err != nil {
		return nil, fmt.Errorf("create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", upload.Filename)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extraction service: %w", domain.ErrExtractionFailed)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read extraction response: %w", domain.ErrExtractionFailed)
	}

	if resp.StatusCode != http.StatusOK {
		e.logger.Warn("extraction service error",
			zap.String("filename", upload.Filename),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("extraction service returned %d: %w", resp.StatusCode, domain.ErrExtractionFailed)
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", domain.ErrExtractionFailed)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("extraction failed: %s: %w", result.Error, domain.ErrExtractionFailed)
	}

	return result.Pages, nil
}

// HealthCheck checks that the extraction sidecar is reachable.
func (e *Extractor) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("extraction service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extraction service returned %d", resp.StatusCode)
	}
	return nil
}
