// Package chi exposes the HTTP API: library creation and browsing, the quiz
// ask/evaluate flow, health probes, and prometheus metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quizdex/internal/domain"
	healthuc "github.com/kailas-cloud/quizdex/internal/usecase/health"
)

// multipartMemoryLimit caps how much of a parsed upload stays in memory.
const multipartMemoryLimit = 32 << 20

// IngestService builds libraries from uploads.
type IngestService interface {
	Create(ctx context.Context, uploads []domain.Upload) (domain.Manifest, error)
}

// LibraryService reads published libraries.
type LibraryService interface {
	List(ctx context.Context) ([]string, error)
	GetManifest(ctx context.Context, id string) (domain.Manifest, error)
	GetDocument(ctx context.Context, id, filename string) ([]byte, error)
}

// QuizService runs the ask/evaluate flow.
type QuizService interface {
	Ask(ctx context.Context, libraryID string) (string, error)
	Evaluate(ctx context.Context, libraryID, question, answer string) (string, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// ErrorResponseCode classifies API errors for clients.
type ErrorResponseCode string

const (
	codeBadRequest       ErrorResponseCode = "bad_request"
	codeValidationFailed ErrorResponseCode = "validation_failed"
	codeLibraryNotFound  ErrorResponseCode = "library_not_found"
	codeLibraryEmpty     ErrorResponseCode = "library_empty"
	codeLibraryCorrupt   ErrorResponseCode = "library_corrupt"
	codeProviderError    ErrorResponseCode = "provider_error"
	codeExtractionFailed ErrorResponseCode = "extraction_failed"
	codeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the HTTP handlers.
type Server struct {
	ingest         IngestService
	libraries      LibraryService
	quiz           QuizService
	health         HealthService
	maxUploadBytes int64
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. maxUploadBytes caps the total size of
// a library creation request; zero means no cap.
func NewServer(
	ingest IngestService,
	libraries LibraryService,
	quiz QuizService,
	health HealthService,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:         ingest,
		libraries:      libraries,
		quiz:           quiz,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeLibraryNotFound),
		sentinelHandler(domain.ErrEmptyLibrary, http.StatusNotFound, codeLibraryEmpty),
		sentinelHandler(domain.ErrCorruptIndex, http.StatusInternalServerError, codeLibraryCorrupt),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, codeLibraryCorrupt),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusBadGateway, codeExtractionFailed),
	}
	return s
}

// Routes mounts all API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1/libraries", func(r chi.Router) {
		r.Post("/", s.CreateLibrary)
		r.Get("/", s.ListLibraries)
		r.Get("/{id}", s.GetLibrary)
		r.Get("/{id}/documents/{filename}", s.GetDocument)
		r.Post("/{id}/ask", s.Ask)
		r.Post("/{id}/evaluate", s.Evaluate)
	})
	r.Get("/healthz", s.Healthz)
	r.Get("/readyz", s.Readyz)
	r.Get("/metrics", s.Metrics)
}

// CreateLibrary handles POST /api/v1/libraries (multipart, field "files").
func (s *Server) CreateLibrary(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid multipart body: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "At least one file is required")
		return
	}

	uploads := make([]domain.Upload, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest,
				fmt.Sprintf("Read uploaded file %s: %s", fh.Filename, err))
			return
		}
		uploads = append(uploads, domain.Upload{Filename: fh.Filename, Data: data})
	}

	manifest, err := s.ingest.Create(r.Context(), uploads)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/libraries/"+manifest.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"library_id":    manifest.ID,
		"passage_count": manifest.PassageCount,
		"documents":     manifest.Documents,
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ListLibraries handles GET /api/v1/libraries.
func (s *Server) ListLibraries(w http.ResponseWriter, r *http.Request) {
	ids, err := s.libraries.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": ids})
}

// GetLibrary handles GET /api/v1/libraries/{id}.
func (s *Server) GetLibrary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	manifest, err := s.libraries.GetManifest(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"library_id":    manifest.ID,
		"created_at":    time.UnixMilli(manifest.CreatedAt).UTC(),
		"model":         manifest.Model,
		"dimensions":    manifest.Dimensions,
		"passage_count": manifest.PassageCount,
		"documents":     manifest.Documents,
	})
}

// GetDocument handles GET /api/v1/libraries/{id}/documents/{filename}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filename := chi.URLParam(r, "filename")

	data, err := s.libraries.GetDocument(r.Context(), id, filename)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Ask handles POST /api/v1/libraries/{id}/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	question, err := s.quiz.Ask(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"question": question})
}

type evaluateRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Evaluate handles POST /api/v1/libraries/{id}/evaluate.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	evaluation, err := s.quiz.Evaluate(r.Context(), id, req.Question, req.Answer)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"evaluation": evaluation})
}

// Healthz handles GET /healthz (liveness).
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz (readiness).
func (s *Server) Readyz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrEmptyLibrary,
		domain.ErrCorruptIndex,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
		domain.ErrExtractionFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
