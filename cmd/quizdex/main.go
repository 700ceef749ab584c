package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chunkpkg "github.com/kailas-cloud/quizdex/internal/chunk"
	"github.com/kailas-cloud/quizdex/internal/config"
	"github.com/kailas-cloud/quizdex/internal/domain"
	logpkg "github.com/kailas-cloud/quizdex/internal/logger"
	"github.com/kailas-cloud/quizdex/internal/metrics"
	"github.com/kailas-cloud/quizdex/internal/repository/embcache"
	libraryrepo "github.com/kailas-cloud/quizdex/internal/repository/library"
	"github.com/kailas-cloud/quizdex/internal/storage"
	storageFs "github.com/kailas-cloud/quizdex/internal/storage/fs"
	storageRedis "github.com/kailas-cloud/quizdex/internal/storage/redis"
	chiTransport "github.com/kailas-cloud/quizdex/internal/transport/chi"
	"github.com/kailas-cloud/quizdex/internal/transport/extract"
	openaiTransport "github.com/kailas-cloud/quizdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/quizdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/quizdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/quizdex/internal/usecase/ingest"
	quizuc "github.com/kailas-cloud/quizdex/internal/usecase/quiz"
	"github.com/kailas-cloud/quizdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting quizdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// Create object store based on driver
	var store storage.Store
	switch cfg.Storage.Driver {
	case "redis":
		store, err = storageRedis.NewStore(storageRedis.Config{
			Addrs:     cfg.Storage.Addrs,
			Password:  cfg.Storage.Password,
			KeyPrefix: cfg.Storage.KeyPrefix,
		})
	case "fs":
		store, err = storageFs.NewStore(cfg.Storage.Root)
	default:
		logger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create object store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the store to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Object store not ready", zap.Error(err))
	}
	logger.Info("Connected to object store")

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	// Build embedder chains — composition root
	docEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, store, logger)
	queryEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		Provider:    cfg.Generation.Provider,
		Logger:      logger,
	})

	extractor := extract.New(&extract.Config{
		BaseURL: cfg.Extraction.BaseURL,
		Timeout: time.Duration(cfg.Extraction.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	splitter, err := chunkpkg.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		logger.Fatal("Invalid chunker settings", zap.Error(err))
	}

	// Repositories and use case services
	libRepo := libraryrepo.New(store, logger)

	ingestSvc := ingestuc.New(extractor, docEmbedder, splitter, libRepo, cfg.Embedding.Model, logger)
	quizSvc := quizuc.New(libRepo, queryEmbedder, generator, logger)

	var extractionChecker healthuc.ProviderChecker
	if cfg.Extraction.BaseURL != "" {
		extractionChecker = extractor
	}
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(docEmbedder), extractionChecker)

	// Create chi server
	server := chiTransport.NewServer(
		ingestSvc, libRepo, quizSvc, healthSvc, cfg.Ingest.MaxUploadBytes, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker unwraps the decorator chain to the transport-level health check.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// batchCapableEmbedder is what both ends of the pipeline need: single-text
// embedding for queries, batch embedding for ingestion. Every decorator in
// the chain implements both.
type batchCapableEmbedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	embCfg config.EmbeddingConfig,
	instruction string,
	store storage.Store,
	logger *zap.Logger,
) batchCapableEmbedder {
	// Base provider (with transport metrics built-in)
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     embCfg.APIKey,
		BaseURL:    embCfg.BaseURL,
		Model:      embCfg.Model,
		Dimensions: embCfg.Dimensions,
		Provider:   embCfg.Provider,
		Logger:     logger,
	})

	// Cached
	var embedder batchCapableEmbedder = base
	if store != nil {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	// Instrumented (logging + batch chunking)
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, embCfg.Provider, embCfg.Model, logger)

	// Instruction prefix (outermost — cache key includes instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.NewContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
