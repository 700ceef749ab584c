// Package ingest builds libraries: it extracts uploaded documents, chunks
// them into passages, embeds the passages, and publishes the resulting
// library through the repository.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quizdex/internal/chunk"
	"github.com/kailas-cloud/quizdex/internal/domain"
	"github.com/kailas-cloud/quizdex/internal/index"
	"github.com/kailas-cloud/quizdex/internal/metrics"
)

// Service handles library creation.
type Service struct {
	extractor Extractor
	embedder  BatchEmbedder
	splitter  *chunk.Splitter
	repo      LibraryWriter
	model     string
	logger    *zap.Logger
}

// New creates an ingest service. model is recorded in manifests so a loaded
// library can be checked against the configured embedding model.
func New(
	extractor Extractor, embedder BatchEmbedder, splitter *chunk.Splitter,
	repo LibraryWriter, model string, logger *zap.Logger,
) *Service {
	return &Service{
		extractor: extractor,
		embedder:  embedder,
		splitter:  splitter,
		repo:      repo,
		model:     model,
		logger:    logger,
	}
}

// Create builds and publishes a library from uploaded files. The returned
// manifest describes the published library. Nothing becomes visible on
// failure.
func (s *Service) Create(ctx context.Context, uploads []domain.Upload) (domain.Manifest, error) {
	if err := validateUploads(uploads); err != nil {
		return domain.Manifest{}, err
	}

	start := time.Now()

	docs := make([]domain.ExtractedDocument, 0, len(uploads))
	for _, up := range uploads {
		doc, err := s.extractor.Extract(ctx, up)
		if err != nil {
			return domain.Manifest{}, fmt.Errorf("extract %s: %w", up.Filename, err)
		}
		docs = append(docs, doc)
	}

	passages := s.splitter.Split(docs)
	if len(passages) == 0 {
		return domain.Manifest{}, fmt.Errorf("uploads contain no extractable text: %w", domain.ErrValidation)
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	embedded, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("embed passages: %w", err)
	}
	if len(embedded.Embeddings) != len(passages) {
		return domain.Manifest{}, fmt.Errorf("embedder returned %d vectors for %d passages: %w",
			len(embedded.Embeddings), len(passages), domain.ErrEmbeddingProviderError)
	}

	idx, err := index.Build(passages, embedded.Embeddings)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("build index: %w", err)
	}

	indexData, err := idx.MarshalBinary()
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("serialize index: %w", err)
	}

	manifest := domain.Manifest{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UnixMilli(),
		Model:        s.model,
		Dimensions:   idx.Dimensions(),
		PassageCount: idx.Len(),
		Documents:    filenames(uploads),
	}

	if err := s.repo.Save(ctx, manifest, uploads, indexData); err != nil {
		return domain.Manifest{}, fmt.Errorf("save library: %w", err)
	}

	metrics.LibrariesCreatedTotal.Inc()
	metrics.PassagesIngestedTotal.Add(float64(len(passages)))

	s.logger.Info("Library created",
		zap.String("library_id", manifest.ID),
		zap.Int("documents", len(uploads)),
		zap.Int("passages", len(passages)),
		zap.Int("dimensions", manifest.Dimensions),
		zap.Int("embedding_tokens", embedded.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return manifest, nil
}

func validateUploads(uploads []domain.Upload) error {
	if len(uploads) == 0 {
		return fmt.Errorf("no files uploaded: %w", domain.ErrValidation)
	}
	for _, up := range uploads {
		if up.Filename == "" {
			return fmt.Errorf("upload without filename: %w", domain.ErrValidation)
		}
		if len(up.Data) == 0 {
			return fmt.Errorf("uploaded file %s is empty: %w", up.Filename, domain.ErrValidation)
		}
	}
	return nil
}

func filenames(uploads []domain.Upload) []string {
	names := make([]string, len(uploads))
	for i, up := range uploads {
		names[i] = up.Filename
	}
	return names
}
