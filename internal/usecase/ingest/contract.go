package ingest

import (
	"context"

	"github.com/kailas-cloud/quizdex/internal/domain"
)

// Extractor turns an uploaded file into page text.
type Extractor interface {
	Extract(ctx context.Context, upload domain.Upload) (domain.ExtractedDocument, error)
}

// BatchEmbedder vectorizes passage texts in bulk.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// LibraryWriter publishes a fully built library.
type LibraryWriter interface {
	Save(ctx context.Context, manifest domain.Manifest, docs []domain.Upload, indexData []byte) error
}
