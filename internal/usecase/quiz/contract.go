package quiz

import (
	"context"

	"github.com/kailas-cloud/quizdex/internal/domain"
	"github.com/kailas-cloud/quizdex/internal/repository/library"
)

// LibraryReader loads published libraries with their indexes.
type LibraryReader interface {
	Load(ctx context.Context, id string) (library.Library, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces quiz text from an instruction and a user turn.
type Generator interface {
	Generate(ctx context.Context, instruction, user string) (domain.GenerationResult, error)
}
