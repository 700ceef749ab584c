// Package quiz runs the stateless quiz flow: Ask draws a random passage and
// generates a question from it; Evaluate retrieves the passages closest to a
// question/answer pair and grades the answer against them.
package quiz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/quizdex/internal/domain"
)

// DefaultRetrievalK is the number of passages retrieved for grading.
const DefaultRetrievalK = 3

// Service handles quiz interactions. It keeps no per-session state; the
// client carries the question between Ask and Evaluate.
type Service struct {
	libs      LibraryReader
	embedder  Embedder
	generator Generator
	logger    *zap.Logger
}

// New creates a quiz service.
func New(libs LibraryReader, embedder Embedder, generator Generator, logger *zap.Logger) *Service {
	return &Service{
		libs:      libs,
		embedder:  embedder,
		generator: generator,
		logger:    logger,
	}
}

// Ask generates a quiz question from one randomly drawn passage of the
// library. The drawn passage is not returned and not retained.
func (s *Service) Ask(ctx context.Context, libraryID string) (string, error) {
	lib, err := s.libs.Load(ctx, libraryID)
	if err != nil {
		return "", fmt.Errorf("load library: %w", err)
	}
	if lib.Index.Len() == 0 {
		return "", fmt.Errorf("library %s: %w", libraryID, domain.ErrEmptyLibrary)
	}

	passage, err := lib.Index.SampleRandom()
	if err != nil {
		return "", fmt.Errorf("sample passage: %w", err)
	}

	result, err := s.generator.Generate(ctx, questionInstruction,
		fmt.Sprintf(questionTemplate, passage.Text))
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}

	s.logger.Debug("Question generated",
		zap.String("library_id", libraryID),
		zap.Int("passage_seq", passage.Seq),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return strings.TrimSpace(result.Text), nil
}

// Evaluate grades an answer to a previously asked question. Retrieval uses
// the combined question and answer text; the grading verdict is returned
// verbatim.
func (s *Service) Evaluate(ctx context.Context, libraryID, question, answer string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question must not be empty: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("answer must not be empty: %w", domain.ErrValidation)
	}

	lib, err := s.libs.Load(ctx, libraryID)
	if err != nil {
		return "", fmt.Errorf("load library: %w", err)
	}
	if lib.Index.Len() == 0 {
		return "", fmt.Errorf("library %s: %w", libraryID, domain.ErrEmptyLibrary)
	}

	embedded, err := s.embedder.Embed(ctx, question+"\n"+answer)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	k := DefaultRetrievalK
	if n := lib.Index.Len(); n < k {
		k = n
	}

	hits, err := lib.Index.Query(embedded.Embedding, k)
	if err != nil {
		return "", fmt.Errorf("query index: %w", err)
	}

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Passage.Text
	}
	excerpts := strings.Join(texts, "\n\n")

	result, err := s.generator.Generate(ctx, gradingInstruction,
		fmt.Sprintf(gradingTemplate, excerpts, question, answer))
	if err != nil {
		return "", fmt.Errorf("generate evaluation: %w", err)
	}

	s.logger.Debug("Answer evaluated",
		zap.String("library_id", libraryID),
		zap.Int("retrieved", len(hits)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result.Text, nil
}
