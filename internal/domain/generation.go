package domain

import "context"

// Generator is the generative text provider contract. Instruction is the fixed
// task template; user carries the request-specific content (context passage,
// question/answer, etc.).
type Generator interface {
	Generate(ctx context.Context, instruction, user string) (GenerationResult, error)
}

// GenerationResult carries the generated text and token usage.
type GenerationResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}
