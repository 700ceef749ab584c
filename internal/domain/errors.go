package domain

import "errors"

var (
	// ErrNotFound signals an unknown library id.
	ErrNotFound = errors.New("library not found")
	// ErrEmptyLibrary signals a library with zero passages.
	ErrEmptyLibrary = errors.New("library has no passages")
	// ErrEmptyIndex signals a sample from an index holding zero passages.
	ErrEmptyIndex = errors.New("index is empty")
	// ErrValidation signals rejected user input (e.g. an upload with no files).
	ErrValidation = errors.New("validation failed")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrCorruptIndex signals a missing, truncated, or inconsistent index artifact.
	ErrCorruptIndex = errors.New("corrupt index artifact")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generative provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrExtractionFailed signals a text extraction failure.
	ErrExtractionFailed = errors.New("text extraction failed")
)
