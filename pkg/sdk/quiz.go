package quizdex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// QuizService generates questions and grades answers for one library.
type QuizService struct {
	client    *Client
	libraryID string
}

// Ask generates an exam question from a random passage of the library.
func (s *QuizService) Ask(ctx context.Context) (string, error) {
	var body struct {
		Question string `json:"question"`
	}
	path := "/api/v1/libraries/" + url.PathEscape(s.libraryID) + "/ask"
	if err := s.client.doJSON(ctx, http.MethodPost, path, nil, "", &body); err != nil {
		return "", err
	}
	return body.Question, nil
}

// Evaluate grades an answer to a question against the library content.
func (s *QuizService) Evaluate(ctx context.Context, question, answer string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question must not be empty", ErrValidation)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%w: answer must not be empty", ErrValidation)
	}

	payload, err := json.Marshal(map[string]string{
		"question": question,
		"answer":   answer,
	})
	if err != nil {
		return "", fmt.Errorf("quizdex: encode request: %w", err)
	}

	var body struct {
		Evaluation string `json:"evaluation"`
	}
	path := "/api/v1/libraries/" + url.PathEscape(s.libraryID) + "/evaluate"
	if err := s.client.doJSON(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json", &body); err != nil {
		return "", err
	}
	return body.Evaluation, nil
}
