package quizdex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// LibrariesService manages quiz libraries.
type LibrariesService struct {
	client *Client
}

// File is a document to upload into a library.
type File struct {
	Name string
	Data []byte
}

// CreateResult describes a newly created library.
type CreateResult struct {
	LibraryID    string   `json:"library_id"`
	PassageCount int      `json:"passage_count"`
	Documents    []string `json:"documents"`
}

// LibraryInfo describes an existing library.
type LibraryInfo struct {
	LibraryID    string    `json:"library_id"`
	CreatedAt    time.Time `json:"created_at"`
	Model        string    `json:"model"`
	Dimensions   int       `json:"dimensions"`
	PassageCount int       `json:"passage_count"`
	Documents    []string  `json:"documents"`
}

// Create uploads documents and builds a new library from them.
// At least one file is required; supported formats are .txt, .md
// and .pdf.
func (s *LibrariesService) Create(ctx context.Context, files ...File) (CreateResult, error) {
	if len(files) == 0 {
		return CreateResult{}, fmt.Errorf("%w: at least one file is required", ErrValidation)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return CreateResult{}, fmt.Errorf("quizdex: build multipart body: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return CreateResult{}, fmt.Errorf("quizdex: build multipart body: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return CreateResult{}, fmt.Errorf("quizdex: build multipart body: %w", err)
	}

	var result CreateResult
	err := s.client.doJSON(ctx, http.MethodPost, "/api/v1/libraries", &buf, mw.FormDataContentType(), &result)
	return result, err
}

// List returns the ids of all published libraries.
func (s *LibrariesService) List(ctx context.Context) ([]string, error) {
	var body struct {
		Items []string `json:"items"`
	}
	if err := s.client.doJSON(ctx, http.MethodGet, "/api/v1/libraries", nil, "", &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// Get returns a library's manifest.
func (s *LibrariesService) Get(ctx context.Context, libraryID string) (LibraryInfo, error) {
	var info LibraryInfo
	err := s.client.doJSON(ctx, http.MethodGet, "/api/v1/libraries/"+url.PathEscape(libraryID), nil, "", &info)
	return info, err
}

// Document downloads an original document from a library.
func (s *LibrariesService) Document(ctx context.Context, libraryID, filename string) ([]byte, error) {
	path := "/api/v1/libraries/" + url.PathEscape(libraryID) + "/documents/" + url.PathEscape(filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	s.client.setHeaders(req)

	resp, err := s.client.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quizdex: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}
