package quizdex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient builds a Client against a handler-backed test server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestLibraries_Create(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/libraries" {
			t.Errorf("%s %s, want POST /api/v1/libraries", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Fatalf("got %d files, want 2", len(files))
		}
		if files[0].Filename != "a.txt" || files[1].Filename != "b.md" {
			t.Errorf("filenames = %q, %q", files[0].Filename, files[1].Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"library_id":"lib-1","passage_count":7,"documents":["a.txt","b.md"]}`))
	}))

	result, err := c.Libraries().Create(context.Background(),
		File{Name: "a.txt", Data: []byte("alpha")},
		File{Name: "b.md", Data: []byte("# beta")},
	)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.LibraryID != "lib-1" || result.PassageCount != 7 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Documents) != 2 {
		t.Errorf("documents = %v", result.Documents)
	}
}

func TestLibraries_Create_NoFiles(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := c.Libraries().Create(context.Background())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestLibraries_Create_ExtractionFailed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"code":"extraction_failed","message":"text extraction failed"}`))
	}))

	_, err := c.Libraries().Create(context.Background(), File{Name: "x.pdf", Data: []byte("%PDF")})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected *APIError")
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Code != "extraction_failed" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestLibraries_List(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":["lib-1","lib-2"]}`))
	}))

	ids, err := c.Libraries().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 || ids[0] != "lib-1" {
		t.Errorf("ids = %v", ids)
	}
}

func TestLibraries_Get(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/libraries/lib-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"library_id": "lib-1",
			"created_at": "2026-08-28T10:00:00Z",
			"model": "text-embedding-3-small",
			"dimensions": 1536,
			"passage_count": 42,
			"documents": ["notes.md"]
		}`))
	}))

	info, err := c.Libraries().Get(context.Background(), "lib-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.Model != "text-embedding-3-small" || info.Dimensions != 1536 {
		t.Errorf("info = %+v", info)
	}
	if info.CreatedAt.IsZero() {
		t.Error("created_at not parsed")
	}
}

func TestLibraries_Get_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"library_not_found","message":"library not found"}`))
	}))

	_, err := c.Libraries().Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLibraries_Document(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/libraries/lib-1/documents/notes.md" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("# notes"))
	}))

	data, err := c.Libraries().Document(context.Background(), "lib-1", "notes.md")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if string(data) != "# notes" {
		t.Errorf("data = %q", data)
	}
}

func TestQuiz_Ask(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/libraries/lib-1/ask" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"question":"What is a vector index?"}`))
	}))

	question, err := c.Quiz("lib-1").Ask(context.Background())
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if question != "What is a vector index?" {
		t.Errorf("question = %q", question)
	}
}

func TestQuiz_Ask_EmptyLibrary(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"library_empty","message":"library has no passages"}`))
	}))

	_, err := c.Quiz("lib-1").Ask(context.Background())
	if !errors.Is(err, ErrEmptyLibrary) {
		t.Fatalf("err = %v, want ErrEmptyLibrary", err)
	}
}

func TestQuiz_Evaluate(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/libraries/lib-1/evaluate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Question != "Q?" || req.Answer != "A." {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"evaluation":"Correct. The answer matches the source."}`))
	}))

	verdict, err := c.Quiz("lib-1").Evaluate(context.Background(), "Q?", "A.")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !strings.HasPrefix(verdict, "Correct.") {
		t.Errorf("verdict = %q", verdict)
	}
}

func TestQuiz_Evaluate_Validation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	tests := []struct {
		name     string
		question string
		answer   string
	}{
		{"empty question", "", "A."},
		{"blank question", "   ", "A."},
		{"empty answer", "Q?", ""},
		{"blank answer", "Q?", "\n\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Quiz("lib-1").Evaluate(context.Background(), tt.question, tt.answer)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestDecodeAPIError_NonJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream proxy error"))
	}))

	_, err := c.Libraries().List(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != "" || apiErr.Message != "upstream proxy error" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
