package library

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/quizdex/internal/domain"
	"github.com/kailas-cloud/quizdex/internal/index"
	"github.com/kailas-cloud/quizdex/internal/storage"
)

// --- Mocks ---

// memStore is an in-memory storage.Store with per-path failure injection.
type memStore struct {
	objects map[string][]byte
	failPut map[string]error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte), failPut: make(map[string]error)}
}

func (m *memStore) Put(_ context.Context, path string, data []byte) error {
	if err := m.failPut[path]; err != nil {
		return err
	}
	m.objects[path] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Get(_ context.Context, path string) ([]byte, error) {
	data, ok := m.objects[path]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return data, nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]string, error) {
	var paths []string
	for p := range m.objects {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func (m *memStore) Delete(_ context.Context, path string) error {
	delete(m.objects, path)
	return nil
}

func (m *memStore) Ping(_ context.Context) error { return nil }

func (m *memStore) Close() {}

func (m *memStore) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// --- Helpers ---

func testIndexData(t *testing.T, texts []string, dim int) []byte {
	t.Helper()
	passages := make([]domain.Passage, len(texts))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		passages[i] = domain.Passage{Seq: i, Source: "doc.txt", End: len(text), Text: text}
		vectors[i] = make([]float32, dim)
		vectors[i][0] = float32(i + 1)
	}
	idx, err := index.Build(passages, vectors)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	return data
}

func testManifest(id string, passages, dim int) domain.Manifest {
	return domain.Manifest{
		ID:           id,
		CreatedAt:    time.Now().UnixMilli(),
		Model:        "test-model",
		Dimensions:   dim,
		PassageCount: passages,
		Documents:    []string{"doc.txt"},
	}
}

// --- Tests ---

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newMemStore()
	repo := New(store, zap.NewNop())
	ctx := context.Background()

	indexData := testIndexData(t, []string{"first", "second"}, 4)
	docs := []domain.Upload{{Filename: "doc.txt", Data: []byte("raw bytes")}}

	if err := repo.Save(ctx, testManifest("lib-1", 2, 4), docs, indexData); err != nil {
		t.Fatalf("Save: %v", err)
	}

	lib, err := repo.Load(ctx, "lib-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lib.Index.Len() != 2 {
		t.Errorf("index len = %d", lib.Index.Len())
	}
	p, _ := lib.Index.Get(1)
	if p.Text != "second" {
		t.Errorf("passage 1 text = %q", p.Text)
	}
	if lib.Manifest.ID != "lib-1" || lib.Manifest.Dimensions != 4 {
		t.Errorf("manifest = %+v", lib.Manifest)
	}

	// Staging namespace is cleaned up after publish.
	staged, _ := store.List(ctx, "staging/")
	if len(staged) != 0 {
		t.Errorf("staging not cleaned: %v", staged)
	}

	data, err := repo.GetDocument(ctx, "lib-1", "doc.txt")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if string(data) != "raw bytes" {
		t.Errorf("document = %q", data)
	}
}

func TestLoad_NotFound(t *testing.T) {
	repo := New(newMemStore(), zap.NewNop())

	_, err := repo.Load(context.Background(), "unknown")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_MissingArtifactIsCorrupt(t *testing.T) {
	store := newMemStore()
	repo := New(store, zap.NewNop())
	ctx := context.Background()

	if err := repo.Save(ctx, testManifest("lib-1", 1, 4),
		nil, testIndexData(t, []string{"p"}, 4)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "lib-1/index.bin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err := repo.Load(ctx, "lib-1")
	if !errors.Is(err, domain.ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestLoad_TruncatedArtifact(t *testing.T) {
	store := newMemStore()
	repo := New(store, zap.NewNop())
	ctx := context.Background()

	indexData := testIndexData(t, []string{"p"}, 4)
	if err := repo.Save(ctx, testManifest("lib-1", 1, 4), nil, indexData); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.objects["lib-1/index.bin"] = indexData[:len(indexData)-3]

	_, err := repo.Load(ctx, "lib-1")
	if !errors.Is(err, domain.ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestLoad_DimMismatchIsCorrupt(t *testing.T) {
	store := newMemStore()
	repo := New(store, zap.NewNop())
	ctx := context.Background()

	// Manifest claims dim 8, artifact holds dim 4.
	if err := repo.Save(ctx, testManifest("lib-1", 1, 8),
		nil, testIndexData(t, []string{"p"}, 4)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err := repo.Load(ctx, "lib-1")
	if !errors.Is(err, domain.ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestSave_FailureLeavesNothingListable(t *testing.T) {
	store := newMemStore()
	store.failPut["staging/lib-1/index.bin"] = errors.New("disk full")
	repo := New(store, zap.NewNop())
	ctx := context.Background()

	docs := []domain.Upload{{Filename: "doc.txt", Data: []byte("x")}}
	err := repo.Save(ctx, testManifest("lib-1", 1, 4), docs, testIndexData(t, []string{"p"}, 4))
	if err == nil {
		t.Fatal("expected Save to fail")
	}

	ids, lerr := repo.List(ctx)
	if lerr != nil {
		t.Fatalf("List: %v", lerr)
	}
	if len(ids) != 0 {
		t.Errorf("failed save is listable: %v", ids)
	}
	if len(store.objects) != 0 {
		t.Errorf("orphaned artifacts remain: %v", store.objects)
	}
}

func TestSave_ManifestPublishFailureDiscardsAll(t *testing.T) {
	store := newMemStore()
	store.failPut["lib-1/manifest.json"] = errors.New("connection reset")
	repo := New(store, zap.NewNop())
	ctx := context.Background()

	docs := []domain.Upload{{Filename: "doc.txt", Data: []byte("x")}}
	err := repo.Save(ctx, testManifest("lib-1", 1, 4), docs, testIndexData(t, []string{"p"}, 4))
	if err == nil {
		t.Fatal("expected Save to fail")
	}

	if len(store.objects) != 0 {
		t.Errorf("partial publish left artifacts: %v", store.objects)
	}
	if _, err := repo.Load(ctx, "lib-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after failed publish, got %v", err)
	}
}

func TestList(t *testing.T) {
	store := newMemStore()
	repo := New(store, zap.NewNop())
	ctx := context.Background()

	for _, id := range []string{"lib-b", "lib-a"} {
		if err := repo.Save(ctx, testManifest(id, 1, 4),
			nil, testIndexData(t, []string{"p"}, 4)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	// An in-flight library (staged only) is not listed.
	store.objects["staging/lib-c/index.bin"] = []byte("x")

	ids, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"lib-a", "lib-b"}
	if len(ids) != 2 || ids[0] != want[0] || ids[1] != want[1] {
		t.Errorf("List = %v, want %v", ids, want)
	}
}

func TestGetManifest(t *testing.T) {
	store := newMemStore()
	repo := New(store, zap.NewNop())
	ctx := context.Background()

	if err := repo.Save(ctx, testManifest("lib-1", 1, 4),
		nil, testIndexData(t, []string{"p"}, 4)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m, err := repo.GetManifest(ctx, "lib-1")
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if m.PassageCount != 1 || m.Model != "test-model" {
		t.Errorf("manifest = %+v", m)
	}

	if _, err := repo.GetManifest(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
