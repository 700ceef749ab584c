// Package library persists libraries in the object store and reconstructs
// them on load.
//
// Persisted layout under the store root:
//
//	{id}/docs/{filename}   verbatim uploaded document bytes
//	{id}/index.bin         serialized vector index artifact
//	{id}/manifest.json     written last; its presence marks the library published
//
// During creation all artifacts are staged under staging/{id}/ and copied to
// the final namespace only on full success, manifest last. A failed build
// discards the staged namespace and never becomes listable.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/quizdex/internal/domain"
	"github.com/kailas-cloud/quizdex/internal/index"
	"github.com/kailas-cloud/quizdex/internal/storage"
)

const (
	manifestName = "manifest.json"
	indexName    = "index.bin"
	docsDir      = "docs"
	stagingRoot  = "staging"
)

// Library is a loaded, read-only library: its manifest plus the reconstructed
// in-memory vector index.
type Library struct {
	Manifest domain.Manifest
	Index    *index.Index
}

// Repo persists libraries through the storage facade.
type Repo struct {
	store  storage.Store
	logger *zap.Logger
}

// New creates a library repository.
func New(store storage.Store, logger *zap.Logger) *Repo {
	return &Repo{store: store, logger: logger}
}

// Save publishes a fully built library: documents, index artifact, and the
// manifest. Artifacts are staged first; on any failure the staged namespace is
// discarded and nothing of the library remains visible.
func (r *Repo) Save(
	ctx context.Context, manifest domain.Manifest, docs []domain.Upload, indexData []byte,
) error {
	id := manifest.ID
	staged := make([]string, 0, len(docs)+1)

	stage := func(path string, data []byte) error {
		key := stagingRoot + "/" + path
		if err := r.store.Put(ctx, key, data); err != nil {
			return fmt.Errorf("stage %s: %w", path, err)
		}
		staged = append(staged, path)
		return nil
	}

	publish := func() error {
		for _, path := range staged {
			data, err := r.store.Get(ctx, stagingRoot+"/"+path)
			if err != nil {
				return fmt.Errorf("read staged %s: %w", path, err)
			}
			if err := r.store.Put(ctx, path, data); err != nil {
				return fmt.Errorf("publish %s: %w", path, err)
			}
		}
		manifestData, err := json.Marshal(manifest)
		if err != nil {
			return fmt.Errorf("marshal manifest: %w", err)
		}
		if err := r.store.Put(ctx, id+"/"+manifestName, manifestData); err != nil {
			return fmt.Errorf("publish manifest: %w", err)
		}
		return nil
	}

	stageErr := func() error {
		for _, doc := range docs {
			if err := stage(id+"/"+docsDir+"/"+doc.Filename, doc.Data); err != nil {
				return err
			}
		}
		return stage(id+"/"+indexName, indexData)
	}()

	if stageErr == nil {
		stageErr = publish()
	}

	r.discardStaging(ctx, id, staged, stageErr)
	return stageErr
}

// discardStaging removes staged keys and, after a failed publish, any final
// keys already copied. The manifest is written last, so a partially published
// library is never listable.
func (r *Repo) discardStaging(ctx context.Context, id string, staged []string, saveErr error) {
	for _, path := range staged {
		if err := r.store.Delete(ctx, stagingRoot+"/"+path); err != nil {
			r.logger.Warn("Failed to discard staged artifact",
				zap.String("library_id", id), zap.String("path", path), zap.Error(err))
		}
		if saveErr != nil {
			if err := r.store.Delete(ctx, path); err != nil {
				r.logger.Warn("Failed to discard partially published artifact",
					zap.String("library_id", id), zap.String("path", path), zap.Error(err))
			}
		}
	}
}

// Load reads a library back and reconstructs its in-memory index.
// A library without a manifest does not exist; a published library whose
// artifact is missing, truncated, or inconsistent with its manifest is
// reported as corrupt, never as empty.
func (r *Repo) Load(ctx context.Context, id string) (Library, error) {
	manifestData, err := r.store.Get(ctx, id+"/"+manifestName)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return Library{}, fmt.Errorf("library %s: %w", id, domain.ErrNotFound)
		}
		return Library{}, fmt.Errorf("get manifest: %w", err)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return Library{}, fmt.Errorf("parse manifest for %s: %w: %w", id, domain.ErrCorruptIndex, err)
	}

	indexData, err := r.store.Get(ctx, id+"/"+indexName)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return Library{}, fmt.Errorf("index artifact missing for %s: %w", id, domain.ErrCorruptIndex)
		}
		return Library{}, fmt.Errorf("get index artifact: %w", err)
	}

	idx, err := index.Unmarshal(indexData)
	if err != nil {
		return Library{}, fmt.Errorf("deserialize index for %s: %w", id, err)
	}

	if idx.Len() != manifest.PassageCount {
		return Library{}, fmt.Errorf("index holds %d passages, manifest says %d: %w",
			idx.Len(), manifest.PassageCount, domain.ErrCorruptIndex)
	}
	if idx.Len() > 0 && idx.Dimensions() != manifest.Dimensions {
		return Library{}, fmt.Errorf("index dim %d, manifest dim %d: %w",
			idx.Dimensions(), manifest.Dimensions, domain.ErrCorruptIndex)
	}

	return Library{Manifest: manifest, Index: idx}, nil
}

// GetManifest reads only the manifest of a published library.
func (r *Repo) GetManifest(ctx context.Context, id string) (domain.Manifest, error) {
	data, err := r.store.Get(ctx, id+"/"+manifestName)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return domain.Manifest{}, fmt.Errorf("library %s: %w", id, domain.ErrNotFound)
		}
		return domain.Manifest{}, fmt.Errorf("get manifest: %w", err)
	}
	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return domain.Manifest{}, fmt.Errorf("parse manifest for %s: %w: %w", id, domain.ErrCorruptIndex, err)
	}
	return manifest, nil
}

// GetDocument returns the verbatim bytes of an uploaded document.
func (r *Repo) GetDocument(ctx context.Context, id, filename string) ([]byte, error) {
	data, err := r.store.Get(ctx, id+"/"+docsDir+"/"+filename)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("document %s/%s: %w", id, filename, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return data, nil
}

// List enumerates published library ids by manifest presence, sorted. A
// library still mid-creation has no manifest and is simply not listed yet.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list storage: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, stagingRoot+"/") {
			continue
		}
		id, ok := strings.CutSuffix(key, "/"+manifestName)
		if ok && !strings.Contains(id, "/") {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
