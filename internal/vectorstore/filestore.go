package vectorstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonathan/talent-search/internal/types"
)

const (
	vectorsFile  = "vectors.json"
	metadataFile = "metadata.json"
)

// FileStore keeps embeddings in vectors.json (id -> vector) and candidate
// metadata in metadata.json (id -> {name, email}) under one directory.
// Files are rewritten whole through a temp file and rename, so readers never
// observe a partial write. Every read loads the full index.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vector directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Load returns all stored vectors and metadata. Missing files read as empty.
func (s *FileStore) Load() (map[string][]float64, map[string]types.CandidateMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Len returns the number of stored vectors.
func (s *FileStore) Len() (int, error) {
	vectors, _, err := s.Load()
	return len(vectors), err
}

// Upsert stores or replaces the vector and metadata for id.
func (s *FileStore) Upsert(id string, vec []float64, meta types.CandidateMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vectors, metadata, err := s.load()
	if err != nil {
		return err
	}
	vectors[id] = vec
	metadata[id] = meta
	return s.save(vectors, metadata)
}

// ReplaceAll overwrites the whole index.
func (s *FileStore) ReplaceAll(vectors map[string][]float64, metadata map[string]types.CandidateMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vectors == nil {
		vectors = map[string][]float64{}
	}
	if metadata == nil {
		metadata = map[string]types.CandidateMetadata{}
	}
	return s.save(vectors, metadata)
}

func (s *FileStore) load() (map[string][]float64, map[string]types.CandidateMetadata, error) {
	vectors := map[string][]float64{}
	metadata := map[string]types.CandidateMetadata{}
	if err := readJSON(filepath.Join(s.dir, vectorsFile), &vectors); err != nil {
		return nil, nil, err
	}
	if err := readJSON(filepath.Join(s.dir, metadataFile), &metadata); err != nil {
		return nil, nil, err
	}
	return vectors, metadata, nil
}

func (s *FileStore) save(vectors map[string][]float64, metadata map[string]types.CandidateMetadata) error {
	if err := writeJSONAtomic(filepath.Join(s.dir, vectorsFile), vectors); err != nil {
		return err
	}
	return writeJSONAtomic(filepath.Join(s.dir, metadataFile), metadata)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
