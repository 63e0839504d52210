package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	documentExt = ".json"
	metaExt     = ".meta.json"
)

// FileStore keeps one JSON document per Ref under Root. Writes go to a temp
// file in the target directory and are renamed into place.
type FileStore struct {
	Root string

	mu  sync.Mutex
	now func() time.Time
}

func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root, now: time.Now}
}

// Path returns the document path for ref.
func (s *FileStore) Path(ref Ref) (string, error) {
	if s.Root == "" {
		return "", fmt.Errorf("persist: file store root is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return "", err
	}
	return filepath.Join(s.Root, ref.Group, ref.Key+documentExt), nil
}

func (s *FileStore) Load(ctx context.Context, ref Ref) ([]byte, Meta, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, Meta{}, false, err
	}
	path, err := s.Path(ref)
	if err != nil {
		return nil, Meta{}, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Meta{}, false, nil
	}
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("reading %s: %w", path, err)
	}

	meta, err := s.readMeta(path)
	if err != nil {
		return nil, Meta{}, false, err
	}
	if meta.Size != len(data) {
		// Edited outside the store; the sidecar no longer describes the file.
		meta = Meta{Size: len(data)}
		if info, statErr := os.Stat(path); statErr == nil {
			meta.UpdatedAt = info.ModTime().UTC()
		}
	}
	return data, meta, true, nil
}

func (s *FileStore) Save(ctx context.Context, ref Ref, data []byte, meta Meta) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	path, err := s.Path(ref)
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readMeta(path)
	if err != nil {
		return Meta{}, err
	}
	_, statErr := os.Stat(path)
	if err := checkETag(meta, existing, statErr == nil); err != nil {
		return existing, err
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	saved := stamp(meta, data, now())
	encodedMeta, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return Meta{}, fmt.Errorf("encoding metadata: %w", err)
	}

	if err := writeAtomic(path, data); err != nil {
		return Meta{}, err
	}
	if err := writeAtomic(metaPath(path), encodedMeta); err != nil {
		return Meta{}, err
	}
	return cloneMeta(saved), nil
}

func (s *FileStore) readMeta(path string) (Meta, error) {
	raw, err := os.ReadFile(metaPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return Meta{}, nil
	}
	if err != nil {
		return Meta{}, fmt.Errorf("reading metadata for %s: %w", path, err)
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Meta{}, fmt.Errorf("decoding metadata for %s: %w", path, err)
	}
	return meta, nil
}

func metaPath(path string) string {
	return path[:len(path)-len(documentExt)] + metaExt
}

// WriteFile replaces path with data through a temp file in the same
// directory, so readers never observe a partial document.
func WriteFile(path string, data []byte) error {
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
