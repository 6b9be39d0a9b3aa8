// Package store persists user selection state through an injected
// key-value collaborator, keeping the selection logic independent of any
// particular storage mechanism.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/okessler/jsontab/internal/schema"
)

// KV is the persistence collaborator.
type KV interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
}

// SelectionKey is the conventional key for the persisted path selection.
const SelectionKey = "selected_paths"

// SaveSelection persists a path selection as-is.
func SaveSelection(kv KV, key string, paths []string) error {
	b, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	return kv.Save(key, string(b))
}

// LoadSelection restores a persisted selection, drops paths no longer
// observable in the current schema tree, and re-sorts the rest into
// canonical schema-tree pre-order. A missing key yields an empty
// selection.
func LoadSelection(kv KV, key string, tree *schema.Node) ([]string, error) {
	raw, ok, err := kv.Load(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, fmt.Errorf("corrupt selection under %q: %w", key, err)
	}
	return schema.SortPaths(paths, tree), nil
}

// FileKV is a KV backed by a single JSON object file.
type FileKV struct {
	mu   sync.Mutex
	path string
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) Load(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (f *FileKV) Save(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		return err
	}
	m[key] = value

	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o644)
}

func (f *FileKV) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("corrupt store file %s: %w", f.path, err)
	}
	return m, nil
}
