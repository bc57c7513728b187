package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Cache backed by a single JSON file, e.g. ~/.synex/tokens.json.
// Every write rewrites the whole file through a temp file and rename.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a file cache at path. The file and its directory are
// created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath returns ~/.synex/tokens.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".synex", "tokens.json"), nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, fmt.Errorf("tokencache.File.Get: %w", err)
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return fmt.Errorf("tokencache.File.Set: %w", err)
	}
	values[key] = value
	if err := f.save(values); err != nil {
		return fmt.Errorf("tokencache.File.Set: %w", err)
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return fmt.Errorf("tokencache.File.Remove: %w", err)
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if err := f.save(values); err != nil {
		return fmt.Errorf("tokencache.File.Remove: %w", err)
	}
	return nil
}

func (f *File) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(f.path), err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}

	stage := f.path + ".new"
	if err := os.WriteFile(stage, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", stage, err)
	}
	if err := os.Rename(stage, f.path); err != nil {
		os.Remove(stage) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
