package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-training/gh-notifier/pkg/core"
)

// FileStore implements the core.Store interface on a single JSON document.
// The directory is created with 0700 and the file written with 0600 since it
// holds a bearer credential. Writes go through a temp file and rename.
type FileStore struct {
	slots

	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore persisting to path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	f := &FileStore{
		path: path,
	}
	f.slots = slots{b: f}
	return f
}

// DefaultFilePath returns <user config dir>/gh-notifier/credentials.json.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", persistenceError(core.PersistenceIO, "resolve config dir", err)
	}
	return filepath.Join(dir, "gh-notifier", "credentials.json"), nil
}

// Path returns the file backing the store.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (f *FileStore) set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStore) del(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

// load reads the document. A missing file is an empty document.
func (f *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, persistenceError(core.PersistenceIO, "read "+f.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, persistenceError(core.PersistenceSerialization, "decode "+f.path, err)
	}
	return values, nil
}

func (f *FileStore) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return persistenceError(core.PersistenceSerialization, "encode credentials", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return persistenceError(core.PersistenceIO, "create "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return persistenceError(core.PersistenceIO, "create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return persistenceError(core.PersistenceIO, "chmod "+tmpName, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return persistenceError(core.PersistenceIO, "write "+tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return persistenceError(core.PersistenceIO, "close "+tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return persistenceError(core.PersistenceIO, "replace "+f.path, err)
	}
	return nil
}
