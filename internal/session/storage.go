// ABOUTME: Durable key-value storage backing the session
// ABOUTME: File storage keeps a JSON object in the config directory; memory storage is for tests and one-shot runs

package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Fixed storage keys
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage persists string values under string keys.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStorage keeps every key in one JSON object on disk. The file is
// readable only by its owner since it holds the bearer token.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// SessionFile is the file name used inside the config directory
const SessionFile = "session.json"

// NewFileStorage creates storage backed by <configDir>/session.json
func NewFileStorage(configDir string) *FileStorage {
	return &FileStorage{path: filepath.Join(configDir, SessionFile)}
}

// Path returns the backing file path
func (fs *FileStorage) Path() string {
	return fs.path
}

// Get implements Storage
func (fs *FileStorage) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.load()
	if err != nil {
		return "", false, err
	}
	value, ok := data[key]
	return value, ok, nil
}

// Set implements Storage
func (fs *FileStorage) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.load()
	if err != nil {
		return err
	}
	data[key] = value
	return fs.save(data)
}

// Delete implements Storage
func (fs *FileStorage) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return fs.save(data)
}

// load reads the file. A missing or unreadable JSON file is treated as empty.
func (fs *FileStorage) load() (map[string]string, error) {
	raw, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("Ignoring corrupt session file", "path", fs.path, "error", err)
		return map[string]string{}, nil
	}
	return data, nil
}

// save writes through a temp file so readers never see a partial file.
func (fs *FileStorage) save(data map[string]string) error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// MemoryStorage keeps values in process memory
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage creates empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string]string{}}
}

// Get implements Storage
func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

// Set implements Storage
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements Storage
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
