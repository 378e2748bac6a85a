package client

import (
	"encoding/json"
	"os"
	"sync"
)

// Storage is the device-local persistence port used by the session
// cache, the offline queue and the cart. Implementations must tolerate
// concurrent use from a single process.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage is the test double and the fallback when the device
// has no writable disk.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileStorage persists the key/value map as a single JSON file,
// rewritten on every mutation. Corrupt files are treated as empty
// rather than fatal so a damaged cache never blocks the UI.
type FileStorage struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

func NewFileStorage(path string) *FileStorage {
	fs := &FileStorage{path: path, data: make(map[string]string)}
	if raw, err := os.ReadFile(path); err == nil {
		var loaded map[string]string
		if json.Unmarshal(raw, &loaded) == nil && loaded != nil {
			fs.data = loaded
		}
	}
	return fs
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.flushLocked()
}

func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return f.flushLocked()
}

func (f *FileStorage) flushLocked() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}
