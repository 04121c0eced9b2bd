package r2client

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-process bucket with the same conditional-write
// semantics as Client. Tests use it in place of R2.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put writes an object unconditionally.
func (m *MemoryStore) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("r2client: put %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return etagOf(data), nil
}

// CreateIfAbsent writes an object only when the key is free.
func (m *MemoryStore) CreateIfAbsent(_ context.Context, key string, body io.Reader, _ string) (string, bool, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[key]; exists {
		return "", false, nil
	}
	m.objects[key] = data
	return etagOf(data), true, nil
}

// ReplaceIfMatch overwrites an object only when its ETag matches.
func (m *MemoryStore) ReplaceIfMatch(_ context.Context, key string, body io.Reader, etag, _ string) (string, bool, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.objects[key]
	if !exists || etagOf(current) != etag {
		return "", false, nil
	}
	m.objects[key] = data
	return etagOf(data), true, nil
}

// Get opens an object.
func (m *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), etagOf(data), nil
}

// Stat returns the ETag of an object.
func (m *MemoryStore) Stat(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return "", ErrNotFound
	}
	return etagOf(data), nil
}

// Delete removes an object.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Keys lists stored keys in no particular order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

// md5 matches what R2 reports for single-part uploads.
func etagOf(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
