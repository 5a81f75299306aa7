package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryExportStore keeps exports in process memory. It backs development
// servers without object storage and service tests.
type MemoryExportStore struct {
	mu      sync.RWMutex
	baseURL string
	ttl     time.Duration
	objects map[string][]byte
}

// NewMemoryExportStore creates an empty store whose URLs are rooted at baseURL
func NewMemoryExportStore(baseURL string, ttl time.Duration) *MemoryExportStore {
	return &MemoryExportStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		objects: make(map[string][]byte),
	}
}

// Put stores a copy of data under name
func (m *MemoryExportStore) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	if name == "" {
		return "", errors.New("file name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = append([]byte(nil), data...)
	return name, nil
}

// PresignGet returns baseURL/key for a stored object
func (m *MemoryExportStore) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", time.Time{}, fmt.Errorf("object %q not found", key)
	}
	return m.baseURL + "/" + key, time.Now().Add(m.ttl), nil
}

// Get returns the stored bytes
func (m *MemoryExportStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
