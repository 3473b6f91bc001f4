package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MemoryStorage keeps documents in process memory. Used by tests and by
// deployments that have no durable document store configured.
type MemoryStorage struct {
	documents map[string][]byte
	mu        sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory document store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		documents: make(map[string][]byte),
	}
}

// SetAsStorageForTesting sets this store as the global backend for testing.
func (m *MemoryStorage) SetAsStorageForTesting() {
	SetDocumentStorage(m)
}

// Store keeps the uploaded document in memory and returns its key.
func (m *MemoryStorage) Store(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := NewDocumentKey()

	m.mu.Lock()
	m.documents[key] = content
	m.mu.Unlock()

	return key, nil
}

// Open returns a reader over the stored document content.
func (m *MemoryStorage) Open(key string) (io.ReadCloser, error) {
	m.mu.RLock()
	content, exists := m.documents[key]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("document not found in memory storage: %s", key)
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

// Delete removes a document from memory.
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	delete(m.documents, key)
	m.mu.Unlock()

	return nil
}

// DocumentExists checks if a key is present (for testing assertions).
func (m *MemoryStorage) DocumentExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.documents[key]
	return exists
}

// Clear removes all stored documents.
func (m *MemoryStorage) Clear() {
	m.mu.Lock()
	m.documents = make(map[string][]byte)
	m.mu.Unlock()
}
