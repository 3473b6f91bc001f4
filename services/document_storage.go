package services

import (
	"io"
	"mime/multipart"

	"github.com/vee4/vee4-order-api/config"
)

// DocumentStorage abstracts where order documents (design files, test
// reports, invoices) live. Orders only ever hold the opaque key a backend
// returned; the same key must resolve regardless of which backend is
// configured. Backends may be slow: callers must not hold database locks
// while storing or retrieving.
type DocumentStorage interface {
	// Store persists an uploaded PDF and returns its storage key.
	Store(fileHeader *multipart.FileHeader) (string, error)
	// Open returns a reader for a previously stored document.
	Open(key string) (io.ReadCloser, error)
	// Delete removes a stored document. Deleting a missing key is not an error.
	Delete(key string) error
}

var documentStorageInstance DocumentStorage

// InitDocumentStorage initializes the configured storage backend.
func InitDocumentStorage(cfg *config.Config) (DocumentStorage, error) {
	var (
		storage DocumentStorage
		err     error
	)

	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		storage, err = NewS3Storage(cfg)
	case config.StorageBackendMemory:
		storage = NewMemoryStorage()
	default:
		storage, err = NewLocalStorage(cfg.UploadDir)
	}
	if err != nil {
		return nil, err
	}

	documentStorageInstance = storage
	return storage, nil
}

// GetDocumentStorage returns the initialized storage backend.
func GetDocumentStorage() DocumentStorage {
	return documentStorageInstance
}

// SetDocumentStorage sets the storage backend (primarily for testing).
func SetDocumentStorage(storage DocumentStorage) {
	documentStorageInstance = storage
}
