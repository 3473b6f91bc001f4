package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage stores order documents on the local filesystem, for
// development without S3 access. Keys keep the same documents/<uuid>.pdf
// shape as the S3 backend so references stay portable between backends.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a disk-backed document store rooted at baseDir.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "documents"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Store saves an uploaded document to disk and returns its key.
func (l *LocalStorage) Store(fileHeader *multipart.FileHeader) (key string, err error) {
	key = NewDocumentKey()

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close source file: %w", closeErr)
		}
	}()

	dst, err := os.Create(l.path(key))
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}

// Open returns a reader for a stored document.
func (l *LocalStorage) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(l.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", key, err)
	}
	return f, nil
}

// Delete removes a stored document from disk.
func (l *LocalStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}

// path maps a storage key to a filesystem path, rejecting traversal.
func (l *LocalStorage) path(key string) string {
	// Keys are generated internally, but never trust them with separators.
	clean := filepath.Clean(strings.ReplaceAll(key, "..", ""))
	return filepath.Join(l.baseDir, clean)
}
