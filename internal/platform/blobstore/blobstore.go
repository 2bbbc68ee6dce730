// Package blobstore stores uploaded report files. It defines the Store
// interface, a disk implementation, an in-memory implementation for tests,
// and the upload validation shared with the report handler.
package blobstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrBadExtension = errors.New("file type is not allowed")
)

// MaxFileSize is the upload size ceiling (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// allowedExtensions lists the accepted upload extensions.
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// AllowedExtensions returns the accepted extensions, sorted, without dots.
// Used to build rejection messages.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	return exts
}

// ValidateUpload checks size and extension before anything touches storage.
func ValidateUpload(fileName string, size int64) error {
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: allowed types are %s", ErrBadExtension,
			strings.Join(AllowedExtensions(), ", "))
	}
	return nil
}

// Store persists uploaded files under generated keys.
type Store interface {
	// Save writes the content and returns the storage key.
	Save(fileName string, content io.Reader) (string, error)
	// Open returns a reader for the stored file.
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// DiskStore writes files under a root directory, one generated name each so
// uploads never collide.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(fileName string, content io.Reader) (string, error) {
	key := uuid.New().String() + strings.ToLower(filepath.Ext(fileName))
	f, err := os.Create(filepath.Join(s.root, key))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return key, nil
}

func (s *DiskStore) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.Base(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *DiskStore) Delete(key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(key)))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// MemoryStore keeps files in a map. Test and development use only.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Save(fileName string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	key := uuid.New().String() + strings.ToLower(filepath.Ext(fileName))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return key, nil
}

func (s *MemoryStore) Open(key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[key]; !ok {
		return ErrNotFound
	}
	delete(s.files, key)
	return nil
}
