package assets

import (
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrValidation rejects non-image or oversized uploads before any state
// is touched.
var ErrValidation = errors.New("file validation failed")

const MaxUploadBytes = 10 << 20 // 10 MB

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store keeps uploaded and cropped images on disk under uuid names and
// reference-counts them. An asset whose count drops to zero is removed,
// which is the release half of the object-URL lifecycle contract:
// acquire on element creation, release on deletion, replacement, or
// session teardown.
type Store struct {
	dir  string
	mu   sync.Mutex
	refs map[string]int
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating asset dir %s: %w", dir, err)
	}
	return &Store{dir: dir, refs: make(map[string]int)}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save validates and persists raw upload bytes, returning the asset id.
// The new asset starts with a reference count of one.
func (s *Store) Save(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrValidation)
	}
	if len(data) > MaxUploadBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, MaxUploadBytes)
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %s", ErrValidation, contentType)
	}

	id := uuid.New().String() + ext
	path := filepath.Join(s.dir, id)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing asset %s: %w", id, err)
	}

	s.mu.Lock()
	s.refs[id] = 1
	s.mu.Unlock()
	return id, nil
}

// SaveImage persists a decoded image (cropped output) as a PNG asset so
// crop transparency survives.
func (s *Store) SaveImage(img image.Image) (string, error) {
	id := uuid.New().String() + ".png"
	path := filepath.Join(s.dir, id)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("saving asset %s: %w", id, err)
	}

	s.mu.Lock()
	s.refs[id] = 1
	s.mu.Unlock()
	return id, nil
}

// LoadImage implements the rasterizer's AssetResolver.
func (s *Store) LoadImage(src string) (image.Image, error) {
	// src may be a bare asset id or an /assets/ URL path.
	id := strings.TrimPrefix(src, "/assets/")
	if strings.Contains(id, "/") || strings.Contains(id, "..") {
		return nil, fmt.Errorf("invalid asset reference %q", src)
	}
	img, err := imaging.Open(filepath.Join(s.dir, id))
	if err != nil {
		return nil, fmt.Errorf("loading asset %s: %w", id, err)
	}
	return img, nil
}

// Acquire bumps the reference count for an asset already in the store.
func (s *Store) Acquire(id string) {
	id = strings.TrimPrefix(id, "/assets/")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[id]; ok {
		s.refs[id]++
	}
}

// Release drops one reference and deletes the file at zero.
func (s *Store) Release(id string) {
	if id == "" {
		return
	}
	id = strings.TrimPrefix(id, "/assets/")

	s.mu.Lock()
	count, ok := s.refs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	count--
	if count > 0 {
		s.refs[id] = count
		s.mu.Unlock()
		return
	}
	delete(s.refs, id)
	s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, id)); err != nil && !os.IsNotExist(err) {
		log.Printf("Asset store: failed to remove %s: %v", id, err)
	}
}

// RefCount is exposed for tests.
func (s *Store) RefCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[strings.TrimPrefix(id, "/assets/")]
}
