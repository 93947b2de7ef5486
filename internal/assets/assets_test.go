package assets

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(10, 10, color.NRGBA{R: 128, A: 255})
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Save(pngBytes(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if filepath.Ext(id) != ".png" {
		t.Errorf("expected .png extension, got %q", id)
	}
	if s.RefCount(id) != 1 {
		t.Errorf("fresh asset should have one reference, got %d", s.RefCount(id))
	}

	img, err := s.LoadImage(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if img.Bounds().Dx() != 10 {
		t.Errorf("loaded size: %v", img.Bounds())
	}

	// The /assets/ URL form resolves to the same file.
	if _, err := s.LoadImage("/assets/" + id); err != nil {
		t.Errorf("url-form load failed: %v", err)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Save(nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty file: %v", err)
	}
	if _, err := s.Save([]byte("plain text, not an image")); !errors.Is(err, ErrValidation) {
		t.Errorf("non-image: %v", err)
	}
	if _, err := s.Save(make([]byte, MaxUploadBytes+1)); !errors.Is(err, ErrValidation) {
		t.Errorf("oversized: %v", err)
	}
}

func TestLoadImageRejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LoadImage("../etc/passwd"); err == nil {
		t.Error("path traversal should be rejected")
	}
	if _, err := s.LoadImage("sub/dir.png"); err == nil {
		t.Error("nested paths should be rejected")
	}
}

func TestReferenceLifecycle(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Save(pngBytes(t))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(s.Dir(), id)

	s.Acquire(id)
	if s.RefCount(id) != 2 {
		t.Fatalf("after acquire: %d", s.RefCount(id))
	}

	s.Release(id)
	if s.RefCount(id) != 1 {
		t.Fatalf("after first release: %d", s.RefCount(id))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file should still exist at refcount 1: %v", err)
	}

	s.Release(id)
	if s.RefCount(id) != 0 {
		t.Fatalf("after final release: %d", s.RefCount(id))
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be deleted at refcount 0")
	}

	// Releasing an unknown or already-gone id is harmless.
	s.Release(id)
	s.Release("")
	s.Acquire("never-saved")
	if s.RefCount("never-saved") != 0 {
		t.Error("acquire must not resurrect unknown assets")
	}
}

func TestSaveImage(t *testing.T) {
	s := newTestStore(t)

	img := imaging.New(32, 16, color.NRGBA{B: 255, A: 255})
	id, err := s.SaveImage(img)
	if err != nil {
		t.Fatalf("save image failed: %v", err)
	}
	if filepath.Ext(id) != ".png" {
		t.Errorf("cropped output should be png, got %q", id)
	}

	loaded, err := s.LoadImage(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Bounds().Dx() != 32 || loaded.Bounds().Dy() != 16 {
		t.Errorf("loaded size: %v", loaded.Bounds())
	}
}
