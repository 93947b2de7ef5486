package bulk

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeTestZip(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "photos.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"alice.png":  "fake png bytes",
		"bob.jpg":    "fake jpg bytes",
		"manifest.txt": "not a photo",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractPhotoArchive(t *testing.T) {
	dir := t.TempDir()
	src := writeTestZip(t, dir)

	photos, err := ExtractPhotoArchive(src, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 images, got %d: %v", len(photos), photos)
	}
	for _, name := range []string{"alice.png", "bob.jpg"} {
		path, ok := photos[name]
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("extracted file missing on disk: %v", err)
		}
	}
	if _, ok := photos["manifest.txt"]; ok {
		t.Error("non-image files should not be returned")
	}
}

func TestExtractPhotoArchiveRejectsFormat(t *testing.T) {
	if _, err := ExtractPhotoArchive("photos.7z", t.TempDir()); err == nil {
		t.Error("unsupported format should be rejected")
	}
}
