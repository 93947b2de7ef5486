package bulk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v3"
)

// ExtractPhotoArchive unpacks an uploaded zip/rar of per-record source
// photos into destDir and returns the image paths found, keyed by bare
// filename so CSV columns can reference them.
func ExtractPhotoArchive(src, destDir string) (map[string]string, error) {
	ext := strings.ToLower(filepath.Ext(src))
	if ext != ".zip" && ext != ".rar" {
		return nil, fmt.Errorf("unsupported archive format %s", ext)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating extract dir: %w", err)
	}
	if err := archiver.Unarchive(src, destDir); err != nil {
		return nil, fmt.Errorf("extracting %s: %w", filepath.Base(src), err)
	}

	photos := make(map[string]string)
	err := filepath.Walk(destDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jpg", ".jpeg", ".png", ".webp":
			photos[filepath.Base(path)] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning extracted files: %w", err)
	}
	return photos, nil
}
