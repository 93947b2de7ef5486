package bulk

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"idCardStudioAPI/internal/raster"
	"idCardStudioAPI/internal/scene"
	"idCardStudioAPI/utils"
)

// ErrNoData is returned when bulk generation is invoked with zero parsed
// records; no partial work is performed.
var ErrNoData = errors.New("no records to generate")

// Generator runs templated scenes through the rasterizer one record at a
// time. The loop is intentionally serial: one canvas in flight bounds
// peak memory and keeps archive entries in input row order.
type Generator struct {
	renderer raster.Renderer
}

func NewGenerator(renderer raster.Renderer) *Generator {
	return &Generator{renderer: renderer}
}

// Result carries the packed archive plus per-batch accounting.
type Result struct {
	Archive   []byte
	Attempted int
	Skipped   int
}

// GenerateBatch substitutes each record into a copy of the scene,
// renders it, and packs every successful output into one zip. A failed
// record is logged and skipped; it never aborts the batch. The scene
// argument is treated as immutable: every render works on a fresh clone.
func (g *Generator) GenerateBatch(ctx context.Context, s *scene.Scene, records []Record) (*Result, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	res := &Result{Attempted: len(records)}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return nil, fmt.Errorf("batch canceled at record %d: %w", i, err)
		}

		sub := SubstituteScene(s, rec)
		img, err := g.renderer.Render(sub)
		if err != nil {
			log.Printf("Bulk generator: record %d failed: %v", i, err)
			res.Skipped++
			continue
		}
		data, err := raster.EncodeJPEG(img)
		if err != nil {
			log.Printf("Bulk generator: record %d encode failed: %v", i, err)
			res.Skipped++
			continue
		}

		entry, err := zw.Create(recordFilename(i, rec))
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("creating archive entry %d: %w", i, err)
		}
		if _, err := entry.Write(data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("writing archive entry %d: %w", i, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	res.Archive = buf.Bytes()
	return res, nil
}

// SubstituteScene returns a copy of the scene with {column} placeholders
// in text content and image src references replaced by record values.
// Matching is case-sensitive on the exact column header; elements
// without a matching placeholder pass through byte-identical.
func SubstituteScene(s *scene.Scene, rec Record) *scene.Scene {
	cp := s.Clone()
	for i := range cp.Elements {
		el := &cp.Elements[i]
		switch el.Type {
		case scene.ElementText:
			el.Text = substitute(el.Text, rec)
		case scene.ElementImage:
			el.Src = substitute(el.Src, rec)
		}
	}
	return cp
}

func substitute(value string, rec Record) string {
	if !strings.Contains(value, "{") {
		return value
	}
	for key, repl := range rec {
		value = strings.ReplaceAll(value, "{"+key+"}", repl)
	}
	return value
}

// recordFilename is deterministic: a 1-based index prefix plus a slug of
// the record's name or id field when one exists.
func recordFilename(index int, rec Record) string {
	base := fmt.Sprintf("%03d", index+1)
	label := rec["name"]
	if label == "" {
		label = rec["id"]
	}
	if slug := utils.Slugify(label); slug != "" {
		return base + "_" + slug + ".jpg"
	}
	return base + ".jpg"
}
