package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"idCardStudioAPI/internal/scene"
)

// ErrRecordRasterize marks a compositing failure for one scene render.
// Bulk generation catches it per record; single export surfaces it.
var ErrRecordRasterize = errors.New("rasterization failed")

// AssetResolver loads the pixel data behind an image element's src
// reference. The disk-backed asset store implements it; tests swap in
// an in-memory map.
type AssetResolver interface {
	LoadImage(src string) (image.Image, error)
}

// Renderer turns an immutable scene snapshot into a raster image. Kept
// as an interface so a different canvas backend can satisfy the same
// contract.
type Renderer interface {
	Render(s *scene.Scene) (image.Image, error)
}

// CanvasRenderer composites elements in paint order onto an off-screen
// canvas at the card's working resolution, then resamples to the export
// resolution.
type CanvasRenderer struct {
	assets AssetResolver
	font   *truetype.Font
}

func NewCanvasRenderer(assets AssetResolver) (*CanvasRenderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded font: %w", err)
	}
	return &CanvasRenderer{assets: assets, font: f}, nil
}

func (r *CanvasRenderer) Render(s *scene.Scene) (image.Image, error) {
	w, h := scene.CardSize(s.Orientation)
	canvas := imaging.New(w, h, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	for i := range s.Elements {
		if err := r.renderElement(canvas, &s.Elements[i]); err != nil {
			return nil, fmt.Errorf("%w: element %s: %v", ErrRecordRasterize, s.Elements[i].ID, err)
		}
	}

	ew, eh := scene.ExportSize(s.Orientation)
	return imaging.Resize(canvas, ew, eh, imaging.Lanczos), nil
}

func (r *CanvasRenderer) renderElement(canvas *image.NRGBA, el *scene.Element) error {
	rect := image.Rect(int(el.X), int(el.Y), int(el.X+el.W), int(el.Y+el.H))
	if rect.Empty() {
		return nil
	}

	switch el.Type {
	case scene.ElementText:
		col := ParseHexColor(el.Color, color.NRGBA{A: 255})
		return r.drawTextCentered(canvas, rect, el.Text, col, el.FontSize)
	case scene.ElementImage:
		if el.Src == "" {
			return nil
		}
		img, err := r.assets.LoadImage(el.Src)
		if err != nil {
			return err
		}
		// Aspect-fill: crop to cover the rectangle, never letterbox.
		filled := imaging.Fill(img, rect.Dx(), rect.Dy(), imaging.Center, imaging.Lanczos)
		pasted := imaging.Paste(imaging.Clone(canvas), filled, rect.Min)
		copy(canvas.Pix, pasted.Pix)
		return nil
	case scene.ElementIcon:
		col := ParseHexColor(el.Color, color.NRGBA{A: 255})
		drawIcon(canvas, rect, el.Icon, col, el.IconSize)
		return nil
	case scene.ElementShape:
		drawShape(canvas, rect, el)
		return nil
	default:
		return fmt.Errorf("unknown element type %q", el.Type)
	}
}

// EncodeJPEG encodes at maximum quality for print.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(100)); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeWebP is the lossless alternate encoding for print workflows.
func EncodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("webp encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseHexColor parses #rgb and #rrggbb; anything else yields fallback.
func ParseHexColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return fallback
		}
		return color.NRGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return fallback
		}
		return color.NRGBA{R: r, G: g, B: b, A: 255}
	default:
		return fallback
	}
}
