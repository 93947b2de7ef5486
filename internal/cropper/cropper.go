package cropper

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

// ErrImageDecode is returned when a source image cannot be decoded. The
// caller aborts the crop/apply action and leaves the scene untouched.
var ErrImageDecode = errors.New("image decode failed")

const (
	MinZoom  = 0.1
	MaxZoom  = 3.0
	ZoomStep = 0.1

	CoarseRotationStep = 90
	FineRotationStep   = 1

	// Upper bound for the custom output preset. Mirrors the editor
	// viewport minus its fixed padding.
	MaxCustomWidth  = 1200
	MaxCustomHeight = 900
)

// Preset names the closed set of crop output sizes.
type Preset string

const (
	PresetPortrait  Preset = "portrait"
	PresetLandscape Preset = "landscape"
	PresetSquare    Preset = "square"
	PresetCustom    Preset = "custom"
)

// PresetSize resolves a preset to output pixel dimensions. Custom sizes
// are clamped to the maximum bound; non-positive custom sizes fall back
// to the square default.
func PresetSize(p Preset, customW, customH int) (int, int) {
	switch p {
	case PresetPortrait:
		return 430, 655
	case PresetLandscape:
		return 655, 430
	case PresetCustom:
		if customW <= 0 || customH <= 0 {
			return 400, 400
		}
		if customW > MaxCustomWidth {
			customW = MaxCustomWidth
		}
		if customH > MaxCustomHeight {
			customH = MaxCustomHeight
		}
		return customW, customH
	default:
		return 400, 400
	}
}

// ClampZoom bounds the zoom multiplier to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// Session is the transient state of one crop interaction. When it is
// applied it either becomes a new image element or replaces the src of
// the element named by ReplaceElementID.
type Session struct {
	AssetID          string  `json:"asset_id"`
	Zoom             float64 `json:"zoom"`
	RotationDeg      float64 `json:"rotation_deg"`
	CropX            int     `json:"crop_x"`
	CropY            int     `json:"crop_y"`
	CropW            int     `json:"crop_w"`
	CropH            int     `json:"crop_h"`
	Preset           Preset  `json:"preset"`
	CustomW          int     `json:"custom_w,omitempty"`
	CustomH          int     `json:"custom_h,omitempty"`
	ReplaceElementID string  `json:"replace_element_id,omitempty"`
}

// Decode reads and decodes a source image, mapping any failure onto
// ErrImageDecode so callers can branch on the taxonomy.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, nil
}

// RotatedBounds computes the bounding box of a w x h image rotated by deg
// degrees: |cos|*w + |sin|*h by |sin|*w + |cos|*h.
func RotatedBounds(w, h int, deg float64) (int, int) {
	rad := deg * math.Pi / 180
	sin := math.Abs(math.Sin(rad))
	cos := math.Abs(math.Cos(rad))
	bw := int(math.Round(cos*float64(w) + sin*float64(h)))
	bh := int(math.Round(sin*float64(w) + cos*float64(h)))
	return bw, bh
}

// ApplyZoom scales the source by the (clamped) zoom factor.
func ApplyZoom(src image.Image, zoom float64) image.Image {
	zoom = ClampZoom(zoom)
	if zoom == 1.0 {
		return src
	}
	w := int(math.Round(float64(src.Bounds().Dx()) * zoom))
	h := int(math.Round(float64(src.Bounds().Dy()) * zoom))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(src, w, h, imaging.Lanczos)
}

// ComputeCroppedImage rotates the source into its expanded bounding box
// and extracts cropRect from that intermediate canvas. cropRect is in the
// rotated canvas's pixel space; it gets clipped to the canvas and must
// stay non-empty.
func ComputeCroppedImage(src image.Image, cropRect image.Rectangle, rotationDeg float64) (image.Image, error) {
	if src == nil {
		return nil, ErrImageDecode
	}

	canvas := src
	if math.Mod(rotationDeg, 360) != 0 {
		// imaging rotates counterclockwise for positive angles; editor
		// rotation is clockwise positive.
		canvas = imaging.Rotate(src, -rotationDeg, color.NRGBA{})
	}

	clipped := cropRect.Intersect(canvas.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("crop rectangle %v outside rotated canvas %v", cropRect, canvas.Bounds())
	}

	return imaging.Crop(canvas, clipped), nil
}
