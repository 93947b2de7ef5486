package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

func (r *CanvasRenderer) drawTextCentered(dst draw.Image, rect image.Rectangle, text string, col color.Color, fontSize float64) error {
	if text == "" {
		return nil
	}
	if fontSize <= 0 {
		fontSize = 18
	}

	face := truetype.NewFace(r.font, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	textWidth := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	x := rect.Min.X + (rect.Dx()-textWidth)/2
	// Baseline placed so the glyph box sits vertically centered.
	y := rect.Min.Y + (rect.Dy()+ascent-descent)/2

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(r.font)
	c.SetFontSize(fontSize)
	c.SetClip(rect)
	c.SetDst(dst)
	c.SetSrc(image.NewUniform(col))
	c.SetHinting(font.HintingFull)

	_, err := c.DrawString(text, freetype.Pt(x, y))
	return err
}
