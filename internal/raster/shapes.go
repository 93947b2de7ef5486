package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"idCardStudioAPI/internal/scene"
)

type point struct {
	X, Y float64
}

func drawShape(dst draw.Image, rect image.Rectangle, el *scene.Element) {
	fill := ParseHexColor(el.Fill, color.NRGBA{R: 204, G: 204, B: 204, A: 255})
	stroke := ParseHexColor(el.Stroke, color.NRGBA{A: 255})
	sw := el.StrokeWidth

	switch el.Shape {
	case scene.ShapeCircle:
		fillEllipse(dst, rect, fill)
		if sw > 0 {
			strokeEllipse(dst, rect, stroke, sw)
		}
	case scene.ShapeTriangle:
		pts := trianglePoints(rect)
		fillPolygon(dst, pts, fill)
		if sw > 0 {
			strokePolygon(dst, pts, stroke, sw)
		}
	case scene.ShapeStar:
		pts := starPoints(rect)
		fillPolygon(dst, pts, fill)
		if sw > 0 {
			strokePolygon(dst, pts, stroke, sw)
		}
	default: // rect
		fillRect(dst, rect, fill)
		if sw > 0 {
			strokeRect(dst, rect, stroke, sw)
		}
	}
}

func fillRect(dst draw.Image, rect image.Rectangle, col color.Color) {
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

func strokeRect(dst draw.Image, rect image.Rectangle, col color.Color, width float64) {
	w := int(math.Round(width))
	if w < 1 {
		return
	}
	top := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+w)
	bottom := image.Rect(rect.Min.X, rect.Max.Y-w, rect.Max.X, rect.Max.Y)
	left := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+w, rect.Max.Y)
	right := image.Rect(rect.Max.X-w, rect.Min.Y, rect.Max.X, rect.Max.Y)
	for _, r := range []image.Rectangle{top, bottom, left, right} {
		fillRect(dst, r, col)
	}
}

// fillEllipse paints the ellipse inscribed in rect with a per-pixel
// inside test.
func fillEllipse(dst draw.Image, rect image.Rectangle, col color.Color) {
	cx := float64(rect.Min.X) + float64(rect.Dx())/2
	cy := float64(rect.Min.Y) + float64(rect.Dy())/2
	rx := float64(rect.Dx()) / 2
	ry := float64(rect.Dy()) / 2
	if rx <= 0 || ry <= 0 {
		return
	}

	clipped := rect.Intersect(dst.Bounds())
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				dst.Set(x, y, col)
			}
		}
	}
}

func strokeEllipse(dst draw.Image, rect image.Rectangle, col color.Color, width float64) {
	cx := float64(rect.Min.X) + float64(rect.Dx())/2
	cy := float64(rect.Min.Y) + float64(rect.Dy())/2
	rx := float64(rect.Dx()) / 2
	ry := float64(rect.Dy()) / 2
	if rx <= 0 || ry <= 0 {
		return
	}
	innerRx := math.Max(rx-width, 0)
	innerRy := math.Max(ry-width, 0)

	clipped := rect.Intersect(dst.Bounds())
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			px := float64(x) + 0.5 - cx
			py := float64(y) + 0.5 - cy
			outer := (px/rx)*(px/rx) + (py/ry)*(py/ry)
			if outer > 1 {
				continue
			}
			if innerRx == 0 || innerRy == 0 {
				dst.Set(x, y, col)
				continue
			}
			inner := (px/innerRx)*(px/innerRx) + (py/innerRy)*(py/innerRy)
			if inner >= 1 {
				dst.Set(x, y, col)
			}
		}
	}
}

func trianglePoints(rect image.Rectangle) []point {
	return []point{
		{X: float64(rect.Min.X) + float64(rect.Dx())/2, Y: float64(rect.Min.Y)},
		{X: float64(rect.Max.X), Y: float64(rect.Max.Y)},
		{X: float64(rect.Min.X), Y: float64(rect.Max.Y)},
	}
}

// starPoints builds a five-pointed star inscribed in rect, alternating
// outer and inner radius vertices.
func starPoints(rect image.Rectangle) []point {
	cx := float64(rect.Min.X) + float64(rect.Dx())/2
	cy := float64(rect.Min.Y) + float64(rect.Dy())/2
	outerRx := float64(rect.Dx()) / 2
	outerRy := float64(rect.Dy()) / 2
	innerRx := outerRx * 0.4
	innerRy := outerRy * 0.4

	pts := make([]point, 0, 10)
	for i := 0; i < 10; i++ {
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		rx, ry := outerRx, outerRy
		if i%2 == 1 {
			rx, ry = innerRx, innerRy
		}
		pts = append(pts, point{
			X: cx + rx*math.Cos(angle),
			Y: cy + ry*math.Sin(angle),
		})
	}
	return pts
}

// fillPolygon rasterizes with an even-odd scanline test.
func fillPolygon(dst draw.Image, pts []point, col color.Color) {
	if len(pts) < 3 {
		return
	}

	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	bounds := dst.Bounds()
	yStart := int(math.Max(math.Floor(minY), float64(bounds.Min.Y)))
	yEnd := int(math.Min(math.Ceil(maxY), float64(bounds.Max.Y)))

	for y := yStart; y < yEnd; y++ {
		sy := float64(y) + 0.5
		var xs []float64
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			if (a.Y <= sy && b.Y > sy) || (b.Y <= sy && a.Y > sy) {
				t := (sy - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Max(math.Ceil(xs[i]-0.5), float64(bounds.Min.X)))
			x1 := int(math.Min(math.Floor(xs[i+1]+0.5), float64(bounds.Max.X)))
			for x := x0; x < x1; x++ {
				dst.Set(x, y, col)
			}
		}
	}
}

func strokePolygon(dst draw.Image, pts []point, col color.Color, width float64) {
	for i := range pts {
		drawThickLine(dst, pts[i], pts[(i+1)%len(pts)], col, width)
	}
}

// drawThickLine stamps a filled square of the stroke width along the
// segment. Crude but plenty at card resolution.
func drawThickLine(dst draw.Image, a, b point, col color.Color, width float64) {
	if width < 1 {
		width = 1
	}
	half := width / 2
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	steps := int(math.Ceil(length))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.X + t*(b.X-a.X)
		y := a.Y + t*(b.Y-a.Y)
		r := image.Rect(
			int(math.Floor(x-half)), int(math.Floor(y-half)),
			int(math.Ceil(x+half)), int(math.Ceil(y+half)),
		)
		fillRect(dst, r, col)
	}
}
