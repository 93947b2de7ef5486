package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"idCardStudioAPI/internal/scene"
)

// drawIcon renders one glyph from the closed icon set, centered in rect
// at the requested size. Unknown ids fall back to the star.
func drawIcon(dst draw.Image, rect image.Rectangle, icon scene.IconID, col color.Color, size float64) {
	side := size
	maxSide := math.Min(float64(rect.Dx()), float64(rect.Dy()))
	if side <= 0 || side > maxSide {
		side = maxSide
	}
	cx := rect.Min.X + rect.Dx()/2
	cy := rect.Min.Y + rect.Dy()/2
	half := int(side / 2)
	box := image.Rect(cx-half, cy-half, cx+half, cy+half)
	if box.Empty() {
		return
	}

	switch icon {
	case scene.IconHeart:
		drawHeart(dst, box, col)
	case scene.IconPhone:
		drawPhone(dst, box, col)
	case scene.IconMail:
		drawMail(dst, box, col)
	case scene.IconUser:
		drawUser(dst, box, col)
	case scene.IconHome:
		drawHome(dst, box, col)
	case scene.IconGlobe:
		drawGlobe(dst, box, col)
	case scene.IconCheck:
		drawCheck(dst, box, col)
	default:
		fillPolygon(dst, starPoints(box), col)
	}
}

// drawHeart approximates the glyph with two lobes and a lower triangle.
func drawHeart(dst draw.Image, box image.Rectangle, col color.Color) {
	w, h := box.Dx(), box.Dy()
	lobeH := h * 6 / 10
	left := image.Rect(box.Min.X, box.Min.Y, box.Min.X+w/2, box.Min.Y+lobeH)
	right := image.Rect(box.Min.X+w/2, box.Min.Y, box.Max.X, box.Min.Y+lobeH)
	fillEllipse(dst, left, col)
	fillEllipse(dst, right, col)
	fillPolygon(dst, []point{
		{X: float64(box.Min.X), Y: float64(box.Min.Y + lobeH/2)},
		{X: float64(box.Max.X), Y: float64(box.Min.Y + lobeH/2)},
		{X: float64(box.Min.X) + float64(w)/2, Y: float64(box.Max.Y)},
	}, col)
}

func drawPhone(dst draw.Image, box image.Rectangle, col color.Color) {
	w, h := box.Dx(), box.Dy()
	body := image.Rect(box.Min.X+w/4, box.Min.Y, box.Max.X-w/4, box.Max.Y)
	fillRect(dst, body, col)
	// Speaker and home-button cutouts.
	cut := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	fillRect(dst, image.Rect(box.Min.X+w*2/5, box.Min.Y+h/16, box.Max.X-w*2/5, box.Min.Y+h/8), cut)
	fillEllipse(dst, image.Rect(box.Min.X+w*9/20, box.Max.Y-h/6, box.Max.X-w*9/20, box.Max.Y-h/12), cut)
}

func drawMail(dst draw.Image, box image.Rectangle, col color.Color) {
	fillRect(dst, box, col)
	// Envelope flap drawn as a contrasting V.
	cut := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	mid := point{X: float64(box.Min.X + box.Dx()/2), Y: float64(box.Min.Y + box.Dy()*3/5)}
	drawThickLine(dst, point{X: float64(box.Min.X), Y: float64(box.Min.Y)}, mid, cut, 2)
	drawThickLine(dst, mid, point{X: float64(box.Max.X), Y: float64(box.Min.Y)}, cut, 2)
}

func drawUser(dst draw.Image, box image.Rectangle, col color.Color) {
	w, h := box.Dx(), box.Dy()
	head := image.Rect(box.Min.X+w/4, box.Min.Y, box.Max.X-w/4, box.Min.Y+h/2)
	shoulders := image.Rect(box.Min.X, box.Min.Y+h*11/20, box.Max.X, box.Max.Y+h/2)
	fillEllipse(dst, head, col)
	clipped := clipDraw{Image: dst, clip: box}
	fillEllipse(&clipped, shoulders, col)
}

func drawHome(dst draw.Image, box image.Rectangle, col color.Color) {
	w, h := box.Dx(), box.Dy()
	roof := []point{
		{X: float64(box.Min.X + w/2), Y: float64(box.Min.Y)},
		{X: float64(box.Max.X), Y: float64(box.Min.Y + h/2)},
		{X: float64(box.Min.X), Y: float64(box.Min.Y + h/2)},
	}
	fillPolygon(dst, roof, col)
	fillRect(dst, image.Rect(box.Min.X+w/8, box.Min.Y+h/2, box.Max.X-w/8, box.Max.Y), col)
}

func drawGlobe(dst draw.Image, box image.Rectangle, col color.Color) {
	strokeEllipse(dst, box, col, 2)
	// Meridian and equator.
	cx := float64(box.Min.X + box.Dx()/2)
	cy := float64(box.Min.Y + box.Dy()/2)
	drawThickLine(dst, point{X: cx, Y: float64(box.Min.Y)}, point{X: cx, Y: float64(box.Max.Y)}, col, 2)
	drawThickLine(dst, point{X: float64(box.Min.X), Y: cy}, point{X: float64(box.Max.X), Y: cy}, col, 2)
	inner := image.Rect(box.Min.X+box.Dx()/4, box.Min.Y, box.Max.X-box.Dx()/4, box.Max.Y)
	strokeEllipse(dst, inner, col, 2)
}

func drawCheck(dst draw.Image, box image.Rectangle, col color.Color) {
	w, h := float64(box.Dx()), float64(box.Dy())
	width := math.Max(w/8, 2)
	a := point{X: float64(box.Min.X) + w*0.1, Y: float64(box.Min.Y) + h*0.55}
	b := point{X: float64(box.Min.X) + w*0.4, Y: float64(box.Min.Y) + h*0.85}
	c := point{X: float64(box.Min.X) + w*0.9, Y: float64(box.Min.Y) + h*0.15}
	drawThickLine(dst, a, b, col, width)
	drawThickLine(dst, b, c, col, width)
}

// clipDraw restricts Set calls to a clip rectangle so partial glyph
// pieces never bleed outside their icon box.
type clipDraw struct {
	draw.Image
	clip image.Rectangle
}

func (c *clipDraw) Set(x, y int, col color.Color) {
	if image.Pt(x, y).In(c.clip) {
		c.Image.Set(x, y, col)
	}
}
