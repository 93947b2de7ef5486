package scene

import (
	"github.com/google/uuid"
)

type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
	ElementIcon  ElementType = "icon"
	ElementShape ElementType = "shape"
)

type ShapeKind string

const (
	ShapeRect     ShapeKind = "rect"
	ShapeCircle   ShapeKind = "circle"
	ShapeTriangle ShapeKind = "triangle"
	ShapeStar     ShapeKind = "star"
)

type IconID string

const (
	IconStar  IconID = "star"
	IconHeart IconID = "heart"
	IconPhone IconID = "phone"
	IconMail  IconID = "mail"
	IconUser  IconID = "user"
	IconHome  IconID = "home"
	IconGlobe IconID = "globe"
	IconCheck IconID = "check"
)

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Working canvas dimensions per orientation (physical-card proportions).
const (
	PortraitWidth   = 430
	PortraitHeight  = 655
	LandscapeWidth  = 655
	LandscapeHeight = 430
)

// CardSize returns the working pixel dimensions for an orientation.
func CardSize(o Orientation) (int, int) {
	if o == OrientationLandscape {
		return LandscapeWidth, LandscapeHeight
	}
	return PortraitWidth, PortraitHeight
}

// ExportSize returns the final export resolution (2x working canvas).
func ExportSize(o Orientation) (int, int) {
	w, h := CardSize(o)
	return w * 2, h * 2
}

// Element is one item on the card canvas. The Type field decides which of
// the payload fields are meaningful; position and size are in card-local
// pixels. Slice order inside a Scene is paint order (later = on top).
type Element struct {
	ID   string      `json:"id"`
	Type ElementType `json:"type"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`

	Text     string  `json:"text,omitempty"`
	Color    string  `json:"color,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`

	Src string `json:"src,omitempty"`

	Icon     IconID  `json:"icon,omitempty"`
	IconSize float64 `json:"icon_size,omitempty"`

	Shape       ShapeKind `json:"shape,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"stroke_width,omitempty"`
}

// Scene is the ordered element list plus ambient editor settings.
// SelectedID is transient UI state and is never persisted.
type Scene struct {
	Orientation Orientation `json:"orientation"`
	Elements    []Element   `json:"elements"`
	SelectedID  string      `json:"-"`
}

func New(o Orientation) *Scene {
	if o != OrientationLandscape {
		o = OrientationPortrait
	}
	return &Scene{Orientation: o, Elements: []Element{}}
}

// ElementSpec carries the caller-supplied fields for a new element.
// Anything left zero gets a per-type default.
type ElementSpec struct {
	Type        ElementType `json:"type"`
	Text        string      `json:"text,omitempty"`
	Color       string      `json:"color,omitempty"`
	FontSize    float64     `json:"font_size,omitempty"`
	Src         string      `json:"src,omitempty"`
	Icon        IconID      `json:"icon,omitempty"`
	IconSize    float64     `json:"icon_size,omitempty"`
	Shape       ShapeKind   `json:"shape,omitempty"`
	Fill        string      `json:"fill,omitempty"`
	Stroke      string      `json:"stroke,omitempty"`
	StrokeWidth float64     `json:"stroke_width,omitempty"`
}

// ElementPatch is a partial update. Nil fields are left untouched.
type ElementPatch struct {
	X           *float64   `json:"x,omitempty"`
	Y           *float64   `json:"y,omitempty"`
	W           *float64   `json:"w,omitempty"`
	H           *float64   `json:"h,omitempty"`
	Text        *string    `json:"text,omitempty"`
	Color       *string    `json:"color,omitempty"`
	FontSize    *float64   `json:"font_size,omitempty"`
	Src         *string    `json:"src,omitempty"`
	Icon        *IconID    `json:"icon,omitempty"`
	IconSize    *float64   `json:"icon_size,omitempty"`
	Fill        *string    `json:"fill,omitempty"`
	Stroke      *string    `json:"stroke,omitempty"`
	StrokeWidth *float64   `json:"stroke_width,omitempty"`
	Shape       *ShapeKind `json:"shape,omitempty"`
}

// AddElement appends a new element with a fresh id and default geometry.
// Callers reposition afterwards if they need anything smarter than the
// fixed default offsets.
func (s *Scene) AddElement(spec ElementSpec) string {
	el := Element{
		ID:   uuid.New().String(),
		Type: spec.Type,
		X:    20,
		Y:    20,
	}

	switch spec.Type {
	case ElementText:
		el.W, el.H = 140, 40
		el.Text = spec.Text
		if el.Text == "" {
			el.Text = "New Text"
		}
		el.Color = spec.Color
		if el.Color == "" {
			el.Color = "#000000"
		}
		el.FontSize = spec.FontSize
		if el.FontSize <= 0 {
			el.FontSize = 18
		}
	case ElementImage:
		el.W, el.H = 150, 150
		el.Src = spec.Src
	case ElementIcon:
		el.W, el.H = 48, 48
		el.Icon = spec.Icon
		if el.Icon == "" {
			el.Icon = IconStar
		}
		el.Color = spec.Color
		if el.Color == "" {
			el.Color = "#000000"
		}
		el.IconSize = spec.IconSize
		if el.IconSize <= 0 {
			el.IconSize = 40
		}
	case ElementShape:
		el.W, el.H = 100, 100
		el.Shape = spec.Shape
		if el.Shape == "" {
			el.Shape = ShapeRect
		}
		el.Fill = spec.Fill
		if el.Fill == "" {
			el.Fill = "#cccccc"
		}
		el.Stroke = spec.Stroke
		if el.Stroke == "" {
			el.Stroke = "#000000"
		}
		el.StrokeWidth = spec.StrokeWidth
		if el.StrokeWidth < 0 {
			el.StrokeWidth = 0
		}
	}

	s.clamp(&el)
	s.Elements = append(s.Elements, el)
	return el.ID
}

// UpdateElement merges non-nil patch fields into the element. Unknown ids
// are a no-op and return false.
func (s *Scene) UpdateElement(id string, patch ElementPatch) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	el := &s.Elements[idx]

	if patch.X != nil {
		el.X = *patch.X
	}
	if patch.Y != nil {
		el.Y = *patch.Y
	}
	if patch.W != nil && *patch.W > 0 {
		el.W = *patch.W
	}
	if patch.H != nil && *patch.H > 0 {
		el.H = *patch.H
	}
	if patch.Text != nil {
		el.Text = *patch.Text
	}
	if patch.Color != nil {
		el.Color = *patch.Color
	}
	if patch.FontSize != nil && *patch.FontSize > 0 {
		el.FontSize = *patch.FontSize
	}
	if patch.Src != nil {
		el.Src = *patch.Src
	}
	if patch.Icon != nil {
		el.Icon = *patch.Icon
	}
	if patch.IconSize != nil && *patch.IconSize > 0 {
		el.IconSize = *patch.IconSize
	}
	if patch.Fill != nil {
		el.Fill = *patch.Fill
	}
	if patch.Stroke != nil {
		el.Stroke = *patch.Stroke
	}
	if patch.StrokeWidth != nil && *patch.StrokeWidth >= 0 {
		el.StrokeWidth = *patch.StrokeWidth
	}
	if patch.Shape != nil {
		el.Shape = *patch.Shape
	}

	s.clamp(el)
	return true
}

// DeleteElement removes the element and clears selection if it was selected.
// Returns the removed element so callers can release any asset it held.
func (s *Scene) DeleteElement(id string) (Element, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Element{}, false
	}
	removed := s.Elements[idx]
	s.Elements = append(s.Elements[:idx], s.Elements[idx+1:]...)
	if s.SelectedID == id {
		s.SelectedID = ""
	}
	return removed, true
}

type ReorderOp string

const (
	ToFront  ReorderOp = "toFront"
	ToBack   ReorderOp = "toBack"
	Forward  ReorderOp = "forward"
	Backward ReorderOp = "backward"
)

// Reorder changes an element's position in paint order. Boundary moves are
// no-ops. Returns false only for unknown ids.
func (s *Scene) Reorder(id string, op ReorderOp) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	last := len(s.Elements) - 1

	switch op {
	case ToFront:
		if idx == last {
			return true
		}
		el := s.Elements[idx]
		s.Elements = append(s.Elements[:idx], s.Elements[idx+1:]...)
		s.Elements = append(s.Elements, el)
	case ToBack:
		if idx == 0 {
			return true
		}
		el := s.Elements[idx]
		s.Elements = append(s.Elements[:idx], s.Elements[idx+1:]...)
		s.Elements = append([]Element{el}, s.Elements...)
	case Forward:
		if idx < last {
			s.Elements[idx], s.Elements[idx+1] = s.Elements[idx+1], s.Elements[idx]
		}
	case Backward:
		if idx > 0 {
			s.Elements[idx], s.Elements[idx-1] = s.Elements[idx-1], s.Elements[idx]
		}
	default:
		return false
	}
	return true
}

// Select marks an element as selected; empty id clears the selection.
// Selecting an unknown id clears the selection too.
func (s *Scene) Select(id string) {
	if id == "" || s.indexOf(id) < 0 {
		s.SelectedID = ""
		return
	}
	s.SelectedID = id
}

func (s *Scene) Get(id string) (Element, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Element{}, false
	}
	return s.Elements[idx], true
}

// Clone returns a deep, independent copy. Element has no reference-typed
// fields, so copying the slice is enough.
func (s *Scene) Clone() *Scene {
	cp := &Scene{
		Orientation: s.Orientation,
		SelectedID:  s.SelectedID,
		Elements:    make([]Element, len(s.Elements)),
	}
	copy(cp.Elements, s.Elements)
	return cp
}

// EqualElements reports whether two element sequences are deeply equal.
// Used by the history manager to suppress duplicate snapshots.
func EqualElements(a, b []Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *Scene) indexOf(id string) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// clamp keeps the element inside the card canvas. Oversized elements are
// shrunk to the canvas first, then position is pulled back into range.
func (s *Scene) clamp(el *Element) {
	cw, ch := CardSize(s.Orientation)
	maxW, maxH := float64(cw), float64(ch)

	if el.W < 1 {
		el.W = 1
	}
	if el.H < 1 {
		el.H = 1
	}
	if el.W > maxW {
		el.W = maxW
	}
	if el.H > maxH {
		el.H = maxH
	}
	if el.X < 0 {
		el.X = 0
	}
	if el.Y < 0 {
		el.Y = 0
	}
	if el.X+el.W > maxW {
		el.X = maxW - el.W
	}
	if el.Y+el.H > maxH {
		el.Y = maxH - el.H
	}
}
