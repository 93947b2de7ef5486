package scene

import (
	"testing"
)

func addThree(t *testing.T, s *Scene) (a, b, c string) {
	t.Helper()
	a = s.AddElement(ElementSpec{Type: ElementText, Text: "A"})
	b = s.AddElement(ElementSpec{Type: ElementText, Text: "B"})
	c = s.AddElement(ElementSpec{Type: ElementText, Text: "C"})
	return a, b, c
}

func orderOf(s *Scene) []string {
	texts := make([]string, len(s.Elements))
	for i, el := range s.Elements {
		texts[i] = el.Text
	}
	return texts
}

func assertOrder(t *testing.T, s *Scene, want ...string) {
	t.Helper()
	got := orderOf(s)
	if len(got) != len(want) {
		t.Fatalf("expected %d elements, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paint order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestAddElementDefaults(t *testing.T) {
	s := New(OrientationPortrait)

	id := s.AddElement(ElementSpec{Type: ElementText})
	el, ok := s.Get(id)
	if !ok {
		t.Fatal("added element not found")
	}
	if el.Text != "New Text" || el.Color != "#000000" || el.FontSize != 18 {
		t.Errorf("unexpected text defaults: %+v", el)
	}
	if el.W != 140 || el.H != 40 {
		t.Errorf("unexpected text geometry: %gx%g", el.W, el.H)
	}

	id = s.AddElement(ElementSpec{Type: ElementShape})
	el, _ = s.Get(id)
	if el.Shape != ShapeRect || el.Fill != "#cccccc" {
		t.Errorf("unexpected shape defaults: %+v", el)
	}

	id = s.AddElement(ElementSpec{Type: ElementIcon})
	el, _ = s.Get(id)
	if el.Icon != IconStar || el.IconSize != 40 {
		t.Errorf("unexpected icon defaults: %+v", el)
	}
}

func TestReorder(t *testing.T) {
	s := New(OrientationPortrait)
	a, b, _ := addThree(t, s)
	assertOrder(t, s, "A", "B", "C")

	if !s.Reorder(b, ToFront) {
		t.Fatal("toFront returned false for known id")
	}
	assertOrder(t, s, "A", "C", "B")

	// Already at the bottom: no-op, but still reported as handled.
	if !s.Reorder(a, ToBack) {
		t.Fatal("toBack returned false for known id")
	}
	assertOrder(t, s, "A", "C", "B")

	if !s.Reorder(a, Forward) {
		t.Fatal("forward returned false for known id")
	}
	assertOrder(t, s, "C", "A", "B")

	if s.Reorder("nope", ToFront) {
		t.Error("reorder of unknown id should return false")
	}
	assertOrder(t, s, "C", "A", "B")
}

func TestDeleteClearsSelection(t *testing.T) {
	s := New(OrientationPortrait)
	a, b, _ := addThree(t, s)

	s.Select(a)
	if s.SelectedID != a {
		t.Fatalf("expected %s selected, got %q", a, s.SelectedID)
	}

	if _, ok := s.DeleteElement(a); !ok {
		t.Fatal("delete of known id failed")
	}
	if s.SelectedID != "" {
		t.Errorf("selection should clear when selected element is deleted, got %q", s.SelectedID)
	}

	// Deleting an unselected element leaves the selection alone.
	s.Select(b)
	last := s.Elements[len(s.Elements)-1].ID
	s.DeleteElement(last)
	if s.SelectedID != b {
		t.Errorf("selection changed unexpectedly: %q", s.SelectedID)
	}

	if _, ok := s.DeleteElement("nope"); ok {
		t.Error("delete of unknown id should report false")
	}
}

func TestSelectUnknownClears(t *testing.T) {
	s := New(OrientationPortrait)
	a, _, _ := addThree(t, s)

	s.Select(a)
	s.Select("missing")
	if s.SelectedID != "" {
		t.Errorf("selecting an unknown id should clear selection, got %q", s.SelectedID)
	}
}

func TestUpdateElementPatch(t *testing.T) {
	s := New(OrientationPortrait)
	id := s.AddElement(ElementSpec{Type: ElementText, Text: "hello"})

	x := 50.0
	text := "updated"
	if !s.UpdateElement(id, ElementPatch{X: &x, Text: &text}) {
		t.Fatal("update of known id failed")
	}
	el, _ := s.Get(id)
	if el.X != 50 || el.Text != "updated" {
		t.Errorf("patch not applied: %+v", el)
	}
	// Untouched fields survive.
	if el.FontSize != 18 {
		t.Errorf("font size should be untouched, got %g", el.FontSize)
	}

	if s.UpdateElement("missing", ElementPatch{X: &x}) {
		t.Error("update of unknown id should report false")
	}
}

func TestClampKeepsElementsOnCanvas(t *testing.T) {
	s := New(OrientationPortrait)
	id := s.AddElement(ElementSpec{Type: ElementShape})

	x, y := -40.0, 9999.0
	s.UpdateElement(id, ElementPatch{X: &x, Y: &y})
	el, _ := s.Get(id)
	if el.X != 0 {
		t.Errorf("negative x should clamp to 0, got %g", el.X)
	}
	if el.Y+el.H > PortraitHeight {
		t.Errorf("element escapes bottom edge: y=%g h=%g", el.Y, el.H)
	}

	w, h := 5000.0, 5000.0
	s.UpdateElement(id, ElementPatch{W: &w, H: &h})
	el, _ = s.Get(id)
	if el.W > PortraitWidth || el.H > PortraitHeight {
		t.Errorf("oversized element not shrunk to canvas: %gx%g", el.W, el.H)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New(OrientationLandscape)
	id, _, _ := addThree(t, s)

	cp := s.Clone()
	x := 300.0
	cp.UpdateElement(id, ElementPatch{X: &x})

	orig, _ := s.Get(id)
	if orig.X == 300 {
		t.Error("mutating the clone leaked into the original")
	}
	if cp.Orientation != OrientationLandscape {
		t.Errorf("clone lost orientation: %s", cp.Orientation)
	}
}

func TestCardAndExportSizes(t *testing.T) {
	w, h := CardSize(OrientationPortrait)
	if w != 430 || h != 655 {
		t.Errorf("portrait card size: %dx%d", w, h)
	}
	w, h = CardSize(OrientationLandscape)
	if w != 655 || h != 430 {
		t.Errorf("landscape card size: %dx%d", w, h)
	}
	w, h = ExportSize(OrientationPortrait)
	if w != 860 || h != 1310 {
		t.Errorf("portrait export size: %dx%d", w, h)
	}
}
