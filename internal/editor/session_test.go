package editor

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"idCardStudioAPI/internal/assets"
	"idCardStudioAPI/internal/scene"
)

func newTestStore(t *testing.T) *assets.Store {
	t.Helper()
	s, err := assets.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func saveAsset(t *testing.T, store *assets.Store) string {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(8, 8, color.NRGBA{A: 255}), imaging.PNG); err != nil {
		t.Fatal(err)
	}
	id, err := store.Save(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestSessionUndoRedoFlow(t *testing.T) {
	sess := NewSession("user_1", scene.OrientationPortrait, newTestStore(t))

	a := sess.AddElement(scene.ElementSpec{Type: scene.ElementText, Text: "A"})
	sess.AddElement(scene.ElementSpec{Type: scene.ElementText, Text: "B"})

	if snap := sess.SceneCopy(); len(snap.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(snap.Elements))
	}

	if !sess.Undo() {
		t.Fatal("undo failed")
	}
	snap := sess.SceneCopy()
	if len(snap.Elements) != 1 || snap.Elements[0].ID != a {
		t.Fatalf("undo should restore the single-element state: %v", snap.Elements)
	}

	if !sess.Redo() {
		t.Fatal("redo failed")
	}
	if snap := sess.SceneCopy(); len(snap.Elements) != 2 {
		t.Fatalf("redo should restore both elements, got %d", len(snap.Elements))
	}

	canUndo, canRedo := sess.HistoryState()
	if !canUndo || canRedo {
		t.Errorf("history state after redo to top: undo=%v redo=%v", canUndo, canRedo)
	}
}

func TestSelectDoesNotSnapshot(t *testing.T) {
	sess := NewSession("", scene.OrientationPortrait, newTestStore(t))

	id := sess.AddElement(scene.ElementSpec{Type: scene.ElementText})
	sess.Select(id)
	sess.Select("")
	sess.Select(id)

	// One undo jumps straight past all the selection churn.
	if !sess.Undo() {
		t.Fatal("undo failed")
	}
	if snap := sess.SceneCopy(); len(snap.Elements) != 0 {
		t.Errorf("expected empty scene after one undo, got %d elements", len(snap.Elements))
	}
}

func TestUndoDropsDanglingSelection(t *testing.T) {
	sess := NewSession("", scene.OrientationPortrait, newTestStore(t))

	sess.AddElement(scene.ElementSpec{Type: scene.ElementText, Text: "A"})
	b := sess.AddElement(scene.ElementSpec{Type: scene.ElementText, Text: "B"})
	sess.Select(b)

	sess.Undo() // back to just A; B no longer exists
	if snap := sess.SceneCopy(); snap.SelectedID != "" {
		t.Errorf("selection should clear when its element leaves the scene, got %q", snap.SelectedID)
	}
}

func TestDispatch(t *testing.T) {
	sess := NewSession("", scene.OrientationPortrait, newTestStore(t))

	id := sess.AddElement(scene.ElementSpec{Type: scene.ElementShape})
	sess.Select(id)

	if err := sess.Dispatch("delete_selected"); err != nil {
		t.Fatalf("delete_selected: %v", err)
	}
	if snap := sess.SceneCopy(); len(snap.Elements) != 0 {
		t.Fatal("delete_selected left the element behind")
	}

	if err := sess.Dispatch("undo"); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if snap := sess.SceneCopy(); len(snap.Elements) != 1 {
		t.Fatal("undo command did not restore the element")
	}

	if err := sess.Dispatch("redo"); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if snap := sess.SceneCopy(); len(snap.Elements) != 0 {
		t.Fatal("redo command did not reapply the delete")
	}

	// delete_selected with nothing selected is a quiet no-op.
	if err := sess.Dispatch("delete_selected"); err != nil {
		t.Errorf("delete_selected with empty selection: %v", err)
	}

	if err := sess.Dispatch("transmogrify"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestDeleteElementReleasesAsset(t *testing.T) {
	store := newTestStore(t)
	sess := NewSession("", scene.OrientationPortrait, store)

	assetID := saveAsset(t, store)
	id := sess.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: assetID})

	if store.RefCount(assetID) != 1 {
		t.Fatalf("refcount before delete: %d", store.RefCount(assetID))
	}
	sess.DeleteElement(id)
	if store.RefCount(assetID) != 0 {
		t.Errorf("deleting the element should release its asset, refcount=%d", store.RefCount(assetID))
	}
}

func TestSharedSrcSurvivesPartialDelete(t *testing.T) {
	store := newTestStore(t)
	sess := NewSession("", scene.OrientationPortrait, store)

	assetID := saveAsset(t, store)
	first := sess.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: assetID})
	second := sess.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: assetID})

	if store.RefCount(assetID) != 2 {
		t.Fatalf("two elements sharing a src should hold two references, got %d", store.RefCount(assetID))
	}

	sess.DeleteElement(first)
	if store.RefCount(assetID) != 1 {
		t.Fatalf("refcount after deleting one of two sharers: %d", store.RefCount(assetID))
	}
	if _, err := store.LoadImage(assetID); err != nil {
		t.Fatalf("asset must stay loadable while an element still references it: %v", err)
	}

	sess.DeleteElement(second)
	if store.RefCount(assetID) != 0 {
		t.Errorf("refcount after deleting the last sharer: %d", store.RefCount(assetID))
	}
}

func TestSharedSrcViaPatchAndClose(t *testing.T) {
	store := newTestStore(t)
	sess := NewSession("", scene.OrientationPortrait, store)

	assetID := saveAsset(t, store)
	sess.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: assetID})

	// Patching a src onto an image element that had none takes another
	// reference, even though nothing is being replaced.
	bare := sess.AddElement(scene.ElementSpec{Type: scene.ElementImage})
	src := assetID
	if !sess.UpdateElement(bare, scene.ElementPatch{Src: &src}) {
		t.Fatal("patch failed")
	}
	if store.RefCount(assetID) != 2 {
		t.Fatalf("refcount after patching the shared src: %d", store.RefCount(assetID))
	}

	sess.Close()
	if store.RefCount(assetID) != 0 {
		t.Errorf("close should drop every held reference, refcount=%d", store.RefCount(assetID))
	}
}

func TestUndoDoesNotResurrectReleasedAsset(t *testing.T) {
	store := newTestStore(t)
	sess := NewSession("", scene.OrientationPortrait, store)

	assetID := saveAsset(t, store)
	id := sess.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: assetID})

	sess.DeleteElement(id)
	if store.RefCount(assetID) != 0 {
		t.Fatalf("refcount after delete: %d", store.RefCount(assetID))
	}

	// History holds element snapshots, not asset references: the restored
	// element points at a src whose file is already gone.
	if !sess.Undo() {
		t.Fatal("undo failed")
	}
	snap := sess.SceneCopy()
	if len(snap.Elements) != 1 || snap.Elements[0].Src != assetID {
		t.Fatalf("undo should restore the element as recorded: %v", snap.Elements)
	}
	if store.RefCount(assetID) != 0 {
		t.Errorf("undo must not mint new references, refcount=%d", store.RefCount(assetID))
	}
	if _, err := store.LoadImage(assetID); err == nil {
		t.Error("released asset should be gone from disk")
	}
}

func TestReplaceSrcReleasesOldAsset(t *testing.T) {
	store := newTestStore(t)
	sess := NewSession("", scene.OrientationPortrait, store)

	oldAsset := saveAsset(t, store)
	newAsset := saveAsset(t, store)
	id := sess.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: oldAsset})

	elementID, ok := sess.ApplyCroppedImage(newAsset, id)
	if !ok || elementID != id {
		t.Fatalf("replace failed: ok=%v id=%q", ok, elementID)
	}
	if store.RefCount(oldAsset) != 0 {
		t.Errorf("old asset should be released on replacement, refcount=%d", store.RefCount(oldAsset))
	}
	if store.RefCount(newAsset) != 1 {
		t.Errorf("new asset refcount: %d", store.RefCount(newAsset))
	}
}

func TestApplyCroppedImageUnknownTarget(t *testing.T) {
	store := newTestStore(t)
	sess := NewSession("", scene.OrientationPortrait, store)

	orphan := saveAsset(t, store)
	if _, ok := sess.ApplyCroppedImage(orphan, "no-such-element"); ok {
		t.Fatal("replace of unknown element should fail")
	}
	if store.RefCount(orphan) != 0 {
		t.Errorf("orphaned asset should be released, refcount=%d", store.RefCount(orphan))
	}
}

func TestCloseReleasesOwnedAssets(t *testing.T) {
	store := newTestStore(t)
	sess := NewSession("", scene.OrientationPortrait, store)

	a := saveAsset(t, store)
	b := saveAsset(t, store)
	sess.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: a})
	sess.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: b})

	sess.Close()
	if store.RefCount(a) != 0 || store.RefCount(b) != 0 {
		t.Errorf("close should release every owned asset: a=%d b=%d",
			store.RefCount(a), store.RefCount(b))
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(newTestStore(t))

	sess := m.Create("user_1", scene.OrientationLandscape)
	if sess.ID == "" {
		t.Fatal("session has no id")
	}

	got, ok := m.Get(sess.ID)
	if !ok || got != sess {
		t.Fatal("manager lost the session")
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("unknown id should miss")
	}

	m.Delete(sess.ID)
	if _, ok := m.Get(sess.ID); ok {
		t.Error("deleted session still retrievable")
	}
	// Deleting twice is harmless.
	m.Delete(sess.ID)
}

func TestSessionTouchesLastActive(t *testing.T) {
	sess := NewSession("", scene.OrientationPortrait, newTestStore(t))
	before := sess.LastActive()

	time.Sleep(5 * time.Millisecond)
	sess.AddElement(scene.ElementSpec{Type: scene.ElementText})

	if !sess.LastActive().After(before) {
		t.Error("mutation should advance the activity timestamp")
	}
}
