package editor

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"idCardStudioAPI/internal/assets"
	"idCardStudioAPI/internal/history"
	"idCardStudioAPI/internal/scene"
)

var ErrUnknownCommand = errors.New("unknown editor command")

// Session is one user's live editing state: the mutable scene, its
// undo/redo history, and the asset references the scene owns. All scene
// access goes through the session so every settled mutation snapshots
// exactly once and renders always get an immutable copy.
type Session struct {
	ID      string
	UserID  string
	scene   *scene.Scene
	history *history.Manager
	store   *assets.Store

	mu          sync.Mutex
	ownedAssets map[string]int
	lastActive  time.Time
}

func NewSession(userID string, o scene.Orientation, store *assets.Store) *Session {
	return &Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		scene:       scene.New(o),
		history:     history.New(),
		store:       store,
		ownedAssets: make(map[string]int),
		lastActive:  time.Now(),
	}
}

func (s *Session) AddElement(spec scene.ElementSpec) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	id := s.scene.AddElement(spec)
	if spec.Type == scene.ElementImage && spec.Src != "" {
		s.retainAsset(spec.Src)
	}
	s.history.Snapshot(s.scene.Elements)
	return id
}

func (s *Session) UpdateElement(id string, patch scene.ElementPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	var oldSrc string
	isImage := false
	if patch.Src != nil {
		if el, ok := s.scene.Get(id); ok && el.Type == scene.ElementImage {
			oldSrc = el.Src
			isImage = true
		}
	}

	ok := s.scene.UpdateElement(id, patch)
	if !ok {
		return false
	}
	if patch.Src != nil && isImage && oldSrc != *patch.Src {
		if oldSrc != "" {
			s.releaseAsset(oldSrc)
		}
		if *patch.Src != "" {
			s.retainAsset(*patch.Src)
		}
	}
	s.history.Snapshot(s.scene.Elements)
	return true
}

func (s *Session) DeleteElement(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	removed, ok := s.scene.DeleteElement(id)
	if !ok {
		return false
	}
	if removed.Type == scene.ElementImage && removed.Src != "" {
		s.releaseAsset(removed.Src)
	}
	s.history.Snapshot(s.scene.Elements)
	return true
}

func (s *Session) Reorder(id string, op scene.ReorderOp) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	ok := s.scene.Reorder(id, op)
	if ok {
		s.history.Snapshot(s.scene.Elements)
	}
	return ok
}

// Select is transient UI state: no snapshot.
func (s *Session) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.scene.Select(id)
}

func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	elements, ok := s.history.Undo()
	if ok {
		s.restore(elements)
	}
	return ok
}

func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	elements, ok := s.history.Redo()
	if ok {
		s.restore(elements)
	}
	return ok
}

// Dispatch runs a named command. The HTTP layer wires keyboard shortcuts
// to these; nothing in the engine depends on a platform event system.
func (s *Session) Dispatch(command string) error {
	switch command {
	case "undo":
		s.Undo()
	case "redo":
		s.Redo()
	case "delete_selected":
		s.mu.Lock()
		selected := s.scene.SelectedID
		s.mu.Unlock()
		if selected != "" {
			s.DeleteElement(selected)
		}
	default:
		return ErrUnknownCommand
	}
	return nil
}

// ApplyCroppedImage consumes a finished crop session: either a brand-new
// image element or an in-place src replacement of the element being
// re-edited. Returns the affected element id.
func (s *Session) ApplyCroppedImage(assetID, replaceElementID string) (string, bool) {
	if replaceElementID != "" {
		src := assetID
		ok := s.UpdateElement(replaceElementID, scene.ElementPatch{Src: &src})
		if !ok {
			// Unknown target: the fresh asset has no owner, drop it.
			s.store.Release(assetID)
			return "", false
		}
		return replaceElementID, true
	}
	id := s.AddElement(scene.ElementSpec{Type: scene.ElementImage, Src: assetID})
	return id, true
}

// SceneCopy returns a deep copy for rendering. The rasterizer never sees
// the live scene, so concurrent edits cannot corrupt in-flight output.
func (s *Session) SceneCopy() *scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene.Clone()
}

// HistoryState reports cursor info for the client's undo/redo buttons.
func (s *Session) HistoryState() (canUndo, canRedo bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo(), s.history.CanRedo()
}

// Close releases every reference the session still holds.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for src, n := range s.ownedAssets {
		for i := 0; i < n; i++ {
			s.store.Release(src)
		}
	}
	s.ownedAssets = make(map[string]int)
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// restore swaps in a history snapshot, dropping any selection that no
// longer resolves.
func (s *Session) restore(elements []scene.Element) {
	s.scene.Elements = elements
	if s.scene.SelectedID != "" {
		if _, ok := s.scene.Get(s.scene.SelectedID); !ok {
			s.scene.SelectedID = ""
		}
	}
}

// retainAsset counts one more scene reference to src. The store holds a
// single reference per distinct asset a session owns; extra in-session
// references acquire on top of it, so two elements sharing a src keep
// the file alive until both are gone.
func (s *Session) retainAsset(src string) {
	src = normalizeSrc(src)
	if s.ownedAssets[src] > 0 {
		s.store.Acquire(src)
	}
	s.ownedAssets[src]++
}

func (s *Session) releaseAsset(src string) {
	src = normalizeSrc(src)
	if n := s.ownedAssets[src]; n > 1 {
		s.ownedAssets[src] = n - 1
	} else {
		delete(s.ownedAssets, src)
	}
	s.store.Release(src)
}

// normalizeSrc keys the ownership counter by bare asset id so the url
// form and the bare form of the same asset cannot split the count.
func normalizeSrc(src string) string {
	return strings.TrimPrefix(src, "/assets/")
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}
