package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"io"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"

	"idCardStudioAPI/internal/assets"
	"idCardStudioAPI/internal/cropper"
	"idCardStudioAPI/internal/editor"
	"idCardStudioAPI/internal/scene"
	"idCardStudioAPI/middleware"
)

type EditorHandler struct {
	manager *editor.Manager
	store   *assets.Store
}

func NewEditorHandler(manager *editor.Manager, store *assets.Store) *EditorHandler {
	return &EditorHandler{manager: manager, store: store}
}

type createSessionRequest struct {
	Orientation scene.Orientation `json:"orientation"`
}

type sessionResponse struct {
	SessionID  string       `json:"session_id"`
	Scene      *scene.Scene `json:"scene"`
	SelectedID string       `json:"selected_id,omitempty"`
	CanUndo    bool         `json:"can_undo"`
	CanRedo    bool         `json:"can_redo"`
}

func (h *EditorHandler) sessionState(sess *editor.Session) sessionResponse {
	snap := sess.SceneCopy()
	canUndo, canRedo := sess.HistoryState()
	return sessionResponse{
		SessionID:  sess.ID,
		Scene:      snap,
		SelectedID: snap.SelectedID,
		CanUndo:    canUndo,
		CanRedo:    canRedo,
	}
}

func (h *EditorHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	clerkID, _ := middleware.GetClerkID(r.Context())
	sess := h.manager.Create(clerkID, req.Orientation)
	respondWithJSON(w, http.StatusCreated, h.sessionState(sess))
}

func (h *EditorHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, h.sessionState(sess))
}

func (h *EditorHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	h.manager.Delete(sessionID)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Session closed"})
}

func (h *EditorHandler) AddElement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var spec scene.ElementSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch spec.Type {
	case scene.ElementText, scene.ElementImage, scene.ElementIcon, scene.ElementShape:
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown element type")
		return
	}

	id := sess.AddElement(spec)
	resp := h.sessionState(sess)
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"element_id": id,
		"session":    resp,
	})
}

func (h *EditorHandler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var patch scene.ElementPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Unknown ids are a deliberate no-op; stale drags after a delete
	// should not error.
	sess.UpdateElement(mux.Vars(r)["elementId"], patch)
	respondWithJSON(w, http.StatusOK, h.sessionState(sess))
}

func (h *EditorHandler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.DeleteElement(mux.Vars(r)["elementId"])
	respondWithJSON(w, http.StatusOK, h.sessionState(sess))
}

type reorderRequest struct {
	Op scene.ReorderOp `json:"op"`
}

func (h *EditorHandler) ReorderElement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch req.Op {
	case scene.ToFront, scene.ToBack, scene.Forward, scene.Backward:
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown reorder op")
		return
	}

	sess.Reorder(mux.Vars(r)["elementId"], req.Op)
	respondWithJSON(w, http.StatusOK, h.sessionState(sess))
}

type selectRequest struct {
	ElementID string `json:"element_id"`
}

func (h *EditorHandler) SelectElement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sess.Select(req.ElementID)
	respondWithJSON(w, http.StatusOK, h.sessionState(sess))
}

type commandRequest struct {
	Command string `json:"command"`
}

// DispatchCommand is the HTTP end of the keyboard shortcut map: the
// client wires delete/backspace and the undo/redo chords to these
// command names.
func (h *EditorHandler) DispatchCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := sess.Dispatch(req.Command); err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown command")
		return
	}
	respondWithJSON(w, http.StatusOK, h.sessionState(sess))
}

// ApplyImage runs the crop pipeline on an uploaded source image and
// applies the result to the session: a new image element, or an
// in-place src replacement when replace_element_id is set. A decode
// failure aborts before any scene mutation.
func (h *EditorHandler) ApplyImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(assets.MaxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, assets.MaxUploadBytes+1))
	if err != nil || len(data) > assets.MaxUploadBytes {
		respondWithError(w, http.StatusBadRequest, "Image too large")
		return
	}

	crop := cropSessionFromForm(r)

	src, err := cropper.Decode(bytes.NewReader(data))
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Could not decode image")
		return
	}

	zoomed := cropper.ApplyZoom(src, crop.Zoom)
	cropped, err := cropper.ComputeCroppedImage(zoomed,
		image.Rect(crop.CropX, crop.CropY, crop.CropX+crop.CropW, crop.CropY+crop.CropH),
		crop.RotationDeg)
	if err != nil {
		if errors.Is(err, cropper.ErrImageDecode) {
			respondWithError(w, http.StatusUnprocessableEntity, "Could not decode image")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	outW, outH := cropper.PresetSize(crop.Preset, crop.CustomW, crop.CustomH)
	final := imaging.Resize(cropped, outW, outH, imaging.Lanczos)

	assetID, err := h.store.SaveImage(final)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to store cropped image")
		return
	}

	elementID, applied := sess.ApplyCroppedImage(assetID, crop.ReplaceElementID)
	if !applied {
		respondWithError(w, http.StatusNotFound, "Element to replace not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"element_id": elementID,
		"asset_id":   assetID,
		"session":    h.sessionState(sess),
	})
}

func (h *EditorHandler) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	sess, ok := h.manager.Get(mux.Vars(r)["sessionId"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}

func cropSessionFromForm(r *http.Request) cropper.Session {
	formInt := func(key string) int {
		v, _ := strconv.Atoi(r.FormValue(key))
		return v
	}
	formFloat := func(key string) float64 {
		v, _ := strconv.ParseFloat(r.FormValue(key), 64)
		return v
	}

	crop := cropper.Session{
		Zoom:             formFloat("zoom"),
		RotationDeg:      formFloat("rotation"),
		CropX:            formInt("crop_x"),
		CropY:            formInt("crop_y"),
		CropW:            formInt("crop_w"),
		CropH:            formInt("crop_h"),
		Preset:           cropper.Preset(r.FormValue("preset")),
		CustomW:          formInt("custom_w"),
		CustomH:          formInt("custom_h"),
		ReplaceElementID: r.FormValue("replace_element_id"),
	}
	if crop.Zoom == 0 {
		crop.Zoom = 1.0
	}
	return crop
}
