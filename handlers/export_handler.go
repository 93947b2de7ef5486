package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"idCardStudioAPI/internal/assets"
	"idCardStudioAPI/internal/bulk"
	"idCardStudioAPI/internal/editor"
	"idCardStudioAPI/internal/raster"
	"idCardStudioAPI/middleware"
	"idCardStudioAPI/services"
)

const maxArchiveBytes = 100 << 20

type ExportHandler struct {
	manager  *editor.Manager
	exports  *services.ExportService
	settings *services.SettingsService
	store    *assets.Store
}

func NewExportHandler(manager *editor.Manager, exports *services.ExportService, settings *services.SettingsService, store *assets.Store) *ExportHandler {
	return &ExportHandler{manager: manager, exports: exports, settings: settings, store: store}
}

// ExportCard streams the rendered card as a JPEG download. The download
// record and admin notification happen off the request path and can
// never fail this response.
func (h *ExportHandler) ExportCard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if !h.allowDownload(ctx, w, r) {
		return
	}

	result, err := h.exports.ExportCard(ctx, sess)
	if err != nil {
		if errors.Is(err, raster.ErrRecordRasterize) {
			respondWithError(w, http.StatusUnprocessableEntity, "Card could not be rendered")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// BulkExport accepts a multipart form with a required "csv" file and an
// optional "photos" zip/rar whose images bulk rows can reference by
// filename. The response is one zip archive; a malformed row is skipped,
// never fatal.
func (h *ExportHandler) BulkExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if !h.allowDownload(ctx, w, r) {
		return
	}

	if err := r.ParseMultipartForm(maxArchiveBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	csvFile, _, err := r.FormFile("csv")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing csv file")
		return
	}
	defer csvFile.Close()

	records, err := bulk.ParseRecords(csvFile)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Could not parse CSV")
		return
	}

	photoAssets, cleanup, err := h.ingestPhotoArchive(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	if len(photoAssets) > 0 {
		records = resolvePhotoColumns(records, photoAssets)
	}

	result, fileName, err := h.exports.BulkExport(ctx, sess, records)
	if err != nil {
		if errors.Is(err, bulk.ErrNoData) {
			respondWithError(w, http.StatusBadRequest, "No data rows in CSV")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, fileName))
	w.Header().Set("X-Records-Attempted", strconv.Itoa(result.Attempted))
	w.Header().Set("X-Records-Skipped", strconv.Itoa(result.Skipped))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Archive)
}

// allowDownload enforces the login-requirement flag fetched once per
// process and injected via the settings service.
func (h *ExportHandler) allowDownload(ctx context.Context, w http.ResponseWriter, r *http.Request) bool {
	if !h.settings.LoginRequired(ctx) {
		return true
	}
	if _, ok := middleware.GetClerkID(r.Context()); !ok {
		respondWithError(w, http.StatusUnauthorized, "Login required for downloads")
		return false
	}
	return true
}

// ingestPhotoArchive extracts an optional uploaded archive and loads its
// images into the asset store. The returned cleanup releases every
// ingested asset and removes the temp files; batch photos are one-shot.
func (h *ExportHandler) ingestPhotoArchive(r *http.Request) (map[string]string, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile("photos")
	if err != nil {
		return nil, noop, nil // archive is optional
	}
	defer file.Close()

	tmpDir, err := os.MkdirTemp("", "idcard_bulk_")
	if err != nil {
		return nil, noop, fmt.Errorf("could not stage photo archive")
	}

	archivePath := filepath.Join(tmpDir, filepath.Base(header.Filename))
	out, err := os.Create(archivePath)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, noop, fmt.Errorf("could not stage photo archive")
	}
	if _, err := io.Copy(out, io.LimitReader(file, maxArchiveBytes)); err != nil {
		out.Close()
		os.RemoveAll(tmpDir)
		return nil, noop, fmt.Errorf("could not stage photo archive")
	}
	out.Close()

	photos, err := bulk.ExtractPhotoArchive(archivePath, filepath.Join(tmpDir, "extracted"))
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, noop, fmt.Errorf("could not extract photo archive")
	}

	photoAssets := make(map[string]string, len(photos))
	var ingested []string
	for name, path := range photos {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		assetID, err := h.store.Save(data)
		if err != nil {
			continue // validation failures just drop that photo
		}
		photoAssets[name] = assetID
		ingested = append(ingested, assetID)
	}

	cleanup := func() {
		for _, id := range ingested {
			h.store.Release(id)
		}
		os.RemoveAll(tmpDir)
	}
	return photoAssets, cleanup, nil
}

// resolvePhotoColumns swaps archive filenames in record values for the
// ingested asset ids so image-src placeholders resolve at render time.
func resolvePhotoColumns(records []bulk.Record, photoAssets map[string]string) []bulk.Record {
	for _, rec := range records {
		for key, value := range rec {
			if assetID, ok := photoAssets[value]; ok {
				rec[key] = assetID
			}
		}
	}
	return records
}

func (h *ExportHandler) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	sess, ok := h.manager.Get(mux.Vars(r)["sessionId"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}
