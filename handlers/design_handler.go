package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"idCardStudioAPI/internal/assets"
	"idCardStudioAPI/internal/types/design"
	"idCardStudioAPI/middleware"
	"idCardStudioAPI/services"
)

type DesignHandler struct {
	designs *services.DesignService
}

func NewDesignHandler(designs *services.DesignService) *DesignHandler {
	return &DesignHandler{designs: designs}
}

// UploadDesign stores a finished artwork file for the logged-in user so
// the storefront can attach it to a cart line.
func (h *DesignHandler) UploadDesign(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(assets.MaxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("design")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing design file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, assets.MaxUploadBytes+1))
	if err != nil || len(data) > assets.MaxUploadBytes {
		respondWithError(w, http.StatusBadRequest, "Design file too large")
		return
	}

	productType := r.FormValue("product_type")
	if productType == "" {
		productType = "id_card"
	}

	d, err := h.designs.UploadDesign(r.Context(), clerkID, productType, data)
	if err != nil {
		if errors.Is(err, assets.ErrValidation) {
			respondWithJSON(w, http.StatusUnprocessableEntity, design.UploadDesignResponse{
				Success: false,
				Message: "Unsupported or invalid image file",
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to save design")
		return
	}

	respondWithJSON(w, http.StatusCreated, design.UploadDesignResponse{
		Success:  true,
		FileName: d.FileName,
		DesignID: d.ID.String(),
	})
}

func (h *DesignHandler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	designs, err := h.designs.ListDesigns(r.Context(), clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list designs")
		return
	}
	respondWithJSON(w, http.StatusOK, designs)
}

// ShareDesign returns a public URL plus a QR code for a stored design.
func (h *DesignHandler) ShareDesign(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	share, err := h.designs.ShareDesign(r.Context(), clerkID, mux.Vars(r)["designId"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Design not found")
		return
	}
	respondWithJSON(w, http.StatusOK, share)
}
