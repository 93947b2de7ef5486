package handlers

import (
	"encoding/json"
	"net/http"

	"idCardStudioAPI/middleware"
	"idCardStudioAPI/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type registerDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// RegisterDevice stores an admin device token for back-office pushes.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Platform == "" {
		req.Platform = "web"
	}

	if err := h.notifications.RegisterAdminDevice(r.Context(), clerkID, req.Token, req.Platform); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to register device")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
