package handlers

import (
	"net/http"

	"idCardStudioAPI/services"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetDownloadPolicy tells the client whether exports need a login, so it
// can show the auth prompt before the user builds a whole card.
func (h *SettingsHandler) GetDownloadPolicy(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]bool{
		"login_required": h.settings.LoginRequired(r.Context()),
	})
}
