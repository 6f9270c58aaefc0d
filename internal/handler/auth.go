package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/service"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/utils"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

// Login exchanges a viewer PIN for a session token. The PIN arrives as the
// Basic auth username (curl -u "A1B2C3:") or as a JSON body {"pin":"..."}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	pin, _, ok := r.BasicAuth()
	if !ok {
		var req struct {
			PIN string `json:"pin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.PIN != "" {
			pin = req.PIN
		} else {
			utils.ErrorResponse(w, http.StatusUnauthorized, "Missing credentials")
			return
		}
	}

	token, viewer, err := h.AuthService.Login(pin)
	if err != nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	utils.SuccessResponse(w, http.StatusOK, map[string]interface{}{
		"viewer_id": viewer.ID,
		"label":     viewer.Label,
		"token":     token,
	}, "Login successful")
}
