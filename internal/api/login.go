package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/estrelalabs/telereport/internal/auth"
)

// LoginHandler exchanges the admin password for a session token
type LoginHandler struct {
	auth   *auth.Authenticator
	logger zerolog.Logger
}

// NewLoginHandler creates a new LoginHandler
func NewLoginHandler(a *auth.Authenticator, logger zerolog.Logger) *LoginHandler {
	return &LoginHandler{
		auth:   a,
		logger: logger.With().Str("component", "login").Logger(),
	}
}

// HandleLogin handles POST /admin/login
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	token, err := h.auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			respondError(w, http.StatusUnauthorized, "invalid password")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
