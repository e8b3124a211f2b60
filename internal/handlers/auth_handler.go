package handlers

import (
	"log"
	"net/http"

	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
)

// AuthHandler handles administrator authentication HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks an administrator's credentials and returns a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		log.Printf("Failed login for %q from %s", req.Email, security.GetClientIP(r))
		respondWithServiceError(w, "Error logging in", err)
		return
	}

	log.Printf("Admin %s logged in", user.Email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     token.Token,
		"expiresAt": token.ExpiresAt,
		"user":      user,
	})
}

// Me returns the authenticated administrator
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetUserFromContext(r.Context()))
}

// ChangePassword sets a new password for the authenticated administrator
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user := GetUserFromContext(r.Context())
	if !security.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		respondWithError(w, http.StatusBadRequest, "Current password is incorrect", "", nil)
		return
	}

	if err := h.authService.ChangePassword(user.ID, req.NewPassword); err != nil {
		respondWithServiceError(w, "Error changing password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
