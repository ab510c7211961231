package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"taskboard/middleware"
	"taskboard/models"
	"taskboard/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

type LoginHandler struct {
	Sessions *services.SessionService
}

func NewLoginHandler(sessions *services.SessionService) *LoginHandler {
	return &LoginHandler{Sessions: sessions}
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	identity, token, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Identity: identity})
}

func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "Authorization header missing", http.StatusUnauthorized)
		return
	}

	if err := h.Sessions.Logout(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Session vraća identitet izveden iz tokena (obnavljanje sesije na učitavanju).
func (h *LoginHandler) Session(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r)
	if !ok {
		http.Error(w, "No active session", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
