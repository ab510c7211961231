package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard/middleware"
	"taskboard/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
)

type UserHandler struct {
	Users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// CreateUser je privilegovano kreiranje: auth identitet pa profil, sa
// kompenzacionim brisanjem identiteta ako upis profila ne uspe. Ruta je
// zaštićena SERVICE_KEY header-om, ne korisničkim tokenom.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	user, err := h.Users.CreateUserWithIdentity(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         user.ID.Hex(),
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.Role,
		"department": user.Department,
	})
}

func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	user, err := h.Users.GetUserByID(r.Context(), vars["userID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var fields bson.M
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	delete(fields, "_id")
	delete(fields, "id")
	delete(fields, "authId")
	delete(fields, "createdAt")

	user, err := h.Users.UpdateUser(r.Context(), vars["userID"], fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Users.DeleteUser(r.Context(), vars["userID"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r)
	if !ok {
		http.Error(w, "No active session", http.StatusUnauthorized)
		return
	}

	var req struct {
		OldPassword     string `json:"oldPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Users.ChangePassword(r.Context(), identity.Email, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
