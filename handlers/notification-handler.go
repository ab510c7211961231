package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard/middleware"
	"taskboard/services"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r)
	if !ok {
		http.Error(w, "No active session", http.StatusUnauthorized)
		return
	}

	notifications, err := h.Notifications.GetForUser(r.Context(), identity.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r)
	if !ok {
		http.Error(w, "No active session", http.StatusUnauthorized)
		return
	}

	var req struct {
		NotificationID string `json:"notificationId"`
		CreatedAt      string `json:"createdAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Notifications.MarkAsRead(r.Context(), identity.Email, req.NotificationID, req.CreatedAt); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r)
	if !ok {
		http.Error(w, "No active session", http.StatusUnauthorized)
		return
	}

	var req struct {
		NotificationID string `json:"notificationId"`
		CreatedAt      string `json:"createdAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Notifications.Delete(r.Context(), identity.Email, req.NotificationID, req.CreatedAt); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
