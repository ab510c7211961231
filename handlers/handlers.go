package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard/apperrors"
)

// writeJSON serijalizuje odgovor sa zadatim statusom.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError mapira kind greške na HTTP status; klijent nikad ne zavisi od
// teksta poruke iz baze.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindInvalidCredentials, apperrors.KindIdentityMismatch:
		status = http.StatusUnauthorized
	case apperrors.KindDuplicateEmail:
		status = http.StatusConflict
	case apperrors.KindPermissionDenied:
		status = http.StatusForbidden
	case apperrors.KindInvalidInput:
		status = http.StatusBadRequest
	case apperrors.KindUnavailable:
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  apperrors.KindOf(err).String(),
	})
}
