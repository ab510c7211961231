package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskboard/logging"
	"taskboard/models"
	"taskboard/services"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom vraća identitet prijavljenog korisnika iz request konteksta.
func IdentityFrom(r *http.Request) (models.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(models.Identity)
	return identity, ok
}

type AuthMiddleware struct {
	Sessions *services.SessionService
}

// Require validira token, proverava rolu iz claim-ova (ne iz klijentskog
// header-a) i stavlja identitet u kontekst zahteva.
func (m *AuthMiddleware) Require(next http.Handler, allowedRoles []models.UserRole) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		identity, err := m.Sessions.Current(r.Context(), tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if len(allowedRoles) > 0 && !roleAllowed(identity.Role, allowedRoles) {
			http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func roleAllowed(role models.UserRole, allowed []models.UserRole) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// ServiceKey štiti privilegovane rute; ključ nikad ne ide ka browser klijentu.
func ServiceKey(key string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key == "" || r.Header.Get("X-Service-Key") != key {
			http.Error(w, "Access forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EnableCORS je CORS omotač za ceo router.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Service-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
