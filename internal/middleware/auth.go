package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/picorama/server/internal/observability"
)

// BearerAuth creates middleware that guards upload routes. Clients send
// a bcrypt hash of the shared auth code as a bearer token; the server
// verifies the hash against the code it knows. Rejections are counted on
// the journal metrics when provided.
func BearerAuth(authCode string, metrics *observability.JournalMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				reject(w, r, metrics)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(token), []byte(authCode)); err != nil {
				reject(w, r, metrics)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, metrics *observability.JournalMetrics) {
	observability.WithContext(r.Context()).Warnf("rejected upload credentials from %s", r.RemoteAddr)
	if metrics != nil {
		metrics.RecordAuthFailure(r.Context())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{"error": "Invalid auth code."})
}
