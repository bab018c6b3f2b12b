// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/pkg/constants"
)

// APIKeyAuthMiddleware creates a middleware that rejects requests whose
// X-API-Key header does not match the configured key. Health check
// endpoints are exempt so probes keep working without credentials.
func APIKeyAuthMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/livez" || r.URL.Path == "/readyz" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(constants.APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				slog.WarnContext(r.Context(), "request rejected: invalid API key")
				w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
				w.WriteHeader(http.StatusUnauthorized)
				if err := json.NewEncoder(w).Encode(map[string]string{"error": "invalid API key"}); err != nil {
					slog.ErrorContext(r.Context(), "error writing unauthorized response", logging.ErrKey, err)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
