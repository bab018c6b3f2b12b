// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/akamensky/base58"
	"github.com/google/uuid"

	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/pkg/constants"
)

// RequestIDMiddleware creates a middleware that attaches a request ID to
// every inbound request. A caller-provided X-REQUEST-ID is honored,
// otherwise a new ID is generated.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.RequestIDHeader)
			if requestID == "" {
				requestID = generateRequestID()
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, constants.RequestIDContextID, requestID)
			ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))

			w.Header().Set(constants.RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func generateRequestID() string {
	id := uuid.New()
	return base58.Encode(id[:])
}
