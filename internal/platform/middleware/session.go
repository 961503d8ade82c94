package middleware

import (
	"context"
	"log/slog"
	"net/http"

	id "proctor/pkg/domain"
	"proctor/pkg/requestcontext"
)

// Authenticator resolves a session ID taken from the request cookie into the
// user who owns it. Expired and unknown sessions must return an error.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID id.SessionID) (id.UserID, error)
}

// RequireSession guards routes that need an authenticated caller. It reads
// the session cookie, resolves it through the Authenticator, and injects the
// user and session IDs into the request context. Requests without a valid
// session receive 401 without reaching the handler.
func RequireSession(auth Authenticator, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(cookieName)
			if err != nil {
				writeUnauthorized(w, "missing session")
				return
			}

			sessionID, err := id.ParseSessionID(cookie.Value)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed session cookie",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "invalid session")
				return
			}

			userID, err := auth.Authenticate(ctx, sessionID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - session rejected",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "invalid session")
				return
			}

			ctx = requestcontext.WithSessionID(ctx, sessionID)
			ctx = requestcontext.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
