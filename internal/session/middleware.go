package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type sessionIDKey struct{}

// IDFromContext returns the session ID stored by Middleware, if any.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(uuid.UUID)
	return id, ok
}

// WithSessionID injects a session ID into context (used by tests and the
// middleware below).
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// Middleware resolves the session cookie into a session ID on every request.
// A missing, invalid, or expired cookie gets replaced with a freshly minted
// one; the prior bindings are simply unreachable under the new session ID.
func Middleware(tokens *TokenManager, cookieName string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID uuid.UUID

			if cookie, err := r.Cookie(cookieName); err == nil {
				id, err := tokens.Verify(cookie.Value)
				if err != nil {
					logger.Debug().Err(err).Msg("session cookie rejected")
				} else {
					sessionID = id
				}
			}

			if sessionID == uuid.Nil {
				sessionID = uuid.New()
				signed, err := tokens.Issue(sessionID)
				if err != nil {
					logger.Error().Err(err).Msg("issue session token")
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    signed,
					Path:     "/",
					MaxAge:   int(tokens.TTL().Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}
