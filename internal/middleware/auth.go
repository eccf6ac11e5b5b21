package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/grobuddy/internal/auth"
	"github.com/dukerupert/grobuddy/internal/errs"
	"github.com/dukerupert/grobuddy/internal/store"
)

// SessionCookieName is the cookie login sets alongside the returned token.
const SessionCookieName = "grobuddy_session"

// RequireAuth resolves the session token from the Authorization bearer
// header or the session cookie and stores the Caller in the request context.
// Missing, unknown or expired tokens get a 401.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				errs.Write(w, errs.NewUnauthorizedError("authentication required"))
				return
			}

			sess, err := sessionStore.GetByToken(r.Context(), token)
			if err != nil {
				logger.Error("session lookup", "error", err)
				errs.Write(w, errs.NewInternalServerError())
				return
			}
			if sess == nil {
				errs.Write(w, errs.NewUnauthorizedError("invalid or expired session"))
				return
			}

			user, err := userStore.GetByID(r.Context(), sess.UserID)
			if err != nil {
				logger.Error("session user lookup", "error", err)
				errs.Write(w, errs.NewInternalServerError())
				return
			}
			if user == nil {
				errs.Write(w, errs.NewUnauthorizedError("invalid or expired session"))
				return
			}

			ctx := auth.WithCaller(r.Context(), auth.Caller{
				UserID:    user.ID,
				Username:  user.Username,
				SessionID: sess.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken returns the bearer token, falling back to the session cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
