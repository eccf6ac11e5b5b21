package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dukerupert/grobuddy/internal/errs"
)

// Recover turns a handler panic into a logged generic 500.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.Error("panic",
						"error", p,
						"path", r.URL.Path,
						"request_id", RequestIDFromContext(r.Context()),
						"stack", string(debug.Stack()),
					)
					errs.Write(w, errs.NewInternalServerError())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
