package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/grobuddy/internal/auth"
	"github.com/dukerupert/grobuddy/internal/errs"
	"github.com/dukerupert/grobuddy/internal/middleware"
	"github.com/dukerupert/grobuddy/internal/password"
	"github.com/dukerupert/grobuddy/internal/store"
	"github.com/dukerupert/grobuddy/internal/validation"
)

// AuthHandler serves registration, login and account management.
type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	hasher       password.Hasher
	cookieSecure bool
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, hasher password.Hasher, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		hasher:       hasher,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type loginResponse struct {
	UserID    int64     `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

type editAccountRequest struct {
	NewUsername *string `json:"new_username" validate:"omitnil,min=1,max=64"`
	NewPassword *string `json:"new_password" validate:"omitnil,min=1,maxbytes=72"`
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if err := validation.Decode(r, &req); err != nil {
		return req, err
	}
	req.Username = strings.TrimSpace(req.Username)
	return req, validation.Struct(req)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, h.logger, "user", err)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		writeError(w, r, h.logger, "user", err)
		return
	}

	user, err := h.userStore.Create(r.Context(), req.Username, hash)
	if errors.Is(err, store.ErrConflict) {
		errs.Write(w, errs.NewConflictError("username already taken"))
		return
	}
	if err != nil {
		writeError(w, r, h.logger, "user", err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user.Profile())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, h.logger, "user", err)
		return
	}

	invalid := errs.NewUnauthorizedError("invalid username or password")

	user, err := h.userStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, r, h.logger, "user", err)
		return
	}
	if user == nil {
		errs.Write(w, invalid)
		return
	}

	if err := h.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			errs.Write(w, invalid)
			return
		}
		writeError(w, r, h.logger, "user", err)
		return
	}

	sess, err := h.sessionStore.Create(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.logger, "session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		UserID:    user.ID,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		Message:   "login successful",
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())
	if err := h.sessionStore.Delete(r.Context(), caller.SessionID); err != nil {
		writeError(w, r, h.logger, "session", err)
		return
	}
	h.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Profile returns the public fields of ?username=, or of the caller when
// the parameter is omitted.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		username = auth.Username(r.Context())
	}

	user, err := h.userStore.GetByUsername(r.Context(), username)
	if err != nil {
		writeError(w, r, h.logger, "user", err)
		return
	}
	if user == nil {
		errs.Write(w, errs.NewNotFoundError("user not found"))
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

func (h *AuthHandler) EditAccount(w http.ResponseWriter, r *http.Request) {
	var req editAccountRequest
	if err := validation.Decode(r, &req); err != nil {
		writeError(w, r, h.logger, "account", err)
		return
	}
	if req.NewUsername != nil {
		trimmed := strings.TrimSpace(*req.NewUsername)
		req.NewUsername = &trimmed
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, "account", err)
		return
	}
	if req.NewUsername == nil && req.NewPassword == nil {
		errs.Write(w, errs.NewBadRequestError("new_username or new_password is required"))
		return
	}

	var newHash *string
	if req.NewPassword != nil {
		hash, err := h.hasher.Hash(*req.NewPassword)
		if err != nil {
			writeError(w, r, h.logger, "account", err)
			return
		}
		newHash = &hash
	}

	user, err := h.userStore.Update(r.Context(), auth.UserID(r.Context()), r.PathValue("username"), req.NewUsername, newHash)
	switch {
	case errors.Is(err, store.ErrForbidden):
		errs.Write(w, errs.NewForbiddenError("cannot modify another user's account"))
		return
	case errors.Is(err, store.ErrConflict):
		errs.Write(w, errs.NewConflictError("username already taken"))
		return
	case err != nil:
		writeError(w, r, h.logger, "account", err)
		return
	}

	// The store revoked every session along with the password change.
	if newHash != nil {
		h.clearCookie(w)
	}

	writeJSON(w, http.StatusOK, user.Profile())
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	err := h.userStore.Delete(r.Context(), auth.UserID(r.Context()), r.PathValue("username"))
	if errors.Is(err, store.ErrForbidden) {
		errs.Write(w, errs.NewForbiddenError("cannot delete another user's account"))
		return
	}
	if err != nil {
		writeError(w, r, h.logger, "account", err)
		return
	}

	h.logger.Info("account deleted", "user_id", auth.UserID(r.Context()))
	h.clearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
