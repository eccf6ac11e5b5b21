package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConstructorsSetStatusAndCode(t *testing.T) {
	tests := []struct {
		err        *HTTPError
		wantStatus int
		wantCode   string
	}{
		{NewBadRequestError("bad"), http.StatusBadRequest, "BAD_REQUEST"},
		{NewUnauthorizedError("who"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN"},
		{NewNotFoundError("gone"), http.StatusNotFound, "NOT_FOUND"},
		{NewConflictError("dup"), http.StatusConflict, "CONFLICT"},
		{NewTooManyRequestsError(), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{NewValidationError(nil), http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		if tt.err.Status != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.wantCode, tt.err.Status, tt.wantStatus)
		}
		if tt.err.Code != tt.wantCode {
			t.Errorf("code = %q, want %q", tt.err.Code, tt.wantCode)
		}
	}
}

func TestIsMatchesStatusThroughWrapping(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewNotFoundError("item not found"))

	if !errors.Is(err, NewNotFoundError("")) {
		t.Error("expected wrapped 404 to match a 404")
	}
	if errors.Is(err, NewConflictError("")) {
		t.Error("404 should not match 409")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message != "item not found" {
		t.Errorf("errors.As = %v", httpErr)
	}
}

func TestWithMessageCopies(t *testing.T) {
	base := NewNotFoundError("not found")
	custom := base.WithMessage("item not found")

	if base.Message != "not found" {
		t.Error("WithMessage mutated the original")
	}
	if custom.Status != http.StatusNotFound || custom.Message != "item not found" {
		t.Errorf("got %+v", custom)
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, NewConflictError("username already exists"))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "CONFLICT" || body.Message != "username already exists" {
		t.Errorf("body = %+v", body)
	}
}
