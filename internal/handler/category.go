package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/grobuddy/internal/errs"
	"github.com/dukerupert/grobuddy/internal/grocery"
	"github.com/dukerupert/grobuddy/internal/model"
	"github.com/dukerupert/grobuddy/internal/store"
	"github.com/dukerupert/grobuddy/internal/validation"
)

type CategoryHandler struct {
	categoryStore *store.CategoryStore
	logger        *slog.Logger
}

func NewCategoryHandler(cs *store.CategoryStore, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categoryStore: cs, logger: logger}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type suggestionResponse struct {
	Category   string `json:"category"`
	CategoryID *int64 `json:"category_id,omitempty"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryStore.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "category", err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := validation.Decode(r, &req); err != nil {
		writeError(w, r, h.logger, "category", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, "category", err)
		return
	}

	category, err := h.categoryStore.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.logger, "category", err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, "category", err)
		return
	}

	err = h.categoryStore.Delete(r.Context(), id)
	if errors.Is(err, store.ErrConflict) {
		errs.Write(w, errs.NewConflictError("category is still used by grocery items"))
		return
	}
	if err != nil {
		writeError(w, r, h.logger, "category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suggest classifies ?name= into a category by keyword.
func (h *CategoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		errs.Write(w, errs.NewBadRequestError("name is required",
			errs.FieldError{Field: "name", Error: "is required"}))
		return
	}

	resp := suggestionResponse{Category: grocery.Suggest(name)}
	category, err := h.categoryStore.GetByName(r.Context(), resp.Category)
	if err != nil {
		writeError(w, r, h.logger, "category", err)
		return
	}
	if category != nil {
		resp.CategoryID = &category.ID
	}
	writeJSON(w, http.StatusOK, resp)
}
