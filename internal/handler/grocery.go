package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/grobuddy/internal/auth"
	"github.com/dukerupert/grobuddy/internal/errs"
	"github.com/dukerupert/grobuddy/internal/grocery"
	"github.com/dukerupert/grobuddy/internal/model"
	"github.com/dukerupert/grobuddy/internal/store"
	"github.com/dukerupert/grobuddy/internal/validation"
	ws "github.com/dukerupert/grobuddy/internal/websocket"
)

const itemEntity = "grocery_item"

type GroceryHandler struct {
	groceryStore  *store.GroceryStore
	categoryStore *store.CategoryStore
	hub           *ws.Hub
	logger        *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, cs *store.CategoryStore, hub *ws.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{groceryStore: gs, categoryStore: cs, hub: hub, logger: logger}
}

type createItemRequest struct {
	Name       string  `json:"name" validate:"required,max=128"`
	Quantity   int     `json:"quantity" validate:"gte=0"`
	Unit       string  `json:"unit" validate:"max=32"`
	Price      float64 `json:"price" validate:"gte=0"`
	CategoryID int64   `json:"category_id" validate:"gte=0"`
}

type updateItemRequest struct {
	Name       *string  `json:"name" validate:"omitnil,min=1,max=128"`
	Quantity   *int     `json:"quantity" validate:"omitnil,gte=0"`
	Unit       *string  `json:"unit" validate:"omitnil,max=32"`
	Price      *float64 `json:"price" validate:"omitnil,gte=0"`
	CategoryID *int64   `json:"category_id" validate:"omitnil,gt=0"`
}

type purchasedRequest struct {
	Purchased *bool `json:"purchased" validate:"required"`
}

func (h *GroceryHandler) broadcast(userID int64, action string, id int64, extra map[string]any) {
	h.hub.Broadcast(userID, ws.NewMessage(itemEntity, action, id, extra))
}

// suggestCategory resolves the keyword suggestion for name to a category id,
// falling back to the catch-all category.
func (h *GroceryHandler) suggestCategory(r *http.Request, name string) (int64, error) {
	for _, candidate := range []string{grocery.Suggest(name), grocery.Fallback} {
		category, err := h.categoryStore.GetByName(r.Context(), candidate)
		if err != nil {
			return 0, err
		}
		if category != nil {
			return category.ID, nil
		}
	}
	return 0, store.ErrInvalidCategory
}

func (h *GroceryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req createItemRequest
	if err := validation.Decode(r, &req); err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	// Auto-categorize if no category provided
	if req.CategoryID == 0 {
		id, err := h.suggestCategory(r, req.Name)
		if err != nil {
			writeError(w, r, h.logger, "item", err)
			return
		}
		req.CategoryID = id
	}

	item, err := h.groceryStore.CreateItem(r.Context(), userID, model.ItemFields{
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	h.broadcast(userID, "created", item.ID, nil)
	writeJSON(w, http.StatusCreated, item)
}

// ListItems returns the caller's items. ?purchased=true|false filters on
// purchase state.
func (h *GroceryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	var purchased *bool
	if raw := r.URL.Query().Get("purchased"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs.Write(w, errs.NewBadRequestError("invalid purchased filter",
				errs.FieldError{Field: "purchased", Error: "must be true or false"}))
			return
		}
		purchased = &v
	}

	items, err := h.groceryStore.ListItems(r.Context(), auth.UserID(r.Context()), purchased)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}
	if items == nil {
		items = []model.GroceryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *GroceryHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		errs.Write(w, errs.NewBadRequestError("name is required",
			errs.FieldError{Field: "name", Error: "is required"}))
		return
	}

	items, err := h.groceryStore.SearchItems(r.Context(), auth.UserID(r.Context()), name)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}
	if len(items) == 0 {
		errs.Write(w, errs.NewNotFoundError("no items match "+strconv.Quote(name)))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *GroceryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	var req updateItemRequest
	if err := validation.Decode(r, &req); err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Unit != nil {
		trimmed := strings.TrimSpace(*req.Unit)
		req.Unit = &trimmed
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	patch := model.ItemPatch{
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}
	if patch.Empty() {
		errs.Write(w, errs.NewBadRequestError("no fields to update"))
		return
	}

	item, err := h.groceryStore.UpdateItem(r.Context(), userID, id, patch)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	h.broadcast(userID, "updated", item.ID, nil)
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	if err := h.groceryStore.DeleteItem(r.Context(), userID, id); err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	h.broadcast(userID, "deleted", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroceryHandler) SetPurchased(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	var req purchasedRequest
	if err := validation.DecodeAndValidate(r, &req); err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	item, err := h.groceryStore.SetPurchased(r.Context(), userID, id, *req.Purchased)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	h.broadcast(userID, "purchased", item.ID, map[string]any{"purchased": item.Purchased})
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) PurchaseAll(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	count, err := h.groceryStore.PurchaseAll(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	if count > 0 {
		h.broadcast(userID, "purchased_all", 0, map[string]any{"count": count})
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": count})
}

func (h *GroceryHandler) RecentPurchases(w http.ResponseWriter, r *http.Request) {
	items, err := h.groceryStore.ListRecentPurchases(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}
	if items == nil {
		items = []model.GroceryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *GroceryHandler) ClearPurchased(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	count, err := h.groceryStore.ClearPurchased(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}

	if count > 0 {
		h.broadcast(userID, "cleared", 0, map[string]any{"count": count})
	}
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": count})
}

func (h *GroceryHandler) TotalCost(w http.ResponseWriter, r *http.Request) {
	total, err := h.groceryStore.TotalCost(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "item", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"total_cost": total})
}
