package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/upao-inso/restaurant-pos/internal/inventory"
	"github.com/upao-inso/restaurant-pos/internal/service"
)

// InventoryService defines the stock and recipe operations the handler needs.
// Satisfied by *service.InventoryService.
type InventoryService interface {
	Create(ctx context.Context, in inventory.ItemInput) (service.ItemView, error)
	Update(ctx context.Context, id uuid.UUID, in inventory.ItemInput) (service.ItemView, error)
	Get(ctx context.Context, id uuid.UUID) (service.ItemView, error)
	List(ctx context.Context, itemType inventory.ItemType) ([]service.ItemView, error)
	Adjust(ctx context.Context, id uuid.UUID, delta float64, unit inventory.Unit) (service.ItemView, error)
	SetRecipe(ctx context.Context, productID uuid.UUID, lines []inventory.RecipeItem) ([]inventory.RecipeItem, error)
	RecipeRequirements(ctx context.Context, productID uuid.UUID, portions int) ([]service.Requirement, error)
}

// InventoryHandler handles inventory items and product recipes.
type InventoryHandler struct {
	svc InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(svc InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// RegisterRoutes registers inventory endpoints. Expected to be mounted at /inventory.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/validate", h.Validate)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/adjust", h.Adjust)
}

// RegisterRecipeRoutes registers recipe endpoints.
// Expected to be mounted at /products/{pid}/recipe.
func (h *InventoryHandler) RegisterRecipeRoutes(r chi.Router) {
	r.Put("/", h.SetRecipe)
	r.Get("/requirements", h.Requirements)
}

// --- Request types ---

type itemRequest struct {
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Type          string  `json:"type"`
	UnitOfMeasure string  `json:"unit_of_measure"`
}

// toInput accepts unit aliases such as "kg" or "und". Unknown units pass
// through so validation can report them.
func (req itemRequest) toInput() inventory.ItemInput {
	unit := inventory.Unit(req.UnitOfMeasure)
	if u, err := inventory.ParseUnit(req.UnitOfMeasure); err == nil {
		unit = u
	}
	return inventory.ItemInput{
		Name:          req.Name,
		Quantity:      req.Quantity,
		Type:          inventory.ItemType(req.Type),
		UnitOfMeasure: unit,
	}
}

type adjustRequest struct {
	Delta *float64 `json:"delta" validate:"required"`
	Unit  string   `json:"unit" validate:"required"`
}

type recipeLineRequest struct {
	InventoryID   string  `json:"inventory_id" validate:"required,uuid"`
	Quantity      float64 `json:"quantity"`
	UnitOfMeasure string  `json:"unit_of_measure" validate:"required"`
}

type setRecipeRequest struct {
	Items []recipeLineRequest `json:"items" validate:"dive"`
}

// --- Handlers ---

// List handles GET /inventory?type=INGREDIENT.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), inventory.ItemType(r.URL.Query().Get("type")))
	if err != nil {
		h.writeServiceError(w, "list inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	item, err := h.svc.Create(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, "create inventory item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Validate handles POST /inventory/validate. It checks an item without saving it.
func (h *InventoryHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventory.ValidateInventoryItem(req.toInput()))
}

// Get handles GET /inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inventory ID"})
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update handles PUT /inventory/{id}.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inventory ID"})
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	item, err := h.svc.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.writeServiceError(w, "update inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Adjust handles POST /inventory/{id}/adjust.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inventory ID"})
		return
	}
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	unit, err := inventory.ParseUnit(req.Unit)
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, []string{err.Error()})
		return
	}
	item, err := h.svc.Adjust(r.Context(), id, *req.Delta, unit)
	if err != nil {
		h.writeServiceError(w, "adjust inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// SetRecipe handles PUT /products/{pid}/recipe.
func (h *InventoryHandler) SetRecipe(w http.ResponseWriter, r *http.Request) {
	productID, err := uuidParam(r, "pid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}
	var req setRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	lines := make([]inventory.RecipeItem, len(req.Items))
	for i, it := range req.Items {
		unit := inventory.Unit(it.UnitOfMeasure)
		if u, err := inventory.ParseUnit(it.UnitOfMeasure); err == nil {
			unit = u
		}
		lines[i] = inventory.RecipeItem{
			InventoryID:   uuid.MustParse(it.InventoryID),
			Quantity:      it.Quantity,
			UnitOfMeasure: unit,
		}
	}

	saved, err := h.svc.SetRecipe(r.Context(), productID, lines)
	if err != nil {
		h.writeServiceError(w, "set recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product_id": productID, "items": saved})
}

// Requirements handles GET /products/{pid}/recipe/requirements?portions=N.
func (h *InventoryHandler) Requirements(w http.ResponseWriter, r *http.Request) {
	productID, err := uuidParam(r, "pid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}
	portions := 1
	if s := r.URL.Query().Get("portions"); s != "" {
		portions, err = strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid portions"})
			return
		}
	}

	reqs, err := h.svc.RecipeRequirements(r.Context(), productID, portions)
	if err != nil {
		h.writeServiceError(w, "recipe requirements", err)
		return
	}
	sufficient := true
	for _, req := range reqs {
		sufficient = sufficient && req.Sufficient
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"portions":   portions,
		"sufficient": sufficient,
		"items":      reqs,
	})
}

func (h *InventoryHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeErrors(w, http.StatusUnprocessableEntity, verr.Errors)
	case errors.Is(err, inventory.ErrInvalidConversion), errors.Is(err, inventory.ErrUnknownUnit):
		writeErrors(w, http.StatusUnprocessableEntity, []string{err.Error()})
	case errors.Is(err, service.ErrInventoryNotFound), errors.Is(err, service.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidPortions), errors.Is(err, service.ErrInvalidItemType):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		internalError(w, op, err)
	}
}
