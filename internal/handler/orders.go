package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/upao-inso/restaurant-pos/internal/cart"
	"github.com/upao-inso/restaurant-pos/internal/database"
	"github.com/upao-inso/restaurant-pos/internal/middleware"
	"github.com/upao-inso/restaurant-pos/internal/service"
)

// OrderService defines the order operations the handler needs.
// Satisfied by *service.OrderService.
type OrderService interface {
	ConfirmTable(ctx context.Context, tableID, createdBy uuid.UUID) (*service.ConfirmResult, error)
	OpenTableOrder(ctx context.Context, tableID uuid.UUID) (database.Order, []cart.Item, error)
	MarkServed(ctx context.Context, orderID, productID uuid.UUID, served int) (database.OrderItem, error)
}

// OrderHandler handles order confirmation, reopening and kitchen service.
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterTableRoutes registers the per-table order endpoints.
// Expected to be mounted at /tables/{tid}/order.
func (h *OrderHandler) RegisterTableRoutes(r chi.Router) {
	r.Post("/", h.Confirm)
	r.Post("/open", h.Open)
}

// RegisterRoutes registers the order endpoints. Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Patch("/{id}/items/{pid}/served", h.MarkServed)
}

// --- Request / Response types ---

type markServedRequest struct {
	ServedQuantity *int `json:"served_quantity" validate:"required,gte=0,max=9999"`
}

type orderResponse struct {
	ID          uuid.UUID `json:"id"`
	TableID     uuid.UUID `json:"table_id"`
	Status      string    `json:"status"`
	Subtotal    string    `json:"subtotal"`
	TaxAmount   string    `json:"tax_amount"`
	TotalAmount string    `json:"total_amount"`
	CreatedBy   uuid.UUID `json:"created_by"`
}

type orderItemResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int32     `json:"quantity"`
	ServedQuantity int32     `json:"served_quantity"`
	UnitPrice      string    `json:"unit_price"`
	Subtotal       string    `json:"subtotal"`
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		TableID:     o.TableID,
		Status:      o.Status,
		Subtotal:    database.NumericToDecimal(o.Subtotal).StringFixed(2),
		TaxAmount:   database.NumericToDecimal(o.TaxAmount).StringFixed(2),
		TotalAmount: database.NumericToDecimal(o.TotalAmount).StringFixed(2),
		CreatedBy:   o.CreatedBy,
	}
}

func toOrderItemResponse(i database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ProductID:      i.ProductID,
		Quantity:       i.Quantity,
		ServedQuantity: i.ServedQuantity,
		UnitPrice:      database.NumericToDecimal(i.UnitPrice).StringFixed(2),
		Subtotal:       database.NumericToDecimal(i.Subtotal).StringFixed(2),
	}
}

// --- Handlers ---

// Confirm handles POST /tables/{tid}/order.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	tableID, err := uuidParam(r, "tid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	res, err := h.svc.ConfirmTable(r.Context(), tableID, claims.UserID)
	if err != nil {
		h.writeServiceError(w, "confirm table", err)
		return
	}

	items := make([]orderItemResponse, len(res.Items))
	for i, it := range res.Items {
		items[i] = toOrderItemResponse(it)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"order":   toOrderResponse(res.Order),
		"items":   items,
		"summary": res.Summary,
	})
}

// Open handles POST /tables/{tid}/order/open.
func (h *OrderHandler) Open(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuidParam(r, "tid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	order, items, err := h.svc.OpenTableOrder(r.Context(), tableID)
	if err != nil {
		h.writeServiceError(w, "open table order", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order": toOrderResponse(order),
		"items": orEmpty(items),
	})
}

// MarkServed handles PATCH /orders/{id}/items/{pid}/served.
func (h *OrderHandler) MarkServed(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}
	productID, err := uuidParam(r, "pid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req markServedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	item, err := h.svc.MarkServed(r.Context(), orderID, productID, *req.ServedQuantity)
	if err != nil {
		h.writeServiceError(w, "mark served", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderItemResponse(item))
}

func (h *OrderHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrOrderItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrOrderClosed),
		errors.Is(err, service.ErrTableHasOpenOrder):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidServedQuantity):
		writeErrors(w, http.StatusUnprocessableEntity, []string{err.Error()})
	default:
		internalError(w, op, err)
	}
}
