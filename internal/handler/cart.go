package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/upao-inso/restaurant-pos/internal/cart"
	"github.com/upao-inso/restaurant-pos/internal/catalog"
)

// ProductLookup resolves products added to a cart. Satisfied by catalog.Catalog.
type ProductLookup interface {
	GetProduct(ctx context.Context, id uuid.UUID) (cart.Product, error)
}

// CartHandler exposes the per-table carts. Each request opens a cart.Engine
// session on the table in the URL.
type CartHandler struct {
	carts      *cart.Store
	classifier *cart.Classifier
	taxRate    decimal.Decimal
	products   ProductLookup
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *cart.Store, classifier *cart.Classifier, taxRate decimal.Decimal, products ProductLookup) *CartHandler {
	return &CartHandler{carts: carts, classifier: classifier, taxRate: taxRate, products: products}
}

// RegisterRoutes registers cart endpoints. Expected to be mounted at /tables.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListTables)
	r.Route("/{tid}/cart", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{pid}", h.UpdateItem)
		r.Delete("/items/{pid}", h.RemoveItem)
		r.Get("/items/{pid}/modifiable", h.Modifiable)
	})
}

// --- Request / Response types ---

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=9999"`
}

type cartResponse struct {
	TableID  uuid.UUID    `json:"table_id"`
	Items    []cart.Item  `json:"items"`
	Starters []cart.Item  `json:"starters"`
	Mains    []cart.Item  `json:"mains"`
	Others   []cart.Item  `json:"others"`
	Summary  cart.Summary `json:"summary"`
}

func orEmpty(items []cart.Item) []cart.Item {
	if items == nil {
		return []cart.Item{}
	}
	return items
}

func toCartResponse(tableID uuid.UUID, e *cart.Engine) cartResponse {
	return cartResponse{
		TableID:  tableID,
		Items:    orEmpty(e.Items()),
		Starters: orEmpty(e.Starters()),
		Mains:    orEmpty(e.Mains()),
		Others:   orEmpty(e.Others()),
		Summary:  e.Summary(),
	}
}

// --- Handlers ---

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (uuid.UUID, *cart.Engine, bool) {
	tableID, err := uuidParam(r, "tid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return uuid.Nil, nil, false
	}
	e := cart.NewEngine(h.carts, h.classifier, h.taxRate)
	e.SetCurrentTable(tableID)
	return tableID, e, true
}

func (h *CartHandler) inCart(e *cart.Engine, productID uuid.UUID) bool {
	for _, it := range e.Items() {
		if it.Product.ID == productID {
			return true
		}
	}
	return false
}

// ListTables handles GET /tables.
func (h *CartHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	e := cart.NewEngine(h.carts, h.classifier, h.taxRate)
	writeJSON(w, http.StatusOK, map[string][]uuid.UUID{"tables": e.GetTablesWithOrders()})
}

// Get handles GET /tables/{tid}/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	tableID, e, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(tableID, e))
}

// Clear handles DELETE /tables/{tid}/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	_, e, ok := h.session(w, r)
	if !ok {
		return
	}
	e.ClearCurrentTableCart()
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /tables/{tid}/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	tableID, e, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	p, err := h.products.GetProduct(r.Context(), uuid.MustParse(req.ProductID))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		internalError(w, "get product", err)
		return
	}

	if !e.AddProduct(p) {
		writeJSON(w, http.StatusConflict, toCartResponse(tableID, e))
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(tableID, e))
}

// UpdateItem handles PUT /tables/{tid}/cart/items/{pid}. A quantity of zero
// or less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	tableID, e, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, err := uuidParam(r, "pid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if !h.inCart(e, productID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not in cart"})
		return
	}
	if !e.UpdateQuantity(productID, *req.Quantity) {
		writeJSON(w, http.StatusConflict, toCartResponse(tableID, e))
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(tableID, e))
}

// RemoveItem handles DELETE /tables/{tid}/cart/items/{pid}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	tableID, e, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, err := uuidParam(r, "pid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	if !h.inCart(e, productID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not in cart"})
		return
	}
	if !e.RemoveProduct(productID) {
		writeJSON(w, http.StatusConflict, toCartResponse(tableID, e))
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(tableID, e))
}

// Modifiable handles GET /tables/{tid}/cart/items/{pid}/modifiable.
func (h *CartHandler) Modifiable(w http.ResponseWriter, r *http.Request) {
	_, e, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, err := uuidParam(r, "pid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}
	writeJSON(w, http.StatusOK, e.CanModifyProduct(productID))
}
