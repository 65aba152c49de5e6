package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/upao-inso/restaurant-pos/internal/cart"
	"github.com/upao-inso/restaurant-pos/internal/catalog"
)

// ProductCatalog defines the catalog reads needed by product handlers.
// Satisfied by catalog.Catalog; narrow interface for testability.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (cart.Product, error)
	ListProducts(ctx context.Context) ([]cart.Product, error)
}

// ProductHandler serves the menu as the dining room sees it.
type ProductHandler struct {
	catalog    ProductCatalog
	classifier *cart.Classifier
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(c ProductCatalog, classifier *cart.Classifier) *ProductHandler {
	if classifier == nil {
		classifier = cart.NewClassifier(nil, nil)
	}
	return &ProductHandler{catalog: c, classifier: classifier}
}

// RegisterRoutes registers product endpoints. Expected to be mounted at /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{pid}", h.Get)
}

type productResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	ProductTypeName string `json:"product_type_name"`
	Category        string `json:"category"`
}

func (h *ProductHandler) toResponse(p cart.Product) productResponse {
	return productResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		Price:           p.Price.StringFixed(2),
		ProductTypeName: p.ProductTypeName,
		Category:        h.classifier.Classify(p.ProductTypeName).String(),
	}
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		internalError(w, "list products", err)
		return
	}
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /products/{pid}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "pid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		internalError(w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(p))
}
