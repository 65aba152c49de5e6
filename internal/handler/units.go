package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/upao-inso/restaurant-pos/internal/inventory"
)

// UnitHandler exposes the unit-of-measure catalog and conversions.
type UnitHandler struct{}

// NewUnitHandler creates a new UnitHandler.
func NewUnitHandler() *UnitHandler {
	return &UnitHandler{}
}

// RegisterRoutes registers unit endpoints. Expected to be mounted at /units.
func (h *UnitHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{unit}/compatible", h.Compatible)
	r.Post("/convert", h.Convert)
}

type unitResponse struct {
	Unit     inventory.Unit `json:"unit"`
	Category string         `json:"category"`
	Base     inventory.Unit `json:"base"`
}

type convertRequest struct {
	Quantity *float64 `json:"quantity" validate:"required"`
	From     string   `json:"from" validate:"required"`
	To       string   `json:"to" validate:"required"`
}

type convertResponse struct {
	Quantity float64        `json:"quantity"`
	From     inventory.Unit `json:"from"`
	To       inventory.Unit `json:"to"`
	Result   float64        `json:"result"`
}

func toUnitResponse(u inventory.Unit) unitResponse {
	return unitResponse{Unit: u, Category: string(u.Category()), Base: u.Base()}
}

// List handles GET /units.
func (h *UnitHandler) List(w http.ResponseWriter, r *http.Request) {
	out := make([]unitResponse, len(inventory.AllUnits))
	for i, u := range inventory.AllUnits {
		out[i] = toUnitResponse(u)
	}
	writeJSON(w, http.StatusOK, out)
}

// Compatible handles GET /units/{unit}/compatible.
func (h *UnitHandler) Compatible(w http.ResponseWriter, r *http.Request) {
	u, err := inventory.ParseUnit(chi.URLParam(r, "unit"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unit":       u,
		"compatible": inventory.GetCompatibleUnits(u),
	})
}

// Convert handles POST /units/convert.
func (h *UnitHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	from, err := inventory.ParseUnit(req.From)
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, []string{err.Error()})
		return
	}
	to, err := inventory.ParseUnit(req.To)
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, []string{err.Error()})
		return
	}
	result, err := inventory.ConvertQuantity(*req.Quantity, from, to)
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, []string{err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{Quantity: *req.Quantity, From: from, To: to, Result: result})
}
