package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Router defines the station routing service methods used by handlers.
// Satisfied by *service.StationRouter.
type Router interface {
	Resolve(ctx context.Context, hubID, productID uuid.UUID) (*database.KitchenStation, error)
	AssignProduct(ctx context.Context, hubID, productID, stationID uuid.UUID) (database.ProductStation, error)
	AssignCategory(ctx context.Context, hubID, categoryID, stationID uuid.UUID) (database.CategoryStation, error)
	RemoveProduct(ctx context.Context, hubID, productID uuid.UUID) error
	RemoveCategory(ctx context.Context, hubID, categoryID uuid.UUID) error
}

// RoutingHandler handles product/category station mapping endpoints.
type RoutingHandler struct {
	router Router
}

// NewRoutingHandler creates a new RoutingHandler.
func NewRoutingHandler(router Router) *RoutingHandler {
	return &RoutingHandler{router: router}
}

// RegisterRoutes registers routing endpoints on the given Chi router.
// Expected to be mounted inside a hub-scoped subrouter: /hubs/{hid}/routing
func (h *RoutingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products/{pid}", h.ResolveProduct)
	r.Put("/products/{pid}", h.AssignProduct)
	r.Delete("/products/{pid}", h.RemoveProduct)
	r.Put("/categories/{cid}", h.AssignCategory)
	r.Delete("/categories/{cid}", h.RemoveCategory)
}

// --- Request / Response types ---

type assignStationRequest struct {
	StationID string `json:"station_id"`
}

type productMappingResponse struct {
	ID        uuid.UUID `json:"id"`
	HubID     uuid.UUID `json:"hub_id"`
	ProductID uuid.UUID `json:"product_id"`
	StationID uuid.UUID `json:"station_id"`
	CreatedAt time.Time `json:"created_at"`
}

type categoryMappingResponse struct {
	ID         uuid.UUID `json:"id"`
	HubID      uuid.UUID `json:"hub_id"`
	CategoryID uuid.UUID `json:"category_id"`
	StationID  uuid.UUID `json:"station_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type resolveResponse struct {
	Station *stationResponse `json:"station"`
}

// --- Handlers ---

// ResolveProduct handles GET /hubs/{hid}/routing/products/{pid}. Returns the
// station an item for this product would be routed to, or null when unrouted.
func (h *RoutingHandler) ResolveProduct(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	station, err := h.router.Resolve(r.Context(), hubID, productID)
	if err != nil {
		log.Printf("ERROR: resolve station: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	var resp resolveResponse
	if station != nil {
		s := dbStationToResponse(*station)
		resp.Station = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

// AssignProduct handles PUT /hubs/{hid}/routing/products/{pid}.
func (h *RoutingHandler) AssignProduct(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	stationID, ok := decodeStationID(w, r)
	if !ok {
		return
	}

	mapping, err := h.router.AssignProduct(r.Context(), hubID, productID, stationID)
	if err != nil {
		h.writeAssignError(w, "assign product station", err)
		return
	}

	writeJSON(w, http.StatusOK, productMappingResponse{
		ID:        mapping.ID,
		HubID:     mapping.HubID,
		ProductID: mapping.ProductID,
		StationID: mapping.StationID,
		CreatedAt: mapping.CreatedAt,
	})
}

// AssignCategory handles PUT /hubs/{hid}/routing/categories/{cid}.
func (h *RoutingHandler) AssignCategory(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	categoryID, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	stationID, ok := decodeStationID(w, r)
	if !ok {
		return
	}

	mapping, err := h.router.AssignCategory(r.Context(), hubID, categoryID, stationID)
	if err != nil {
		h.writeAssignError(w, "assign category station", err)
		return
	}

	writeJSON(w, http.StatusOK, categoryMappingResponse{
		ID:         mapping.ID,
		HubID:      mapping.HubID,
		CategoryID: mapping.CategoryID,
		StationID:  mapping.StationID,
		CreatedAt:  mapping.CreatedAt,
	})
}

// RemoveProduct handles DELETE /hubs/{hid}/routing/products/{pid}.
func (h *RoutingHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	if err := h.router.RemoveProduct(r.Context(), hubID, productID); err != nil {
		h.writeRemoveError(w, "remove product station", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveCategory handles DELETE /hubs/{hid}/routing/categories/{cid}.
func (h *RoutingHandler) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	categoryID, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	if err := h.router.RemoveCategory(r.Context(), hubID, categoryID); err != nil {
		h.writeRemoveError(w, "remove category station", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func decodeStationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req assignStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return uuid.Nil, false
	}
	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid station_id"})
		return uuid.Nil, false
	}
	return stationID, true
}

func (h *RoutingHandler) writeAssignError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, service.ErrStationNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
	case errors.Is(err, service.ErrStationInactive):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "station is not active"})
	default:
		log.Printf("ERROR: %s: %v", name, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func (h *RoutingHandler) writeRemoveError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, service.ErrMappingNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mapping not found"})
		return
	}
	log.Printf("ERROR: %s: %v", name, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
