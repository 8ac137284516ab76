package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// StationStore defines the database methods needed by station handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StationStore interface {
	CreateStation(ctx context.Context, arg database.CreateStationParams) (database.KitchenStation, error)
	GetStation(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error)
	ListStationsByHub(ctx context.Context, hubID uuid.UUID) ([]database.KitchenStation, error)
	UpdateStation(ctx context.Context, arg database.UpdateStationParams) (database.KitchenStation, error)
	DeactivateStation(ctx context.Context, arg database.DeactivateStationParams) (uuid.UUID, error)
}

// StationViewer provides the derived station views.
// Satisfied by *service.OrderService.
type StationViewer interface {
	StationSummary(ctx context.Context, hubID uuid.UUID) ([]service.StationLoad, error)
	ListItemsByStation(ctx context.Context, hubID, stationID uuid.UUID) ([]service.StationTicket, error)
}

// StationHandler handles kitchen station endpoints.
type StationHandler struct {
	store StationStore
	svc   StationViewer
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(store StationStore, svc StationViewer) *StationHandler {
	return &StationHandler{store: store, svc: svc}
}

// RegisterRoutes registers station endpoints on the given Chi router.
// Expected to be mounted inside a hub-scoped subrouter: /hubs/{hid}/stations
func (h *StationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/summary", h.Summary)
	r.Get("/{sid}", h.Get)
	r.Get("/{sid}/items", h.Items)
	r.Put("/{sid}", h.Update)
	r.Delete("/{sid}", h.Deactivate)
}

// --- Request / Response types ---

type stationRequest struct {
	Name        string  `json:"name"`
	NameEs      *string `json:"name_es"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	PrinterName *string `json:"printer_name"`
	SortOrder   int32   `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

type stationResponse struct {
	ID          uuid.UUID `json:"id"`
	HubID       uuid.UUID `json:"hub_id"`
	Name        string    `json:"name"`
	NameEs      *string   `json:"name_es"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	PrinterName *string   `json:"printer_name"`
	SortOrder   int32     `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type stationLoadResponse struct {
	stationResponse
	PendingCount int64 `json:"pending_count"`
}

type stationTicketResponse struct {
	orderItemResponse
	OrderNumber    string  `json:"order_number"`
	OrderStatus    string  `json:"order_status"`
	Priority       string  `json:"priority"`
	TableID        *string `json:"table_id"`
	ElapsedMinutes int32   `json:"elapsed_minutes"`
	IsDelayed      bool    `json:"is_delayed"`
}

// --- Handlers ---

// Create handles POST /hubs/{hid}/stations.
func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	var req stationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	color := req.Color
	if color == "" {
		color = enum.DefaultStationColor
	}
	icon := req.Icon
	if icon == "" {
		icon = enum.DefaultStationIcon
	}

	station, err := h.store.CreateStation(r.Context(), database.CreateStationParams{
		HubID:       hubID,
		Name:        req.Name,
		NameEs:      optionalText(req.NameEs),
		Description: optionalText(req.Description),
		Color:       color,
		Icon:        icon,
		PrinterName: optionalText(req.PrinterName),
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "station name already exists for this hub"})
			return
		}
		log.Printf("ERROR: create station: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbStationToResponse(station))
}

// List handles GET /hubs/{hid}/stations.
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	stations, err := h.store.ListStationsByHub(r.Context(), hubID)
	if err != nil {
		log.Printf("ERROR: list stations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]stationResponse, len(stations))
	for i, s := range stations {
		resp[i] = dbStationToResponse(s)
	}
	writeJSON(w, http.StatusOK, map[string][]stationResponse{"stations": resp})
}

// Summary handles GET /hubs/{hid}/stations/summary. Returns active stations
// with their open item counts for the kitchen overview.
func (h *StationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	loads, err := h.svc.StationSummary(r.Context(), hubID)
	if err != nil {
		log.Printf("ERROR: station summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]stationLoadResponse, len(loads))
	for i, l := range loads {
		resp[i] = stationLoadResponse{
			stationResponse: dbStationToResponse(l.Station),
			PendingCount:    l.PendingCount,
		}
	}
	writeJSON(w, http.StatusOK, map[string][]stationLoadResponse{"stations": resp})
}

// Get handles GET /hubs/{hid}/stations/{sid}.
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	stationID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid station ID"})
		return
	}

	station, err := h.store.GetStation(r.Context(), database.GetStationParams{ID: stationID, HubID: hubID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
			return
		}
		log.Printf("ERROR: get station: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbStationToResponse(station))
}

// Items handles GET /hubs/{hid}/stations/{sid}/items. Returns the open
// tickets for this station's kitchen display, highest priority first.
func (h *StationHandler) Items(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	stationID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid station ID"})
		return
	}

	tickets, err := h.svc.ListItemsByStation(r.Context(), hubID, stationID)
	if err != nil {
		log.Printf("ERROR: list items by station: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]stationTicketResponse, len(tickets))
	for i, t := range tickets {
		ticket := stationTicketResponse{
			orderItemResponse: dbOrderItemToResponse(t.Item),
			OrderNumber:       t.OrderNumber,
			OrderStatus:       t.OrderStatus,
			Priority:          t.Priority,
			ElapsedMinutes:    t.ElapsedMinutes,
			IsDelayed:         t.IsDelayed,
		}
		if t.TableID.Valid {
			s := uuid.UUID(t.TableID.Bytes).String()
			ticket.TableID = &s
		}
		resp[i] = ticket
	}
	writeJSON(w, http.StatusOK, map[string][]stationTicketResponse{"items": resp})
}

// Update handles PUT /hubs/{hid}/stations/{sid}.
func (h *StationHandler) Update(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	stationID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid station ID"})
		return
	}

	var req stationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	current, err := h.store.GetStation(r.Context(), database.GetStationParams{ID: stationID, HubID: hubID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
			return
		}
		log.Printf("ERROR: get station for update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	color := req.Color
	if color == "" {
		color = current.Color
	}
	icon := req.Icon
	if icon == "" {
		icon = current.Icon
	}
	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	station, err := h.store.UpdateStation(r.Context(), database.UpdateStationParams{
		ID:          stationID,
		HubID:       hubID,
		Name:        req.Name,
		NameEs:      optionalText(req.NameEs),
		Description: optionalText(req.Description),
		Color:       color,
		Icon:        icon,
		PrinterName: optionalText(req.PrinterName),
		SortOrder:   req.SortOrder,
		IsActive:    isActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "station name already exists for this hub"})
			return
		}
		log.Printf("ERROR: update station: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbStationToResponse(station))
}

// Deactivate handles DELETE /hubs/{hid}/stations/{sid}. Stations are never
// hard-deleted; existing items keep their station reference.
func (h *StationHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	stationID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid station ID"})
		return
	}

	if _, err := h.store.DeactivateStation(r.Context(), database.DeactivateStationParams{ID: stationID, HubID: hubID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
			return
		}
		log.Printf("ERROR: deactivate station: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func optionalText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func dbStationToResponse(s database.KitchenStation) stationResponse {
	resp := stationResponse{
		ID:        s.ID,
		HubID:     s.HubID,
		Name:      s.Name,
		Color:     s.Color,
		Icon:      s.Icon,
		SortOrder: s.SortOrder,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.NameEs.Valid {
		resp.NameEs = &s.NameEs.String
	}
	if s.Description.Valid {
		resp.Description = &s.Description.String
	}
	if s.PrinterName.Valid {
		resp.PrinterName = &s.PrinterName.String
	}
	return resp
}
