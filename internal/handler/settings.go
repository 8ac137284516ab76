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

// SettingsServicer defines the settings service methods used by handlers.
// Satisfied by *service.SettingsService.
type SettingsServicer interface {
	Get(ctx context.Context, hubID uuid.UUID) (database.OrdersSettings, error)
	Update(ctx context.Context, hubID uuid.UUID, req service.UpdateSettingsRequest) (database.OrdersSettings, error)
}

// SettingsHandler handles the per-hub order settings endpoints.
type SettingsHandler struct {
	svc SettingsServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc SettingsServicer) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// RegisterRoutes registers settings endpoints on the given Chi router.
// Expected to be mounted inside a hub-scoped subrouter: /hubs/{hid}/settings
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Patch("/", h.Update)
}

// --- Request / Response types ---

type updateSettingsRequest struct {
	AutoPrintTickets      *bool   `json:"auto_print_tickets"`
	ShowPrepTime          *bool   `json:"show_prep_time"`
	AlertThresholdMinutes *int32  `json:"alert_threshold_minutes"`
	UseRounds             *bool   `json:"use_rounds"`
	AutoFireOnRound       *bool   `json:"auto_fire_on_round"`
	DefaultOrderType      *string `json:"default_order_type"`
	SoundOnNewOrder       *bool   `json:"sound_on_new_order"`
}

type settingsResponse struct {
	HubID                 uuid.UUID `json:"hub_id"`
	AutoPrintTickets      bool      `json:"auto_print_tickets"`
	ShowPrepTime          bool      `json:"show_prep_time"`
	AlertThresholdMinutes int32     `json:"alert_threshold_minutes"`
	UseRounds             bool      `json:"use_rounds"`
	AutoFireOnRound       bool      `json:"auto_fire_on_round"`
	DefaultOrderType      string    `json:"default_order_type"`
	SoundOnNewOrder       bool      `json:"sound_on_new_order"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// --- Handlers ---

// Get handles GET /hubs/{hid}/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	settings, err := h.svc.Get(r.Context(), hubID)
	if err != nil {
		log.Printf("ERROR: get settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbSettingsToResponse(settings))
}

// Update handles PATCH /hubs/{hid}/settings. Only the fields present in the
// request body are changed.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	settings, err := h.svc.Update(r.Context(), hubID, service.UpdateSettingsRequest{
		AutoPrintTickets:      req.AutoPrintTickets,
		ShowPrepTime:          req.ShowPrepTime,
		AlertThresholdMinutes: req.AlertThresholdMinutes,
		UseRounds:             req.UseRounds,
		AutoFireOnRound:       req.AutoFireOnRound,
		DefaultOrderType:      req.DefaultOrderType,
		SoundOnNewOrder:       req.SoundOnNewOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidThreshold) || errors.Is(err, service.ErrInvalidOrderType) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: update settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbSettingsToResponse(settings))
}

func dbSettingsToResponse(s database.OrdersSettings) settingsResponse {
	return settingsResponse{
		HubID:                 s.HubID,
		AutoPrintTickets:      s.AutoPrintTickets,
		ShowPrepTime:          s.ShowPrepTime,
		AlertThresholdMinutes: s.AlertThresholdMinutes,
		UseRounds:             s.UseRounds,
		AutoFireOnRound:       s.AutoFireOnRound,
		DefaultOrderType:      s.DefaultOrderType,
		SoundOnNewOrder:       s.SoundOnNewOrder,
		UpdatedAt:             s.UpdatedAt,
	}
}
