package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda-pos/api/internal/database"
	"github.com/google/uuid"
)

// ErrInvalidThreshold is returned for negative alert thresholds.
var ErrInvalidThreshold = errors.New("alert_threshold_minutes must be >= 0")

// SettingsStore defines the DB methods needed for order settings.
// Satisfied by *database.Queries.
type SettingsStore interface {
	EnsureSettings(ctx context.Context, hubID uuid.UUID) error
	GetSettings(ctx context.Context, hubID uuid.UUID) (database.OrdersSettings, error)
	UpdateSettings(ctx context.Context, arg database.UpdateSettingsParams) (database.OrdersSettings, error)
}

// SettingsService manages the per-hub order settings row.
type SettingsService struct {
	store SettingsStore
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the hub settings, creating the row with defaults on first
// access.
func (s *SettingsService) Get(ctx context.Context, hubID uuid.UUID) (database.OrdersSettings, error) {
	if err := s.store.EnsureSettings(ctx, hubID); err != nil {
		return database.OrdersSettings{}, fmt.Errorf("ensure settings: %w", err)
	}
	settings, err := s.store.GetSettings(ctx, hubID)
	if err != nil {
		return database.OrdersSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettingsRequest carries partial settings updates. Nil fields are
// left unchanged.
type UpdateSettingsRequest struct {
	AutoPrintTickets      *bool
	ShowPrepTime          *bool
	AlertThresholdMinutes *int32
	UseRounds             *bool
	AutoFireOnRound       *bool
	DefaultOrderType      *string
	SoundOnNewOrder       *bool
}

// Update applies a partial update over the current settings.
func (s *SettingsService) Update(ctx context.Context, hubID uuid.UUID, req UpdateSettingsRequest) (database.OrdersSettings, error) {
	current, err := s.Get(ctx, hubID)
	if err != nil {
		return database.OrdersSettings{}, err
	}

	params := database.UpdateSettingsParams{
		HubID:                 hubID,
		AutoPrintTickets:      current.AutoPrintTickets,
		ShowPrepTime:          current.ShowPrepTime,
		AlertThresholdMinutes: current.AlertThresholdMinutes,
		UseRounds:             current.UseRounds,
		AutoFireOnRound:       current.AutoFireOnRound,
		DefaultOrderType:      current.DefaultOrderType,
		SoundOnNewOrder:       current.SoundOnNewOrder,
	}
	if req.AutoPrintTickets != nil {
		params.AutoPrintTickets = *req.AutoPrintTickets
	}
	if req.ShowPrepTime != nil {
		params.ShowPrepTime = *req.ShowPrepTime
	}
	if req.AlertThresholdMinutes != nil {
		if *req.AlertThresholdMinutes < 0 {
			return database.OrdersSettings{}, ErrInvalidThreshold
		}
		params.AlertThresholdMinutes = *req.AlertThresholdMinutes
	}
	if req.UseRounds != nil {
		params.UseRounds = *req.UseRounds
	}
	if req.AutoFireOnRound != nil {
		params.AutoFireOnRound = *req.AutoFireOnRound
	}
	if req.DefaultOrderType != nil {
		if !isValidOrderType(*req.DefaultOrderType) {
			return database.OrdersSettings{}, ErrInvalidOrderType
		}
		params.DefaultOrderType = *req.DefaultOrderType
	}
	if req.SoundOnNewOrder != nil {
		params.SoundOnNewOrder = *req.SoundOnNewOrder
	}

	updated, err := s.store.UpdateSettings(ctx, params)
	if err != nil {
		return database.OrdersSettings{}, fmt.Errorf("update settings: %w", err)
	}
	return updated, nil
}
