package service

import (
	"context"
	"errors"
	"testing"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
)

// mockSettingsStore implements SettingsStore with configurable behavior.
type mockSettingsStore struct {
	ensureSettingsFn func(ctx context.Context, hubID uuid.UUID) error
	getSettingsFn    func(ctx context.Context, hubID uuid.UUID) (database.OrdersSettings, error)
	updateSettingsFn func(ctx context.Context, arg database.UpdateSettingsParams) (database.OrdersSettings, error)
}

func (m *mockSettingsStore) EnsureSettings(ctx context.Context, hubID uuid.UUID) error {
	return m.ensureSettingsFn(ctx, hubID)
}
func (m *mockSettingsStore) GetSettings(ctx context.Context, hubID uuid.UUID) (database.OrdersSettings, error) {
	return m.getSettingsFn(ctx, hubID)
}
func (m *mockSettingsStore) UpdateSettings(ctx context.Context, arg database.UpdateSettingsParams) (database.OrdersSettings, error) {
	return m.updateSettingsFn(ctx, arg)
}

func settingsStore(hubID uuid.UUID) *mockSettingsStore {
	return &mockSettingsStore{
		ensureSettingsFn: func(ctx context.Context, hid uuid.UUID) error { return nil },
		getSettingsFn: func(ctx context.Context, hid uuid.UUID) (database.OrdersSettings, error) {
			return defaultSettings(hid), nil
		},
		updateSettingsFn: func(ctx context.Context, arg database.UpdateSettingsParams) (database.OrdersSettings, error) {
			return database.OrdersSettings{
				HubID:                 arg.HubID,
				AutoPrintTickets:      arg.AutoPrintTickets,
				ShowPrepTime:          arg.ShowPrepTime,
				AlertThresholdMinutes: arg.AlertThresholdMinutes,
				UseRounds:             arg.UseRounds,
				AutoFireOnRound:       arg.AutoFireOnRound,
				DefaultOrderType:      arg.DefaultOrderType,
				SoundOnNewOrder:       arg.SoundOnNewOrder,
			}, nil
		},
	}
}

func TestSettingsGet_EnsuresRowFirst(t *testing.T) {
	hubID := uuid.New()
	store := settingsStore(hubID)

	ensured := false
	store.ensureSettingsFn = func(ctx context.Context, hid uuid.UUID) error {
		ensured = true
		return nil
	}

	svc := NewSettingsService(store)
	settings, err := svc.Get(context.Background(), hubID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ensured {
		t.Error("Get should create the settings row on first access")
	}
	if settings.AlertThresholdMinutes != enum.DefaultAlertThresholdMinutes {
		t.Errorf("threshold: got %v, want default", settings.AlertThresholdMinutes)
	}
}

func TestSettingsUpdate_PartialUpdate(t *testing.T) {
	hubID := uuid.New()
	store := settingsStore(hubID)

	var captured database.UpdateSettingsParams
	store.updateSettingsFn = func(ctx context.Context, arg database.UpdateSettingsParams) (database.OrdersSettings, error) {
		captured = arg
		return database.OrdersSettings{HubID: arg.HubID, AlertThresholdMinutes: arg.AlertThresholdMinutes}, nil
	}

	threshold := int32(20)
	svc := NewSettingsService(store)
	_, err := svc.Update(context.Background(), hubID, UpdateSettingsRequest{
		AlertThresholdMinutes: &threshold,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.AlertThresholdMinutes != 20 {
		t.Errorf("threshold: got %v, want 20", captured.AlertThresholdMinutes)
	}
	// Untouched fields keep their current values.
	if !captured.UseRounds {
		t.Error("use_rounds should be unchanged (true)")
	}
	if captured.DefaultOrderType != enum.OrderTypeDineIn {
		t.Errorf("default_order_type: got %v, want unchanged", captured.DefaultOrderType)
	}
}

func TestSettingsUpdate_NegativeThresholdRefused(t *testing.T) {
	hubID := uuid.New()
	svc := NewSettingsService(settingsStore(hubID))

	threshold := int32(-1)
	_, err := svc.Update(context.Background(), hubID, UpdateSettingsRequest{
		AlertThresholdMinutes: &threshold,
	})
	if !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got: %v", err)
	}
}

func TestSettingsUpdate_ZeroThresholdAllowed(t *testing.T) {
	hubID := uuid.New()
	store := settingsStore(hubID)
	svc := NewSettingsService(store)

	threshold := int32(0)
	settings, err := svc.Update(context.Background(), hubID, UpdateSettingsRequest{
		AlertThresholdMinutes: &threshold,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.AlertThresholdMinutes != 0 {
		t.Errorf("threshold: got %v, want 0", settings.AlertThresholdMinutes)
	}
}

func TestSettingsUpdate_InvalidOrderTypeRefused(t *testing.T) {
	hubID := uuid.New()
	svc := NewSettingsService(settingsStore(hubID))

	orderType := "BANQUET"
	_, err := svc.Update(context.Background(), hubID, UpdateSettingsRequest{
		DefaultOrderType: &orderType,
	})
	if !errors.Is(err, ErrInvalidOrderType) {
		t.Fatalf("expected ErrInvalidOrderType, got: %v", err)
	}
}

func TestSettingsUpdate_ToggleFlags(t *testing.T) {
	hubID := uuid.New()
	store := settingsStore(hubID)

	var captured database.UpdateSettingsParams
	store.updateSettingsFn = func(ctx context.Context, arg database.UpdateSettingsParams) (database.OrdersSettings, error) {
		captured = arg
		return database.OrdersSettings{HubID: arg.HubID}, nil
	}

	autoFire := true
	useRounds := false
	svc := NewSettingsService(store)
	_, err := svc.Update(context.Background(), hubID, UpdateSettingsRequest{
		AutoFireOnRound: &autoFire,
		UseRounds:       &useRounds,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !captured.AutoFireOnRound {
		t.Error("auto_fire_on_round should be true")
	}
	if captured.UseRounds {
		t.Error("use_rounds should be false")
	}
}
