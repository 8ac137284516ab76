package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// mockStationStore implements handler.StationStore. Methods whose fn field
// is nil return a zero-value success.
type mockStationStore struct {
	createStationFn     func(ctx context.Context, arg database.CreateStationParams) (database.KitchenStation, error)
	getStationFn        func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error)
	listStationsByHubFn func(ctx context.Context, hubID uuid.UUID) ([]database.KitchenStation, error)
	updateStationFn     func(ctx context.Context, arg database.UpdateStationParams) (database.KitchenStation, error)
	deactivateStationFn func(ctx context.Context, arg database.DeactivateStationParams) (uuid.UUID, error)
}

func (m *mockStationStore) CreateStation(ctx context.Context, arg database.CreateStationParams) (database.KitchenStation, error) {
	if m.createStationFn != nil {
		return m.createStationFn(ctx, arg)
	}
	return database.KitchenStation{}, nil
}

func (m *mockStationStore) GetStation(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
	if m.getStationFn != nil {
		return m.getStationFn(ctx, arg)
	}
	return database.KitchenStation{}, nil
}

func (m *mockStationStore) ListStationsByHub(ctx context.Context, hubID uuid.UUID) ([]database.KitchenStation, error) {
	if m.listStationsByHubFn != nil {
		return m.listStationsByHubFn(ctx, hubID)
	}
	return nil, nil
}

func (m *mockStationStore) UpdateStation(ctx context.Context, arg database.UpdateStationParams) (database.KitchenStation, error) {
	if m.updateStationFn != nil {
		return m.updateStationFn(ctx, arg)
	}
	return database.KitchenStation{}, nil
}

func (m *mockStationStore) DeactivateStation(ctx context.Context, arg database.DeactivateStationParams) (uuid.UUID, error) {
	if m.deactivateStationFn != nil {
		return m.deactivateStationFn(ctx, arg)
	}
	return uuid.Nil, nil
}

// mockStationViewer implements handler.StationViewer.
type mockStationViewer struct {
	stationSummaryFn     func(ctx context.Context, hubID uuid.UUID) ([]service.StationLoad, error)
	listItemsByStationFn func(ctx context.Context, hubID, stationID uuid.UUID) ([]service.StationTicket, error)
}

func (m *mockStationViewer) StationSummary(ctx context.Context, hubID uuid.UUID) ([]service.StationLoad, error) {
	if m.stationSummaryFn != nil {
		return m.stationSummaryFn(ctx, hubID)
	}
	return nil, nil
}

func (m *mockStationViewer) ListItemsByStation(ctx context.Context, hubID, stationID uuid.UUID) ([]service.StationTicket, error) {
	if m.listItemsByStationFn != nil {
		return m.listItemsByStationFn(ctx, hubID, stationID)
	}
	return nil, nil
}

func setupStationRouter(store handler.StationStore, svc handler.StationViewer) *chi.Mux {
	h := handler.NewStationHandler(store, svc)
	r := chi.NewRouter()
	r.Route("/hubs/{hid}", func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		r.Route("/stations", h.RegisterRoutes)
	})
	return r
}

func TestCreateStation_AppliesDefaults(t *testing.T) {
	hubID := uuid.New()

	var captured database.CreateStationParams
	store := &mockStationStore{
		createStationFn: func(ctx context.Context, arg database.CreateStationParams) (database.KitchenStation, error) {
			captured = arg
			return database.KitchenStation{
				ID: uuid.New(), HubID: arg.HubID, Name: arg.Name,
				Color: arg.Color, Icon: arg.Icon, IsActive: true,
			}, nil
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodPost, fmt.Sprintf("/hubs/%s/stations/", hubID),
		map[string]interface{}{"name": "Grill"}, uuid.New(), hubID)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d, body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if captured.Color != enum.DefaultStationColor {
		t.Errorf("color: got %q, want default", captured.Color)
	}
	if captured.Icon != enum.DefaultStationIcon {
		t.Errorf("icon: got %q, want default", captured.Icon)
	}

	body := decodeBody(t, rec)
	if body["name"] != "Grill" {
		t.Errorf("name: got %v", body["name"])
	}
	if body["is_active"] != true {
		t.Errorf("is_active: got %v", body["is_active"])
	}
}

func TestCreateStation_NameRequired(t *testing.T) {
	hubID := uuid.New()
	store := &mockStationStore{
		createStationFn: func(ctx context.Context, arg database.CreateStationParams) (database.KitchenStation, error) {
			t.Error("store should not be called without a name")
			return database.KitchenStation{}, nil
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodPost, fmt.Sprintf("/hubs/%s/stations/", hubID),
		map[string]interface{}{"color": "#EF4444"}, uuid.New(), hubID)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateStation_DuplicateName(t *testing.T) {
	hubID := uuid.New()
	store := &mockStationStore{
		createStationFn: func(ctx context.Context, arg database.CreateStationParams) (database.KitchenStation, error) {
			return database.KitchenStation{}, &pgconn.PgError{Code: "23505"}
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodPost, fmt.Sprintf("/hubs/%s/stations/", hubID),
		map[string]interface{}{"name": "Grill"}, uuid.New(), hubID)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestListStations(t *testing.T) {
	hubID := uuid.New()
	store := &mockStationStore{
		listStationsByHubFn: func(ctx context.Context, hid uuid.UUID) ([]database.KitchenStation, error) {
			return []database.KitchenStation{
				{ID: uuid.New(), HubID: hid, Name: "Grill", IsActive: true},
				{ID: uuid.New(), HubID: hid, Name: "Bar", IsActive: false},
			}, nil
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodGet, fmt.Sprintf("/hubs/%s/stations/", hubID), nil, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	stations, ok := body["stations"].([]interface{})
	if !ok || len(stations) != 2 {
		t.Fatalf("stations: got %v", body["stations"])
	}
}

func TestGetStation_NotFound(t *testing.T) {
	hubID := uuid.New()
	store := &mockStationStore{
		getStationFn: func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
			return database.KitchenStation{}, pgx.ErrNoRows
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodGet, fmt.Sprintf("/hubs/%s/stations/%s", hubID, uuid.New()), nil, uuid.New(), hubID)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStationSummary(t *testing.T) {
	hubID := uuid.New()
	viewer := &mockStationViewer{
		stationSummaryFn: func(ctx context.Context, hid uuid.UUID) ([]service.StationLoad, error) {
			return []service.StationLoad{
				{Station: database.KitchenStation{ID: uuid.New(), HubID: hid, Name: "Grill", IsActive: true}, PendingCount: 4},
				{Station: database.KitchenStation{ID: uuid.New(), HubID: hid, Name: "Bar", IsActive: true}, PendingCount: 0},
			}, nil
		},
	}

	router := setupStationRouter(&mockStationStore{}, viewer)
	rec := doAuthRequest(t, router, http.MethodGet, fmt.Sprintf("/hubs/%s/stations/summary", hubID), nil, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	stations, ok := body["stations"].([]interface{})
	if !ok || len(stations) != 2 {
		t.Fatalf("stations: got %v", body["stations"])
	}
	first := stations[0].(map[string]interface{})
	if first["pending_count"] != float64(4) {
		t.Errorf("pending_count: got %v", first["pending_count"])
	}
}

func TestStationItems_Tickets(t *testing.T) {
	hubID := uuid.New()
	stationID := uuid.New()
	tableID := uuid.New()

	viewer := &mockStationViewer{
		listItemsByStationFn: func(ctx context.Context, hid, sid uuid.UUID) ([]service.StationTicket, error) {
			if sid != stationID {
				t.Errorf("station ID: got %v, want %v", sid, stationID)
			}
			return []service.StationTicket{
				{
					Item:           database.OrderItem{ID: uuid.New(), ProductName: "Taco", Status: enum.ItemStatusPreparing},
					OrderNumber:    "20260301-0001",
					OrderStatus:    enum.OrderStatusPreparing,
					Priority:       enum.PriorityRush,
					TableID:        pgtype.UUID{Bytes: tableID, Valid: true},
					ElapsedMinutes: 25,
					IsDelayed:      true,
				},
			}, nil
		},
	}

	router := setupStationRouter(&mockStationStore{}, viewer)
	rec := doAuthRequest(t, router, http.MethodGet, fmt.Sprintf("/hubs/%s/stations/%s/items", hubID, stationID), nil, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	items, ok := body["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("items: got %v", body["items"])
	}
	ticket := items[0].(map[string]interface{})
	if ticket["order_number"] != "20260301-0001" {
		t.Errorf("order_number: got %v", ticket["order_number"])
	}
	if ticket["priority"] != enum.PriorityRush {
		t.Errorf("priority: got %v", ticket["priority"])
	}
	if ticket["is_delayed"] != true {
		t.Errorf("is_delayed: got %v", ticket["is_delayed"])
	}
	if ticket["table_id"] != tableID.String() {
		t.Errorf("table_id: got %v", ticket["table_id"])
	}
}

func TestUpdateStation_KeepsCurrentValues(t *testing.T) {
	hubID := uuid.New()
	stationID := uuid.New()

	var captured database.UpdateStationParams
	store := &mockStationStore{
		getStationFn: func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
			return database.KitchenStation{
				ID: arg.ID, HubID: arg.HubID, Name: "Grill",
				Color: "#EF4444", Icon: "flame-outline", IsActive: true,
			}, nil
		},
		updateStationFn: func(ctx context.Context, arg database.UpdateStationParams) (database.KitchenStation, error) {
			captured = arg
			return database.KitchenStation{ID: arg.ID, HubID: arg.HubID, Name: arg.Name, Color: arg.Color, Icon: arg.Icon, IsActive: arg.IsActive}, nil
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodPut, fmt.Sprintf("/hubs/%s/stations/%s", hubID, stationID),
		map[string]interface{}{"name": "Parrilla"}, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if captured.Name != "Parrilla" {
		t.Errorf("name: got %q", captured.Name)
	}
	// Omitted fields keep the stored values.
	if captured.Color != "#EF4444" {
		t.Errorf("color: got %q, want current value kept", captured.Color)
	}
	if captured.Icon != "flame-outline" {
		t.Errorf("icon: got %q, want current value kept", captured.Icon)
	}
	if !captured.IsActive {
		t.Error("is_active should stay true when omitted")
	}
}

func TestUpdateStation_Deactivates(t *testing.T) {
	hubID := uuid.New()
	stationID := uuid.New()

	var captured database.UpdateStationParams
	store := &mockStationStore{
		getStationFn: func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
			return database.KitchenStation{ID: arg.ID, HubID: arg.HubID, Name: "Grill", Color: "#EF4444", Icon: "flame-outline", IsActive: true}, nil
		},
		updateStationFn: func(ctx context.Context, arg database.UpdateStationParams) (database.KitchenStation, error) {
			captured = arg
			return database.KitchenStation{ID: arg.ID, IsActive: arg.IsActive, Name: arg.Name, Color: arg.Color, Icon: arg.Icon}, nil
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodPut, fmt.Sprintf("/hubs/%s/stations/%s", hubID, stationID),
		map[string]interface{}{"name": "Grill", "is_active": false}, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if captured.IsActive {
		t.Error("is_active should be false")
	}
}

func TestUpdateStation_DuplicateName(t *testing.T) {
	hubID := uuid.New()
	stationID := uuid.New()

	store := &mockStationStore{
		getStationFn: func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
			return database.KitchenStation{ID: arg.ID, HubID: arg.HubID, Name: "Grill", Color: "#EF4444", Icon: "flame-outline", IsActive: true}, nil
		},
		updateStationFn: func(ctx context.Context, arg database.UpdateStationParams) (database.KitchenStation, error) {
			return database.KitchenStation{}, &pgconn.PgError{Code: "23505"}
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodPut, fmt.Sprintf("/hubs/%s/stations/%s", hubID, stationID),
		map[string]interface{}{"name": "Bar"}, uuid.New(), hubID)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestDeactivateStation_NoContent(t *testing.T) {
	hubID := uuid.New()
	stationID := uuid.New()

	store := &mockStationStore{
		deactivateStationFn: func(ctx context.Context, arg database.DeactivateStationParams) (uuid.UUID, error) {
			if arg.ID != stationID {
				t.Errorf("station ID: got %v, want %v", arg.ID, stationID)
			}
			return arg.ID, nil
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodDelete, fmt.Sprintf("/hubs/%s/stations/%s", hubID, stationID), nil, uuid.New(), hubID)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestDeactivateStation_NotFound(t *testing.T) {
	hubID := uuid.New()
	store := &mockStationStore{
		deactivateStationFn: func(ctx context.Context, arg database.DeactivateStationParams) (uuid.UUID, error) {
			return uuid.Nil, pgx.ErrNoRows
		},
	}

	router := setupStationRouter(store, &mockStationViewer{})
	rec := doAuthRequest(t, router, http.MethodDelete, fmt.Sprintf("/hubs/%s/stations/%s", hubID, uuid.New()), nil, uuid.New(), hubID)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
