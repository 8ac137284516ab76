package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// mockRouter implements handler.Router. Methods whose fn field is nil
// return a zero-value success.
type mockRouter struct {
	resolveFn        func(ctx context.Context, hubID, productID uuid.UUID) (*database.KitchenStation, error)
	assignProductFn  func(ctx context.Context, hubID, productID, stationID uuid.UUID) (database.ProductStation, error)
	assignCategoryFn func(ctx context.Context, hubID, categoryID, stationID uuid.UUID) (database.CategoryStation, error)
	removeProductFn  func(ctx context.Context, hubID, productID uuid.UUID) error
	removeCategoryFn func(ctx context.Context, hubID, categoryID uuid.UUID) error
}

func (m *mockRouter) Resolve(ctx context.Context, hubID, productID uuid.UUID) (*database.KitchenStation, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, hubID, productID)
	}
	return nil, nil
}

func (m *mockRouter) AssignProduct(ctx context.Context, hubID, productID, stationID uuid.UUID) (database.ProductStation, error) {
	if m.assignProductFn != nil {
		return m.assignProductFn(ctx, hubID, productID, stationID)
	}
	return database.ProductStation{}, nil
}

func (m *mockRouter) AssignCategory(ctx context.Context, hubID, categoryID, stationID uuid.UUID) (database.CategoryStation, error) {
	if m.assignCategoryFn != nil {
		return m.assignCategoryFn(ctx, hubID, categoryID, stationID)
	}
	return database.CategoryStation{}, nil
}

func (m *mockRouter) RemoveProduct(ctx context.Context, hubID, productID uuid.UUID) error {
	if m.removeProductFn != nil {
		return m.removeProductFn(ctx, hubID, productID)
	}
	return nil
}

func (m *mockRouter) RemoveCategory(ctx context.Context, hubID, categoryID uuid.UUID) error {
	if m.removeCategoryFn != nil {
		return m.removeCategoryFn(ctx, hubID, categoryID)
	}
	return nil
}

func setupRoutingRouter(router handler.Router) *chi.Mux {
	h := handler.NewRoutingHandler(router)
	r := chi.NewRouter()
	r.Route("/hubs/{hid}", func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		r.Route("/routing", h.RegisterRoutes)
	})
	return r
}

func TestResolveProduct_ReturnsStation(t *testing.T) {
	hubID := uuid.New()
	productID := uuid.New()
	stationID := uuid.New()

	router := setupRoutingRouter(&mockRouter{
		resolveFn: func(ctx context.Context, hid, pid uuid.UUID) (*database.KitchenStation, error) {
			if pid != productID {
				t.Errorf("product ID: got %v, want %v", pid, productID)
			}
			return &database.KitchenStation{ID: stationID, HubID: hid, Name: "Grill", IsActive: true}, nil
		},
	})

	rec := doAuthRequest(t, router, http.MethodGet, fmt.Sprintf("/hubs/%s/routing/products/%s", hubID, productID), nil, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	station, ok := body["station"].(map[string]interface{})
	if !ok {
		t.Fatalf("station: got %v", body["station"])
	}
	if station["id"] != stationID.String() {
		t.Errorf("station id: got %v", station["id"])
	}
}

func TestResolveProduct_UnroutedReturnsNull(t *testing.T) {
	hubID := uuid.New()
	router := setupRoutingRouter(&mockRouter{})

	rec := doAuthRequest(t, router, http.MethodGet, fmt.Sprintf("/hubs/%s/routing/products/%s", hubID, uuid.New()), nil, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	if body["station"] != nil {
		t.Errorf("station: got %v, want null", body["station"])
	}
}

func TestAssignProduct_Success(t *testing.T) {
	hubID := uuid.New()
	productID := uuid.New()
	stationID := uuid.New()

	router := setupRoutingRouter(&mockRouter{
		assignProductFn: func(ctx context.Context, hid, pid, sid uuid.UUID) (database.ProductStation, error) {
			if sid != stationID {
				t.Errorf("station ID: got %v, want %v", sid, stationID)
			}
			return database.ProductStation{ID: uuid.New(), HubID: hid, ProductID: pid, StationID: sid}, nil
		},
	})

	rec := doAuthRequest(t, router, http.MethodPut, fmt.Sprintf("/hubs/%s/routing/products/%s", hubID, productID),
		map[string]string{"station_id": stationID.String()}, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["product_id"] != productID.String() {
		t.Errorf("product_id: got %v", body["product_id"])
	}
	if body["station_id"] != stationID.String() {
		t.Errorf("station_id: got %v", body["station_id"])
	}
}

func TestAssignProduct_InvalidStationID(t *testing.T) {
	hubID := uuid.New()
	router := setupRoutingRouter(&mockRouter{
		assignProductFn: func(ctx context.Context, hid, pid, sid uuid.UUID) (database.ProductStation, error) {
			t.Error("service should not be called with a bad station_id")
			return database.ProductStation{}, nil
		},
	})

	rec := doAuthRequest(t, router, http.MethodPut, fmt.Sprintf("/hubs/%s/routing/products/%s", hubID, uuid.New()),
		map[string]string{"station_id": "grill"}, uuid.New(), hubID)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAssignProduct_StationNotFound(t *testing.T) {
	hubID := uuid.New()
	router := setupRoutingRouter(&mockRouter{
		assignProductFn: func(ctx context.Context, hid, pid, sid uuid.UUID) (database.ProductStation, error) {
			return database.ProductStation{}, service.ErrStationNotFound
		},
	})

	rec := doAuthRequest(t, router, http.MethodPut, fmt.Sprintf("/hubs/%s/routing/products/%s", hubID, uuid.New()),
		map[string]string{"station_id": uuid.New().String()}, uuid.New(), hubID)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAssignCategory_InactiveStationConflict(t *testing.T) {
	hubID := uuid.New()
	router := setupRoutingRouter(&mockRouter{
		assignCategoryFn: func(ctx context.Context, hid, cid, sid uuid.UUID) (database.CategoryStation, error) {
			return database.CategoryStation{}, service.ErrStationInactive
		},
	})

	rec := doAuthRequest(t, router, http.MethodPut, fmt.Sprintf("/hubs/%s/routing/categories/%s", hubID, uuid.New()),
		map[string]string{"station_id": uuid.New().String()}, uuid.New(), hubID)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestAssignCategory_Success(t *testing.T) {
	hubID := uuid.New()
	categoryID := uuid.New()
	stationID := uuid.New()

	router := setupRoutingRouter(&mockRouter{
		assignCategoryFn: func(ctx context.Context, hid, cid, sid uuid.UUID) (database.CategoryStation, error) {
			return database.CategoryStation{ID: uuid.New(), HubID: hid, CategoryID: cid, StationID: sid}, nil
		},
	})

	rec := doAuthRequest(t, router, http.MethodPut, fmt.Sprintf("/hubs/%s/routing/categories/%s", hubID, categoryID),
		map[string]string{"station_id": stationID.String()}, uuid.New(), hubID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	if body["category_id"] != categoryID.String() {
		t.Errorf("category_id: got %v", body["category_id"])
	}
}

func TestRemoveProduct_NoContent(t *testing.T) {
	hubID := uuid.New()
	router := setupRoutingRouter(&mockRouter{})

	rec := doAuthRequest(t, router, http.MethodDelete, fmt.Sprintf("/hubs/%s/routing/products/%s", hubID, uuid.New()), nil, uuid.New(), hubID)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestRemoveCategory_MappingNotFound(t *testing.T) {
	hubID := uuid.New()
	router := setupRoutingRouter(&mockRouter{
		removeCategoryFn: func(ctx context.Context, hid, cid uuid.UUID) error {
			return service.ErrMappingNotFound
		},
	})

	rec := doAuthRequest(t, router, http.MethodDelete, fmt.Sprintf("/hubs/%s/routing/categories/%s", hubID, uuid.New()), nil, uuid.New(), hubID)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
