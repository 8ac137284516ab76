package service

import (
	"context"
	"errors"
	"testing"

	"github.com/comanda-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// mockRoutingStore implements RoutingStore with configurable behavior.
type mockRoutingStore struct {
	getStationForProductFn  func(ctx context.Context, arg database.GetStationForProductParams) (database.KitchenStation, error)
	getStationForCategoryFn func(ctx context.Context, arg database.GetStationForCategoryParams) (database.KitchenStation, error)
	getProductForOrderFn    func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error)
	getStationFn            func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error)
	upsertProductStationFn  func(ctx context.Context, arg database.UpsertProductStationParams) (database.ProductStation, error)
	upsertCategoryStationFn func(ctx context.Context, arg database.UpsertCategoryStationParams) (database.CategoryStation, error)
	deleteProductStationFn  func(ctx context.Context, arg database.DeleteProductStationParams) (uuid.UUID, error)
	deleteCategoryStationFn func(ctx context.Context, arg database.DeleteCategoryStationParams) (uuid.UUID, error)
}

func (m *mockRoutingStore) GetStationForProduct(ctx context.Context, arg database.GetStationForProductParams) (database.KitchenStation, error) {
	return m.getStationForProductFn(ctx, arg)
}
func (m *mockRoutingStore) GetStationForCategory(ctx context.Context, arg database.GetStationForCategoryParams) (database.KitchenStation, error) {
	return m.getStationForCategoryFn(ctx, arg)
}
func (m *mockRoutingStore) GetProductForOrder(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
	return m.getProductForOrderFn(ctx, arg)
}
func (m *mockRoutingStore) GetStation(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
	return m.getStationFn(ctx, arg)
}
func (m *mockRoutingStore) UpsertProductStation(ctx context.Context, arg database.UpsertProductStationParams) (database.ProductStation, error) {
	return m.upsertProductStationFn(ctx, arg)
}
func (m *mockRoutingStore) UpsertCategoryStation(ctx context.Context, arg database.UpsertCategoryStationParams) (database.CategoryStation, error) {
	return m.upsertCategoryStationFn(ctx, arg)
}
func (m *mockRoutingStore) DeleteProductStation(ctx context.Context, arg database.DeleteProductStationParams) (uuid.UUID, error) {
	return m.deleteProductStationFn(ctx, arg)
}
func (m *mockRoutingStore) DeleteCategoryStation(ctx context.Context, arg database.DeleteCategoryStationParams) (uuid.UUID, error) {
	return m.deleteCategoryStationFn(ctx, arg)
}

// unroutedStore returns a mockRoutingStore where no mapping exists.
func unroutedStore() *mockRoutingStore {
	return &mockRoutingStore{
		getStationForProductFn: func(ctx context.Context, arg database.GetStationForProductParams) (database.KitchenStation, error) {
			return database.KitchenStation{}, pgx.ErrNoRows
		},
		getStationForCategoryFn: func(ctx context.Context, arg database.GetStationForCategoryParams) (database.KitchenStation, error) {
			return database.KitchenStation{}, pgx.ErrNoRows
		},
		getProductForOrderFn: func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
			return database.GetProductForOrderRow{}, pgx.ErrNoRows
		},
	}
}

func TestResolve_ProductMappingWins(t *testing.T) {
	hubID := uuid.New()
	productID := uuid.New()
	grillID := uuid.New()

	store := unroutedStore()
	store.getStationForProductFn = func(ctx context.Context, arg database.GetStationForProductParams) (database.KitchenStation, error) {
		return database.KitchenStation{ID: grillID, HubID: hubID, Name: "Grill", IsActive: true}, nil
	}
	store.getStationForCategoryFn = func(ctx context.Context, arg database.GetStationForCategoryParams) (database.KitchenStation, error) {
		t.Error("category mapping should not be consulted when a product mapping exists")
		return database.KitchenStation{}, pgx.ErrNoRows
	}

	router := NewStationRouter(store)
	station, err := router.Resolve(context.Background(), hubID, productID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if station == nil || station.ID != grillID {
		t.Fatalf("expected grill station, got: %v", station)
	}
}

func TestResolve_FallsBackToCategory(t *testing.T) {
	hubID := uuid.New()
	productID := uuid.New()
	categoryID := uuid.New()
	barID := uuid.New()

	store := unroutedStore()
	store.getProductForOrderFn = func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
		return database.GetProductForOrderRow{
			ID:         productID,
			HubID:      hubID,
			CategoryID: pgtype.UUID{Bytes: categoryID, Valid: true},
		}, nil
	}
	store.getStationForCategoryFn = func(ctx context.Context, arg database.GetStationForCategoryParams) (database.KitchenStation, error) {
		if arg.CategoryID != categoryID {
			t.Errorf("category lookup: got %v, want %v", arg.CategoryID, categoryID)
		}
		return database.KitchenStation{ID: barID, HubID: hubID, Name: "Bar", IsActive: true}, nil
	}

	router := NewStationRouter(store)
	station, err := router.Resolve(context.Background(), hubID, productID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if station == nil || station.ID != barID {
		t.Fatalf("expected bar station via category, got: %v", station)
	}
}

func TestResolve_UnroutedReturnsNil(t *testing.T) {
	router := NewStationRouter(unroutedStore())
	station, err := router.Resolve(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if station != nil {
		t.Fatalf("expected nil station for unrouted product, got: %v", station)
	}
}

func TestResolve_UncategorizedProductReturnsNil(t *testing.T) {
	hubID := uuid.New()
	productID := uuid.New()

	store := unroutedStore()
	store.getProductForOrderFn = func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
		return database.GetProductForOrderRow{ID: productID, HubID: hubID}, nil // null category
	}
	store.getStationForCategoryFn = func(ctx context.Context, arg database.GetStationForCategoryParams) (database.KitchenStation, error) {
		t.Error("category mapping should not be consulted without a category")
		return database.KitchenStation{}, pgx.ErrNoRows
	}

	router := NewStationRouter(store)
	station, err := router.Resolve(context.Background(), hubID, productID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if station != nil {
		t.Fatalf("expected nil station, got: %v", station)
	}
}

func TestAssignProduct_StationNotFound(t *testing.T) {
	store := unroutedStore()
	store.getStationFn = func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
		return database.KitchenStation{}, pgx.ErrNoRows
	}

	router := NewStationRouter(store)
	_, err := router.AssignProduct(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("expected ErrStationNotFound, got: %v", err)
	}
}

func TestAssignProduct_InactiveStationRefused(t *testing.T) {
	stationID := uuid.New()
	store := unroutedStore()
	store.getStationFn = func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
		return database.KitchenStation{ID: stationID, IsActive: false}, nil
	}
	store.upsertProductStationFn = func(ctx context.Context, arg database.UpsertProductStationParams) (database.ProductStation, error) {
		t.Error("mapping must not be written to an inactive station")
		return database.ProductStation{}, nil
	}

	router := NewStationRouter(store)
	_, err := router.AssignProduct(context.Background(), uuid.New(), uuid.New(), stationID)
	if !errors.Is(err, ErrStationInactive) {
		t.Fatalf("expected ErrStationInactive, got: %v", err)
	}
}

func TestAssignCategory_Upserts(t *testing.T) {
	hubID := uuid.New()
	categoryID := uuid.New()
	stationID := uuid.New()

	store := unroutedStore()
	store.getStationFn = func(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error) {
		return database.KitchenStation{ID: stationID, HubID: hubID, IsActive: true}, nil
	}
	store.upsertCategoryStationFn = func(ctx context.Context, arg database.UpsertCategoryStationParams) (database.CategoryStation, error) {
		return database.CategoryStation{
			ID: uuid.New(), HubID: arg.HubID,
			CategoryID: arg.CategoryID, StationID: arg.StationID,
		}, nil
	}

	router := NewStationRouter(store)
	mapping, err := router.AssignCategory(context.Background(), hubID, categoryID, stationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mapping.CategoryID != categoryID || mapping.StationID != stationID {
		t.Errorf("mapping: got %v -> %v", mapping.CategoryID, mapping.StationID)
	}
}

func TestRemoveProduct_MappingNotFound(t *testing.T) {
	store := unroutedStore()
	store.deleteProductStationFn = func(ctx context.Context, arg database.DeleteProductStationParams) (uuid.UUID, error) {
		return uuid.Nil, pgx.ErrNoRows
	}

	router := NewStationRouter(store)
	err := router.RemoveProduct(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrMappingNotFound) {
		t.Fatalf("expected ErrMappingNotFound, got: %v", err)
	}
}

func TestRemoveCategory_Deletes(t *testing.T) {
	store := unroutedStore()
	store.deleteCategoryStationFn = func(ctx context.Context, arg database.DeleteCategoryStationParams) (uuid.UUID, error) {
		return uuid.New(), nil
	}

	router := NewStationRouter(store)
	if err := router.RemoveCategory(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
