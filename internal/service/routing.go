package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Errors returned by the station router.
var (
	ErrStationNotFound = errors.New("station not found")
	ErrStationInactive = errors.New("station is not active")
	ErrMappingNotFound = errors.New("mapping not found")
)

// RoutingStore defines the DB methods needed to resolve and manage
// station mappings. Satisfied by *database.Queries.
type RoutingStore interface {
	GetStationForProduct(ctx context.Context, arg database.GetStationForProductParams) (database.KitchenStation, error)
	GetStationForCategory(ctx context.Context, arg database.GetStationForCategoryParams) (database.KitchenStation, error)
	GetProductForOrder(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error)
	GetStation(ctx context.Context, arg database.GetStationParams) (database.KitchenStation, error)
	UpsertProductStation(ctx context.Context, arg database.UpsertProductStationParams) (database.ProductStation, error)
	UpsertCategoryStation(ctx context.Context, arg database.UpsertCategoryStationParams) (database.CategoryStation, error)
	DeleteProductStation(ctx context.Context, arg database.DeleteProductStationParams) (uuid.UUID, error)
	DeleteCategoryStation(ctx context.Context, arg database.DeleteCategoryStationParams) (uuid.UUID, error)
}

// StationRouter resolves which kitchen station an item should be routed to
// and manages the product/category mappings behind that resolution.
type StationRouter struct {
	store RoutingStore
}

// NewStationRouter creates a new StationRouter.
func NewStationRouter(store RoutingStore) *StationRouter {
	return &StationRouter{store: store}
}

// Resolve returns the station for a product, or nil when the product is
// unrouted. A direct product mapping always wins over the category mapping;
// mappings to deactivated stations are skipped. Routing is advisory: a
// missing product yields nil rather than an error.
func (r *StationRouter) Resolve(ctx context.Context, hubID, productID uuid.UUID) (*database.KitchenStation, error) {
	station, err := r.store.GetStationForProduct(ctx, database.GetStationForProductParams{
		HubID:     hubID,
		ProductID: productID,
	})
	if err == nil {
		return &station, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get station for product: %w", err)
	}

	product, err := r.store.GetProductForOrder(ctx, database.GetProductForOrderParams{
		ID:    productID,
		HubID: hubID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !product.CategoryID.Valid {
		return nil, nil
	}

	station, err = r.store.GetStationForCategory(ctx, database.GetStationForCategoryParams{
		HubID:      hubID,
		CategoryID: uuid.UUID(product.CategoryID.Bytes),
	})
	if err == nil {
		return &station, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("get station for category: %w", err)
}

// AssignProduct upserts the product→station mapping. The target station must
// exist and be active.
func (r *StationRouter) AssignProduct(ctx context.Context, hubID, productID, stationID uuid.UUID) (database.ProductStation, error) {
	if err := r.checkStation(ctx, hubID, stationID); err != nil {
		return database.ProductStation{}, err
	}
	mapping, err := r.store.UpsertProductStation(ctx, database.UpsertProductStationParams{
		HubID:     hubID,
		ProductID: productID,
		StationID: stationID,
	})
	if err != nil {
		return database.ProductStation{}, fmt.Errorf("upsert product station: %w", err)
	}
	return mapping, nil
}

// AssignCategory upserts the category→station mapping.
func (r *StationRouter) AssignCategory(ctx context.Context, hubID, categoryID, stationID uuid.UUID) (database.CategoryStation, error) {
	if err := r.checkStation(ctx, hubID, stationID); err != nil {
		return database.CategoryStation{}, err
	}
	mapping, err := r.store.UpsertCategoryStation(ctx, database.UpsertCategoryStationParams{
		HubID:      hubID,
		CategoryID: categoryID,
		StationID:  stationID,
	})
	if err != nil {
		return database.CategoryStation{}, fmt.Errorf("upsert category station: %w", err)
	}
	return mapping, nil
}

// RemoveProduct deletes the product→station mapping.
func (r *StationRouter) RemoveProduct(ctx context.Context, hubID, productID uuid.UUID) error {
	_, err := r.store.DeleteProductStation(ctx, database.DeleteProductStationParams{
		HubID:     hubID,
		ProductID: productID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMappingNotFound
	}
	return err
}

// RemoveCategory deletes the category→station mapping.
func (r *StationRouter) RemoveCategory(ctx context.Context, hubID, categoryID uuid.UUID) error {
	_, err := r.store.DeleteCategoryStation(ctx, database.DeleteCategoryStationParams{
		HubID:      hubID,
		CategoryID: categoryID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMappingNotFound
	}
	return err
}

func (r *StationRouter) checkStation(ctx context.Context, hubID, stationID uuid.UUID) error {
	station, err := r.store.GetStation(ctx, database.GetStationParams{
		ID:    stationID,
		HubID: hubID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStationNotFound
		}
		return fmt.Errorf("get station: %w", err)
	}
	if !station.IsActive {
		return ErrStationInactive
	}
	return nil
}
