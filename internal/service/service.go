// Package service provides the implementation of sweet-inventory business logic.
package service

import (
	"context"
	"fmt"

	shoperrors "github.com/rmehra/sweetshop/internal/errors"
	"github.com/rmehra/sweetshop/internal/store"
	"github.com/rmehra/sweetshop/internal/sweet"
)

// SweetService defines the methods for managing the sweet inventory.
// It abstracts the underlying business logic and data access.
type SweetService interface {
	// Add inserts a new validated sweet.
	// Returns ErrValidation on an entity rule violation and ErrDuplicateID
	// if a sweet with the same ID already exists.
	Add(ctx context.Context, dto SweetCreateDto) (*SweetDto, error)

	// AddWithUnits inserts a new sweet whose quantity and weight may arrive
	// as numbers or named presets, with a mandatory measurement unit.
	// Returns ErrInvalidAmount or ErrInvalidUnit on unresolvable input.
	AddWithUnits(ctx context.Context, dto SweetUnitsCreateDto) (*SweetDto, error)

	// FindAll returns every sweet in insertion order.
	FindAll(ctx context.Context) ([]SweetDto, error)

	// FindByID retrieves a single sweet by its ID.
	// Returns ErrSweetNotFound if no sweet exists with the given ID.
	FindByID(ctx context.Context, id int64) (*SweetDto, error)

	// Update applies the populated fields onto an existing sweet.
	// Returns ErrSweetNotFound if the ID is unknown and ErrValidation if
	// the merged result violates an entity rule.
	Update(ctx context.Context, id int64, dto SweetUpdateDto) (*SweetDto, error)

	// DeleteByID removes a sweet by its ID.
	// Returns ErrSweetNotFound if no sweet exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Search returns the sweets matching every populated criterion.
	Search(ctx context.Context, criteria store.Criteria) ([]SweetDto, error)

	// SortBy returns the sweets ordered by the given field.
	// Returns ErrInvalidSortField for an unknown field.
	SortBy(ctx context.Context, field store.SortField) ([]SweetDto, error)

	// Purchase decrements stock and reports the cost of the transaction.
	Purchase(ctx context.Context, id, qty int64) (*PurchaseDto, error)

	// Restock increments stock.
	Restock(ctx context.Context, id, qty int64) (*RestockDto, error)

	// LowStock returns the sweets at or below the given stock threshold.
	LowStock(ctx context.Context, threshold int64) ([]SweetDto, error)

	// ByCategory returns the sweets of one category.
	ByCategory(ctx context.Context, category string) ([]SweetDto, error)

	// Stats computes an aggregate snapshot of the inventory.
	Stats(ctx context.Context) (*StatsDto, error)
}

// Service implements SweetService over a SweetStore.
type Service struct {
	repository store.SweetStore
}

// NewService creates a new instance of SweetService with the provided store.
func NewService(repo store.SweetStore) *Service {
	return &Service{
		repository: repo,
	}
}

// SweetCreateDto represents the data transfer object for creating a new sweet.
// Fields are pointers so an explicit zero (price 0, quantity 0) passes the
// required check while an absent field fails it.
type SweetCreateDto struct {
	ID       *int64   `json:"id"       validate:"required"`
	Name     *string  `json:"name"     validate:"required"`
	Category *string  `json:"category" validate:"required"`
	Price    *float64 `json:"price"    validate:"required"`
	Quantity *int64   `json:"quantity" validate:"required"`
}

// SweetUnitsCreateDto is the create variant whose quantity and weight accept
// a JSON number or a named preset (stockLimit, minStock, defaultWeight,
// maxWeight) and which requires a measurement unit.
type SweetUnitsCreateDto struct {
	ID           *int64   `json:"id"       validate:"required"`
	Name         *string  `json:"name"     validate:"required"`
	Category     *string  `json:"category" validate:"required"`
	Price        *float64 `json:"price"    validate:"required"`
	Quantity     any      `json:"quantity"`
	Weight       any      `json:"weight"`
	QuantityUnit string   `json:"quantityUnit"`
}

// SweetUpdateDto enumerates the updatable fields; every field is optional and
// the ID is deliberately absent.
type SweetUpdateDto struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Quantity *int64   `json:"quantity"`
}

// SweetDto represents the data transfer object for a sweet, including the
// derived read-only facts.
type SweetDto struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Quantity       int64   `json:"quantity"`
	Weight         float64 `json:"weight,omitempty"`
	QuantityUnit   string  `json:"quantityUnit,omitempty"`
	FormattedPrice string  `json:"formattedPrice"`
	InStock        bool    `json:"inStock"`
	LowStock       bool    `json:"lowStock"`
	TotalValue     float64 `json:"totalValue"`
}

// PurchaseDto reports a completed purchase alongside the updated sweet.
type PurchaseDto struct {
	Sweet             SweetDto `json:"sweet"`
	QuantityPurchased int64    `json:"quantityPurchased"`
	TotalCost         float64  `json:"totalCost"`
	RemainingQuantity int64    `json:"remainingQuantity"`
}

// RestockDto reports a completed restock alongside the updated sweet.
type RestockDto struct {
	Sweet         SweetDto `json:"sweet"`
	QuantityAdded int64    `json:"quantityAdded"`
	NewQuantity   int64    `json:"newQuantity"`
}

// CategoryStatsDto aggregates one category for the stats snapshot.
type CategoryStatsDto struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

// StatsDto is the aggregate inventory snapshot.
type StatsDto struct {
	TotalSweets         int                `json:"totalSweets"`
	TotalInventoryValue float64            `json:"totalInventoryValue"`
	LowStockCount       int                `json:"lowStockCount"`
	Categories          []CategoryStatsDto `json:"categories"`
	AveragePrice        float64            `json:"averagePrice"`
}

// Add constructs a validated sweet from the DTO and inserts it.
func (s *Service) Add(_ context.Context, dto SweetCreateDto) (*SweetDto, error) {
	entity, err := sweet.New(*dto.ID, *dto.Name, *dto.Category, *dto.Price, *dto.Quantity)
	if err != nil {
		return nil, err
	}
	stored, err := s.repository.Insert(*entity)
	if err != nil {
		return nil, fmt.Errorf("failed to add sweet with ID %d: %w", entity.ID, err)
	}
	return toDto(stored), nil
}

// AddWithUnits resolves the flexible quantity and weight values, validates the
// unit, and inserts the sweet.
func (s *Service) AddWithUnits(_ context.Context, dto SweetUnitsCreateDto) (*SweetDto, error) {
	if dto.Quantity == nil {
		return nil, fmt.Errorf("%w: Quantity must be a non-negative number", shoperrors.ErrValidation)
	}
	qty, err := sweet.ParseCount(dto.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %w", err)
	}
	var weight float64
	if dto.Weight != nil {
		weight, err = sweet.ParseAmount(dto.Weight)
		if err != nil {
			return nil, fmt.Errorf("invalid weight: %w", err)
		}
	}
	unit := sweet.Unit(dto.QuantityUnit)
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: allowed: kg, gram, piece", shoperrors.ErrInvalidUnit)
	}

	entity, err := sweet.New(*dto.ID, *dto.Name, *dto.Category, *dto.Price, qty)
	if err != nil {
		return nil, err
	}
	entity.Weight = weight
	entity.Unit = unit

	stored, err := s.repository.Insert(*entity)
	if err != nil {
		return nil, fmt.Errorf("failed to add sweet with ID %d: %w", entity.ID, err)
	}
	return toDto(stored), nil
}

// FindAll retrieves every sweet and returns them as SweetDtos.
func (s *Service) FindAll(_ context.Context) ([]SweetDto, error) {
	return toDtos(s.repository.FindAll()), nil
}

// FindByID retrieves a sweet by its ID and returns it as a SweetDto.
// Returns ErrSweetNotFound if no sweet exists with the given ID.
func (s *Service) FindByID(_ context.Context, id int64) (*SweetDto, error) {
	found, err := s.repository.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sweet by ID %d: %w", id, err)
	}
	return toDto(found), nil
}

// Update merges the populated DTO fields onto the stored sweet.
func (s *Service) Update(_ context.Context, id int64, dto SweetUpdateDto) (*SweetDto, error) {
	updated, err := s.repository.Update(id, sweet.Update{
		Name:     dto.Name,
		Category: dto.Category,
		Price:    dto.Price,
		Quantity: dto.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update sweet with ID %d: %w", id, err)
	}
	return toDto(updated), nil
}

// DeleteByID deletes a sweet by its ID.
// Returns ErrSweetNotFound if no sweet exists with the given ID.
func (s *Service) DeleteByID(_ context.Context, id int64) error {
	return s.repository.DeleteByID(id)
}

// Search returns the sweets matching every populated criterion.
func (s *Service) Search(_ context.Context, criteria store.Criteria) ([]SweetDto, error) {
	return toDtos(s.repository.Search(criteria)), nil
}

// SortBy returns the sweets ordered by the given field.
func (s *Service) SortBy(_ context.Context, field store.SortField) ([]SweetDto, error) {
	sorted, err := s.repository.SortBy(field)
	if err != nil {
		return nil, fmt.Errorf("failed to sort sweets by %q: %w", field, err)
	}
	return toDtos(sorted), nil
}

// Purchase decrements stock and reports the transaction details.
func (s *Service) Purchase(_ context.Context, id, qty int64) (*PurchaseDto, error) {
	result, err := s.repository.Purchase(id, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to purchase sweet with ID %d: %w", id, err)
	}
	return &PurchaseDto{
		Sweet:             *toDto(&result.Sweet),
		QuantityPurchased: qty,
		TotalCost:         result.TotalCost,
		RemainingQuantity: result.RemainingQuantity,
	}, nil
}

// Restock increments stock and reports the transaction details.
func (s *Service) Restock(_ context.Context, id, qty int64) (*RestockDto, error) {
	restocked, err := s.repository.Restock(id, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to restock sweet with ID %d: %w", id, err)
	}
	return &RestockDto{
		Sweet:         *toDto(restocked),
		QuantityAdded: qty,
		NewQuantity:   restocked.Quantity,
	}, nil
}

// LowStock returns the sweets at or below the given stock threshold.
func (s *Service) LowStock(_ context.Context, threshold int64) ([]SweetDto, error) {
	return toDtos(s.repository.LowStock(threshold)), nil
}

// ByCategory returns the sweets of one category.
func (s *Service) ByCategory(_ context.Context, category string) ([]SweetDto, error) {
	return toDtos(s.repository.ByCategory(category)), nil
}

// Stats computes the aggregate inventory snapshot.
func (s *Service) Stats(_ context.Context) (*StatsDto, error) {
	stats := s.repository.Stats()
	categories := make([]CategoryStatsDto, len(stats.Categories))
	for i, c := range stats.Categories {
		categories[i] = CategoryStatsDto{
			Category:   c.Category,
			Count:      c.Count,
			TotalValue: c.TotalValue,
		}
	}
	return &StatsDto{
		TotalSweets:         stats.TotalSweets,
		TotalInventoryValue: stats.TotalInventoryValue,
		LowStockCount:       stats.LowStockCount,
		Categories:          categories,
		AveragePrice:        stats.AveragePrice,
	}, nil
}

// toDto converts a sweet.Sweet to a SweetDto, attaching the derived facts.
func toDto(s *sweet.Sweet) *SweetDto {
	return &SweetDto{
		ID:             s.ID,
		Name:           s.Name,
		Category:       s.Category,
		Price:          s.Price,
		Quantity:       s.Quantity,
		Weight:         s.Weight,
		QuantityUnit:   string(s.Unit),
		FormattedPrice: s.FormattedPrice(),
		InStock:        s.InStock(),
		LowStock:       s.LowStock(sweet.DefaultLowStockThreshold),
		TotalValue:     s.TotalValue(),
	}
}

func toDtos(list []sweet.Sweet) []SweetDto {
	dtos := make([]SweetDto, len(list))
	for i := range list {
		dtos[i] = *toDto(&list[i])
	}
	return dtos
}
