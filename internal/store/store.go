// Package store provides an interface for sweet storage operations.
package store

import (
	"github.com/rmehra/sweetshop/internal/sweet"
)

// SortField selects the field a sorted listing is ordered by.
type SortField string

const (
	SortByName     SortField = "name"
	SortByCategory SortField = "category"
	SortByPrice    SortField = "price"
	SortByQuantity SortField = "quantity"
)

// Criteria is a set of optional search filters. A nil field is ignored;
// present fields are ANDed together.
type Criteria struct {
	// Name matches as a case-insensitive substring.
	Name *string
	// Category matches exactly.
	Category *string
	// MinPrice and MaxPrice are inclusive bounds.
	MinPrice *float64
	MaxPrice *float64
}

// PurchaseResult reports the outcome of a completed purchase.
type PurchaseResult struct {
	Sweet             sweet.Sweet
	RemainingQuantity int64
	TotalCost         float64
}

// CategoryStat aggregates the sweets of one category.
type CategoryStat struct {
	Category   string
	Count      int
	TotalValue float64
}

// Stats is an aggregate snapshot of the whole inventory.
type Stats struct {
	TotalSweets         int
	TotalInventoryValue float64
	LowStockCount       int
	Categories          []CategoryStat
	AveragePrice        float64
}

// SweetStore is an interface for sweet storage operations. It owns every
// collection-level invariant: ID uniqueness, insertion order, and the
// atomicity of stock-adjusting transactions. A failed mutation leaves the
// collection unchanged.
type SweetStore interface {
	// Insert appends a new sweet.
	// Returns ErrDuplicateID if a sweet with the same ID already exists.
	Insert(s sweet.Sweet) (*sweet.Sweet, error)

	// FindAll returns every sweet in insertion order.
	FindAll() []sweet.Sweet

	// FindByID retrieves a single sweet by its ID.
	// Returns ErrSweetNotFound if no sweet exists with the given ID.
	FindByID(id int64) (*sweet.Sweet, error)

	// Update merges the populated fields of upd onto the stored sweet,
	// re-validates the result, and rejects the whole merge on failure.
	// Returns ErrSweetNotFound if no sweet exists with the given ID.
	Update(id int64, upd sweet.Update) (*sweet.Sweet, error)

	// DeleteByID removes a sweet, preserving the order of the rest.
	// Returns ErrSweetNotFound if no sweet exists with the given ID.
	DeleteByID(id int64) error

	// Search returns the sweets matching every populated criterion,
	// preserving insertion order.
	Search(c Criteria) []sweet.Sweet

	// SortBy returns a new sequence ordered by the given field; the stored
	// order is untouched. Strings compare under locale collation, numbers
	// ascending. Returns ErrInvalidSortField for an unknown field.
	SortBy(field SortField) ([]sweet.Sweet, error)

	// Purchase decrements stock by qty and reports the remaining quantity
	// and total cost. Returns ErrInvalidQuantity if qty <= 0,
	// ErrSweetNotFound if the ID is unknown, and ErrInsufficientStock if
	// the available quantity is less than qty.
	Purchase(id, qty int64) (*PurchaseResult, error)

	// Restock increments stock by qty. Returns ErrInvalidQuantity if
	// qty <= 0 and ErrSweetNotFound if the ID is unknown.
	Restock(id, qty int64) (*sweet.Sweet, error)

	// LowStock returns the sweets with quantity at or below threshold,
	// preserving insertion order.
	LowStock(threshold int64) []sweet.Sweet

	// ByCategory returns the sweets whose category matches exactly,
	// preserving insertion order.
	ByCategory(category string) []sweet.Sweet

	// TotalValue sums price times quantity over the whole inventory.
	TotalValue() float64

	// Stats computes an aggregate snapshot of the inventory.
	Stats() Stats

	// Reset empties the store. Test and administrative use only.
	Reset()
}
