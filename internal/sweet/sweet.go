// Package sweet defines the inventory entity and its validation rules.
package sweet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	shoperrors "github.com/rmehra/sweetshop/internal/errors"
)

// DefaultLowStockThreshold is the stock level at or below which a sweet is
// considered low on stock unless the caller supplies its own threshold.
const DefaultLowStockThreshold = 5

// Unit is a measurement unit accepted by the units variant of create.
type Unit string

const (
	UnitKg    Unit = "kg"
	UnitGram  Unit = "gram"
	UnitPiece Unit = "piece"
)

// Valid reports whether u is one of the accepted units.
func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitGram, UnitPiece:
		return true
	}
	return false
}

// Sweet is one inventory record.
type Sweet struct {
	ID       int64
	Name     string
	Category string
	Price    float64
	Quantity int64

	// Weight and Unit are set only by the units variant of create and carry
	// no invariants of their own.
	Weight float64
	Unit   Unit
}

// New constructs a validated sweet. The fields are checked in order (id, name,
// category, price, quantity) and the first violation is reported, wrapped in
// ErrValidation.
func New(id int64, name, category string, price float64, quantity int64) (*Sweet, error) {
	s := &Sweet{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    price,
		Quantity: quantity,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the entity invariants in field order and reports the first
// violated rule. It is also run by the store after merging a partial update.
func (s *Sweet) Validate() error {
	if s.ID == 0 {
		return fmt.Errorf("%w: ID must be a valid number", shoperrors.ErrValidation)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: Name must be a non-empty string", shoperrors.ErrValidation)
	}
	if strings.TrimSpace(s.Category) == "" {
		return fmt.Errorf("%w: Category must be a non-empty string", shoperrors.ErrValidation)
	}
	if s.Price < 0 {
		return fmt.Errorf("%w: Price must be a non-negative number", shoperrors.ErrValidation)
	}
	if s.Quantity < 0 {
		return fmt.Errorf("%w: Quantity must be a non-negative number", shoperrors.ErrValidation)
	}
	return nil
}

// InStock reports whether any stock remains.
func (s *Sweet) InStock() bool {
	return s.Quantity > 0
}

// LowStock reports whether the stock is at or below the given threshold.
func (s *Sweet) LowStock(threshold int64) bool {
	return s.Quantity <= threshold
}

// TotalValue is the inventory value of this sweet, price times quantity.
func (s *Sweet) TotalValue() float64 {
	return s.Price * float64(s.Quantity)
}

// FormattedPrice renders the unit price with the currency glyph and two fixed
// decimals.
func (s *Sweet) FormattedPrice() string {
	return fmt.Sprintf("₹%.2f", s.Price)
}

// Clone returns an independent copy sharing no mutable state with s.
func (s *Sweet) Clone() *Sweet {
	c := *s
	return &c
}

// Update enumerates the fields a caller may change on an existing sweet.
// A nil field is left untouched. The ID is deliberately not updatable.
type Update struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int64
}

// Apply merges the populated fields of u onto s.
func (u Update) Apply(s *Sweet) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Category != nil {
		s.Category = *u.Category
	}
	if u.Price != nil {
		s.Price = *u.Price
	}
	if u.Quantity != nil {
		s.Quantity = *u.Quantity
	}
}

// amountPresets are the named amounts accepted in place of a number by the
// units variant of create.
var amountPresets = map[string]float64{
	"stockLimit":    100,
	"minStock":      10,
	"defaultWeight": 250, // grams
	"maxWeight":     1000,
}

// ParseAmount resolves a JSON-decoded quantity or weight value: a number is
// used as is, a string must name one of the presets or parse as a number.
// Anything else fails with ErrInvalidAmount.
func ParseAmount(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		if preset, ok := amountPresets[t]; ok {
			return preset, nil
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, nil
		}
		return 0, fmt.Errorf("%w: %q", shoperrors.ErrInvalidAmount, t)
	default:
		return 0, fmt.Errorf("%w: must be a number or a named preset", shoperrors.ErrInvalidAmount)
	}
}

// ParseCount resolves an amount that must be a whole, non-negative stock count.
func ParseCount(v any) (int64, error) {
	f, err := ParseAmount(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not a whole number", shoperrors.ErrInvalidAmount, f)
	}
	return int64(f), nil
}
