package app

import (
	"errors"
	"fmt"

	shoperrors "github.com/rmehra/sweetshop/internal/errors"
	"github.com/rmehra/sweetshop/internal/sweet"
)

// sampleCatalog is the demo inventory loaded at startup when seeding is
// enabled in the configuration.
var sampleCatalog = []struct {
	id       int64
	name     string
	category string
	price    float64
	quantity int64
}{
	{1001, "Kaju Katli", "Nut-Based", 50, 20},
	{1002, "Gajar Halwa", "Vegetable-Based", 30, 15},
	{1003, "Gulab Jamun", "Milk-Based", 10, 50},
	{1004, "Chocolate Barfi", "Chocolate", 45, 25},
	{1005, "Rasgulla", "Milk-Based", 12, 40},
	{1006, "Jalebi", "Fried", 15, 30},
	{1007, "Soan Papdi", "Nut-Based", 35, 3}, // low stock
	{1008, "Mysore Pak", "Nut-Based", 60, 18},
	{1009, "Laddu", "Milk-Based", 25, 35},
	{1010, "Barfi", "Milk-Based", 40, 2}, // low stock
}

// SeedSampleData loads the sample catalog through the normal insert path.
// Hitting an existing ID means the store was already seeded; that is reported
// as a warning, not a failure.
func SeedSampleData(deps *Dependencies) error {
	for _, item := range sampleCatalog {
		s, err := sweet.New(item.id, item.name, item.category, item.price, item.quantity)
		if err != nil {
			return fmt.Errorf("invalid sample sweet %d: %w", item.id, err)
		}
		if _, err := deps.Store.Insert(*s); err != nil {
			if errors.Is(err, shoperrors.ErrDuplicateID) {
				deps.Logger.Warn("Sample data already present, skipping seed", "ID", item.id)
				return nil
			}
			return fmt.Errorf("failed to seed sweet %d: %w", item.id, err)
		}
	}
	deps.Logger.Info("Sample data initialized", "count", len(sampleCatalog))
	return nil
}
