package store

import (
	"sort"
	"strings"
	"sync"

	shoperrors "github.com/rmehra/sweetshop/internal/errors"
	"github.com/rmehra/sweetshop/internal/sweet"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// inMemory implements SweetStore over an insertion-ordered slice guarded by a
// single RWMutex. Mutations run under the write lock, so the purchase
// check-then-decrement is atomic with respect to other mutations; reads take
// the read lock and hand out copies, never aliases into the slice.
type inMemory struct {
	mu     sync.RWMutex
	sweets []sweet.Sweet
}

// NewInMemoryStore creates an empty in-memory SweetStore.
func NewInMemoryStore() SweetStore {
	return &inMemory{
		sweets: make([]sweet.Sweet, 0),
	}
}

// indexOf returns the position of the sweet with the given ID, or -1.
// Callers must hold the lock.
func (m *inMemory) indexOf(id int64) int {
	for i := range m.sweets {
		if m.sweets[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshotWhere copies the sweets matching keep, preserving insertion order.
// Callers must hold at least the read lock.
func (m *inMemory) snapshotWhere(keep func(*sweet.Sweet) bool) []sweet.Sweet {
	list := make([]sweet.Sweet, 0, len(m.sweets))
	for i := range m.sweets {
		if keep(&m.sweets[i]) {
			list = append(list, m.sweets[i])
		}
	}
	return list
}

func (m *inMemory) Insert(s sweet.Sweet) (*sweet.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(s.ID) >= 0 {
		return nil, shoperrors.ErrDuplicateID
	}
	m.sweets = append(m.sweets, s)
	stored := s
	return &stored, nil
}

func (m *inMemory) FindAll() []sweet.Sweet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshotWhere(func(*sweet.Sweet) bool { return true })
}

func (m *inMemory) FindByID(id int64) (*sweet.Sweet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, shoperrors.ErrSweetNotFound
	}
	found := m.sweets[i]
	return &found, nil
}

func (m *inMemory) Update(id int64, upd sweet.Update) (*sweet.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, shoperrors.ErrSweetNotFound
	}
	// Merge onto a copy so a failed re-validation leaves the store untouched.
	merged := m.sweets[i]
	upd.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	m.sweets[i] = merged
	updated := merged
	return &updated, nil
}

func (m *inMemory) DeleteByID(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return shoperrors.ErrSweetNotFound
	}
	m.sweets = append(m.sweets[:i], m.sweets[i+1:]...)
	return nil
}

func (m *inMemory) Search(c Criteria) []sweet.Sweet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshotWhere(func(s *sweet.Sweet) bool {
		if c.Name != nil && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(*c.Name)) {
			return false
		}
		if c.Category != nil && s.Category != *c.Category {
			return false
		}
		if c.MinPrice != nil && s.Price < *c.MinPrice {
			return false
		}
		if c.MaxPrice != nil && s.Price > *c.MaxPrice {
			return false
		}
		return true
	})
}

func (m *inMemory) SortBy(field SortField) ([]sweet.Sweet, error) {
	m.mu.RLock()
	list := m.snapshotWhere(func(*sweet.Sweet) bool { return true })
	m.mu.RUnlock()

	switch field {
	case SortByName:
		coll := collate.New(language.Und)
		sort.SliceStable(list, func(i, j int) bool {
			return coll.CompareString(list[i].Name, list[j].Name) < 0
		})
	case SortByCategory:
		coll := collate.New(language.Und)
		sort.SliceStable(list, func(i, j int) bool {
			return coll.CompareString(list[i].Category, list[j].Category) < 0
		})
	case SortByPrice:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Price < list[j].Price
		})
	case SortByQuantity:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Quantity < list[j].Quantity
		})
	default:
		return nil, shoperrors.ErrInvalidSortField
	}
	return list, nil
}

func (m *inMemory) Purchase(id, qty int64) (*PurchaseResult, error) {
	if qty <= 0 {
		return nil, shoperrors.ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, shoperrors.ErrSweetNotFound
	}
	if m.sweets[i].Quantity < qty {
		return nil, shoperrors.ErrInsufficientStock
	}
	m.sweets[i].Quantity -= qty
	purchased := m.sweets[i]
	return &PurchaseResult{
		Sweet:             purchased,
		RemainingQuantity: purchased.Quantity,
		TotalCost:         purchased.Price * float64(qty),
	}, nil
}

func (m *inMemory) Restock(id, qty int64) (*sweet.Sweet, error) {
	if qty <= 0 {
		return nil, shoperrors.ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, shoperrors.ErrSweetNotFound
	}
	m.sweets[i].Quantity += qty
	restocked := m.sweets[i]
	return &restocked, nil
}

func (m *inMemory) LowStock(threshold int64) []sweet.Sweet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshotWhere(func(s *sweet.Sweet) bool { return s.LowStock(threshold) })
}

func (m *inMemory) ByCategory(category string) []sweet.Sweet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshotWhere(func(s *sweet.Sweet) bool { return s.Category == category })
}

func (m *inMemory) TotalValue() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total float64
	for i := range m.sweets {
		total += m.sweets[i].TotalValue()
	}
	return total
}

func (m *inMemory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{TotalSweets: len(m.sweets)}
	var priceSum float64
	byCategory := make(map[string]int)
	for i := range m.sweets {
		s := &m.sweets[i]
		stats.TotalInventoryValue += s.TotalValue()
		priceSum += s.Price
		if s.LowStock(sweet.DefaultLowStockThreshold) {
			stats.LowStockCount++
		}
		// Categories keep first-appearance order.
		pos, seen := byCategory[s.Category]
		if !seen {
			pos = len(stats.Categories)
			byCategory[s.Category] = pos
			stats.Categories = append(stats.Categories, CategoryStat{Category: s.Category})
		}
		stats.Categories[pos].Count++
		stats.Categories[pos].TotalValue += s.TotalValue()
	}
	// Guard the empty store so the average is 0, not NaN.
	if stats.TotalSweets > 0 {
		stats.AveragePrice = priceSum / float64(stats.TotalSweets)
	}
	return stats
}

func (m *inMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweets = m.sweets[:0]
}
