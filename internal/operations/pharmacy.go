package operations

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

type StockStatus string

const (
	StockOK       StockStatus = "In Stock"
	StockLow      StockStatus = "Low Stock"
	StockCritical StockStatus = "Critical"
)

type InventoryItem struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Stock    int         `json:"stock"`
	Min      int         `json:"min"`
	Status   StockStatus `json:"status"`
}

// InventorySummary is the header row of the pharmacy view.
type InventorySummary struct {
	TotalStock int `json:"totalStock"`
	LowStock   int `json:"lowStock"`
}

func seedInventory() []InventoryItem {
	return []InventoryItem{
		{ID: 101, Name: "Amoxicillin 500mg", Category: "Antibiotic", Stock: 450, Min: 200, Status: StockOK},
		{ID: 102, Name: "Paracetamol 650mg", Category: "Analgesic", Stock: 1200, Min: 500, Status: StockOK},
		{ID: 103, Name: "Atorvastatin 20mg", Category: "Statin", Stock: 45, Min: 100, Status: StockLow},
		{ID: 104, Name: "Insulin Glargine", Category: "Diabetic", Stock: 12, Min: 20, Status: StockCritical},
		{ID: 105, Name: "Ibuprofen 400mg", Category: "NSAID", Stock: 800, Min: 300, Status: StockOK},
	}
}

// Inventory lists items whose name contains search, case-insensitively.
func (s *Service) Inventory(search string) ([]InventoryItem, InventorySummary) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(search))
	items := lo.Filter(s.inventory, func(it InventoryItem, _ int) bool {
		return q == "" || strings.Contains(strings.ToLower(it.Name), q)
	})
	summary := InventorySummary{
		TotalStock: lo.SumBy(s.inventory, func(it InventoryItem) int { return it.Stock }),
		LowStock:   lo.CountBy(s.inventory, func(it InventoryItem) bool { return it.Status != StockOK }),
	}
	return items, summary
}

// Restock reorders an item below its minimum, filling it to twice the
// minimum.
func (s *Service) Restock(id int) (InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(s.inventory, func(it InventoryItem) bool { return it.ID == id })
	if !ok {
		return InventoryItem{}, fmt.Errorf("failed to restock %d: %w", id, ErrItemNotFound)
	}
	item := s.inventory[idx]
	if item.Status == StockOK {
		return InventoryItem{}, ErrAlreadyStocked
	}

	before := item.Stock
	item.Stock = item.Min * 2
	item.Status = StockOK
	s.inventory[idx] = item

	s.log.WithFields(logrus.Fields{"item_id": id, "from": before, "to": item.Stock}).Info("Inventory restocked")
	return item, nil
}
