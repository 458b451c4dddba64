package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StockRecord tracks current stock and alert thresholds for one item.
// Exactly one record exists per item; the Stock Ledger is its only writer.
type StockRecord struct {
	ID           uuid.UUID
	ItemID       uuid.UUID
	CurrentStock int
	MinStock     int
	MaxStock     int
	LastUpdated  time.Time
}

// NewStockRecord constructs a valid StockRecord with generated ID and current timestamp.
func NewStockRecord(itemID uuid.UUID, currentStock, minStock, maxStock int) (*StockRecord, error) {
	if currentStock < 0 {
		return nil, fmt.Errorf("current stock must be non-negative, got %d", currentStock)
	}
	if err := ValidateLevels(minStock, maxStock); err != nil {
		return nil, err
	}
	return &StockRecord{
		ID:           uuid.New(),
		ItemID:       itemID,
		CurrentStock: currentStock,
		MinStock:     minStock,
		MaxStock:     maxStock,
		LastUpdated:  time.Now().UTC(),
	}, nil
}

// ValidateLevels enforces threshold constraints: both non-negative and min <= max.
func ValidateLevels(minStock, maxStock int) error {
	if minStock < 0 {
		return fmt.Errorf("min stock must be non-negative, got %d", minStock)
	}
	if maxStock < minStock {
		return fmt.Errorf("max stock (%d) must be >= min stock (%d)", maxStock, minStock)
	}
	return nil
}

// IsLow reports whether current stock has fallen below the safety threshold.
func (s *StockRecord) IsLow() bool {
	return s.CurrentStock < s.MinStock
}
