package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is the core aggregate for this bounded context: one catalog entry
// with its pricing. Stock is held by the inventory context; creating an
// item seeds a zero stock record there.
type Item struct {
	ID          uuid.UUID
	Name        ItemName
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
}

// NewItem constructs a valid Item aggregate with generated ID and current timestamp.
func NewItem(name ItemName, description, unit string, unitPrice decimal.Decimal, createdBy string) (*Item, error) {
	if unit == "" {
		return nil, fmt.Errorf("item unit must not be empty")
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price must be non-negative, got %s", unitPrice)
	}
	return &Item{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Unit:        unit,
		UnitPrice:   unitPrice.Round(2),
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
