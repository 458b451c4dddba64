package domain

import "errors"

// Sentinel errors for the inventory domain. Use errors.Is() to check these.
var (
	// ErrStockNotFound indicates no stock record exists for the item.
	ErrStockNotFound = errors.New("stock record not found")

	// ErrNegativeStock indicates the operation would drive current stock below zero.
	ErrNegativeStock = errors.New("stock cannot go negative")

	// ErrInvalidStockLevels indicates min/max thresholds violate domain constraints.
	ErrInvalidStockLevels = errors.New("invalid stock levels")
)
