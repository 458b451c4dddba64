package domain

import "errors"

// Sentinel errors for the order domain. Use errors.Is() to check these.
var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateOrderNo indicates an order with the same order number already exists.
	ErrDuplicateOrderNo = errors.New("order number already exists")

	// ErrEmptyOrder indicates order creation was attempted with no lines.
	ErrEmptyOrder = errors.New("order has no lines")

	// ErrLineItemNotFound indicates a line references an item that does not exist.
	ErrLineItemNotFound = errors.New("order line item not found")

	// ErrInsufficientStock indicates a line's stock debit would drive stock
	// below zero; the whole order transaction is rolled back.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidStatus indicates an unrecognized order status value.
	ErrInvalidStatus = errors.New("invalid order status")
)
