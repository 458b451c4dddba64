package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested catalog item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyExists indicates another catalog item already uses the
	// name (items.name is unique).
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrInvalidItemName indicates the name violates catalog naming rules.
	ErrInvalidItemName = errors.New("invalid item name")
)
