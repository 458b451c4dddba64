package models

import (
	"fmt"

	domain "github.com/ghuser/smartfactory/services/order/domain"
)

// Status is the canonical order lifecycle vocabulary. Any recognized value
// may follow any other; the terminal states simply stop priority scoring.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every recognized value, in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus validates s against the recognized vocabulary.
func ParseStatus(s string) (Status, error) {
	for _, known := range Statuses {
		if Status(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidStatus, s)
}

// IsTerminal reports whether no further scheduling applies to the order.
func (s Status) IsTerminal() bool {
	return s == StatusShipped || s == StatusDelivered || s == StatusCancelled
}

// String returns the underlying string value.
func (s Status) String() string {
	return string(s)
}
