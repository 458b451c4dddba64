package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopicOrderCreated is the Watermill topic published when an order is
// successfully created and its stock debits committed.
const TopicOrderCreated = "order.created"

// OrderCreatedLine carries one line of the created order.
type OrderCreatedLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// OrderCreatedEvent is published within the same transaction as the order
// insert and its stock debits, so consumers never see an order whose
// write was rolled back.
type OrderCreatedEvent struct {
	EventID    uuid.UUID          `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int                `json:"version"`  // Schema version; increment on breaking changes
	OrderID    uuid.UUID          `json:"order_id"`
	OrderNo    string             `json:"order_no"`
	Customer   string             `json:"customer"`
	Total      decimal.Decimal    `json:"total"`
	Lines      []OrderCreatedLine `json:"lines"`
	OccurredAt time.Time          `json:"occurred_at"`
}
