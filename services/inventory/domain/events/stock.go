package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicLowStock is the Watermill topic published when a stock mutation
// leaves an item below its safety threshold.
const TopicLowStock = "inventory.low_stock"

// LowStockEvent is published within the same transaction as the stock
// mutation that triggered it, so consumers never see an alert for a
// rolled-back write. It is observational: no consumer may fail the
// originating operation.
type LowStockEvent struct {
	EventID      uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version      int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID       uuid.UUID `json:"item_id"`
	CurrentStock int       `json:"current_stock"`
	MinStock     int       `json:"min_stock"`
	OccurredAt   time.Time `json:"occurred_at"`
}
