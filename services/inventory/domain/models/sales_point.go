package models

import (
	"time"

	"github.com/google/uuid"
)

// SalesPoint is one dated demand observation for an item, captured when
// orders are fulfilled. The planning service consumes the chronological
// sequence of these as forecaster input.
type SalesPoint struct {
	ItemID       uuid.UUID
	RecordedOn   time.Time
	Quantity     int
	CurrentStock int
	MinStock     int
}
