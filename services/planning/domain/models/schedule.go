package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingOrder is the scheduler's read model of an order awaiting promotion
// or assignment. It carries only the fields priority scoring needs.
type PendingOrder struct {
	ID             uuid.UUID
	OrderNo        string
	DueDate        *time.Time
	ProcessingDays int
	Priority       *float64
	CreatedAt      time.Time
}

// ProductionAssignment pairs one order with one machine over a time window.
// The (order, machine) pair is unique; re-planning overwrites the window.
type ProductionAssignment struct {
	OrderID   uuid.UUID
	MachineID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
}

// PlanEntry is one row of the production plan, denormalized for display.
type PlanEntry struct {
	OrderID     uuid.UUID
	OrderNo     string
	MachineID   uuid.UUID
	MachineName string
	StartTime   time.Time
	EndTime     time.Time
}

// SalesPoint is one aggregated demand observation: total quantity sold
// across all items on one date.
type SalesPoint struct {
	RecordedOn time.Time
	Quantity   float64
}

// ForecastPoint is one projected demand value.
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}
