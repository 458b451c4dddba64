package repositories

import (
	"context"

	"github.com/ghuser/smartfactory/services/planning/domain/models"
)

// PlanningRepository is the persistence interface for the forecaster and
// scheduler. The domain layer owns this interface; infrastructure implements it.
//
// PromotePending must run its lock-score-promote cycle in one transaction so
// two concurrent promotion runs serialize rather than double-promote.
type PlanningRepository interface {
	// PromotePending locks every pending order, persists the score computed
	// for each, and moves the k numerically smallest (ties broken by
	// created_at) to the processing status. Returns the promoted orders,
	// smallest score first.
	PromotePending(ctx context.Context, k int, score func(order models.PendingOrder) float64) ([]models.PendingOrder, error)

	// ProcessingOrders returns orders in the processing status, smallest
	// priority first.
	ProcessingOrders(ctx context.Context) ([]models.PendingOrder, error)

	// CreateMachine persists a new machine.
	// Returns ErrMachineAlreadyExists if the name is taken.
	CreateMachine(ctx context.Context, machine *models.Machine) error

	// Machines returns machines, optionally filtered by status.
	Machines(ctx context.Context, status *models.MachineStatus) ([]models.Machine, error)

	// UpsertAssignments writes the assignments, overwriting the time window
	// of any existing (order, machine) pair.
	UpsertAssignments(ctx context.Context, assignments []models.ProductionAssignment) error

	// Plan returns every assignment joined with order and machine names,
	// earliest start first.
	Plan(ctx context.Context) ([]models.PlanEntry, error)

	// SalesHistory returns total demand per date across all items, in
	// chronological order.
	SalesHistory(ctx context.Context) ([]models.SalesPoint, error)
}
