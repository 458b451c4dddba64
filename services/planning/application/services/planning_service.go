package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	auditsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	auditmodels "github.com/ghuser/smartfactory/services/audit/domain/models"
	plandomain "github.com/ghuser/smartfactory/services/planning/domain"
	"github.com/ghuser/smartfactory/services/planning/domain/models"
	"github.com/ghuser/smartfactory/services/planning/domain/repositories"
	domainsvcs "github.com/ghuser/smartfactory/services/planning/domain/services"
)

// PlanningService runs demand forecasting and production scheduling over the
// order book. It reads sales history and orders but never mutates stock.
type PlanningService struct {
	repo  repositories.PlanningRepository
	audit auditsvcs.Recorder

	defaultAlpha   float64
	defaultHorizon int
	defaultBatch   int

	// now is swapped in tests for deterministic scoring windows.
	now func() time.Time
}

// NewPlanningService returns a PlanningService wired with the given
// repository, audit sink, and defaults for the smoothing factor, forecast
// horizon, and promotion batch size.
func NewPlanningService(repo repositories.PlanningRepository, audit auditsvcs.Recorder, alpha float64, horizon, batch int) *PlanningService {
	return &PlanningService{
		repo:           repo,
		audit:          audit,
		defaultAlpha:   alpha,
		defaultHorizon: horizon,
		defaultBatch:   batch,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ForecastResult carries the projected demand. InsufficientHistory is set
// when fewer than two observations exist; that is not an error.
type ForecastResult struct {
	Points              []models.ForecastPoint
	InsufficientHistory bool
}

// ForecastDemand projects total demand per day. Zero-valued alpha and
// horizon fall back to the configured defaults.
func (s *PlanningService) ForecastDemand(ctx context.Context, alpha float64, horizon int) (*ForecastResult, error) {
	if alpha == 0 {
		alpha = s.defaultAlpha
	}
	if horizon == 0 {
		horizon = s.defaultHorizon
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: %v", plandomain.ErrInvalidAlpha, alpha)
	}
	if horizon < 1 {
		return nil, fmt.Errorf("%w: %d", plandomain.ErrInvalidHorizon, horizon)
	}

	history, err := s.repo.SalesHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales history: %w", err)
	}

	quantities := make([]float64, len(history))
	for i, p := range history {
		quantities[i] = p.Quantity
	}

	projected := domainsvcs.Forecast(quantities, alpha, horizon)
	if projected == nil {
		return &ForecastResult{InsufficientHistory: true}, nil
	}

	// Dated points continue day by day from the last observation.
	last := history[len(history)-1].RecordedOn
	points := make([]models.ForecastPoint, len(projected))
	for i, q := range projected {
		points[i] = models.ForecastPoint{
			Date:     last.AddDate(0, 0, i+1),
			Quantity: q,
		}
	}
	return &ForecastResult{Points: points}, nil
}

// PromoteTopOrders scores every pending order and promotes the k smallest
// scores to processing in one transaction. Zero-valued k falls back to the
// configured batch size. Returns the promoted count.
func (s *PlanningService) PromoteTopOrders(ctx context.Context, k int, actor string) (int, error) {
	if k <= 0 {
		k = s.defaultBatch
	}

	now := s.now()
	promoted, err := s.repo.PromotePending(ctx, k, func(order models.PendingOrder) float64 {
		due := now
		if order.DueDate != nil {
			due = *order.DueDate
		}
		return domainsvcs.ScorePriority(due, order.ProcessingDays, now)
	})
	if err != nil {
		return 0, fmt.Errorf("promote pending orders: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpUpdate, "orders", nil,
		fmt.Sprintf("promoted %d of up to %d orders to processing", len(promoted), k)))
	return len(promoted), nil
}

// AssignPromoted pairs every processing order with an available machine,
// round-robin, each over a window starting now and spanning the order's
// processing days. Overlapping windows on one machine are accepted; capacity
// balancing is left to the operator.
func (s *PlanningService) AssignPromoted(ctx context.Context, actor string) (int, error) {
	available := models.MachineAvailable
	machines, err := s.repo.Machines(ctx, &available)
	if err != nil {
		return 0, fmt.Errorf("list machines: %w", err)
	}
	if len(machines) == 0 {
		return 0, plandomain.ErrNoAvailableMachines
	}

	orders, err := s.repo.ProcessingOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list processing orders: %w", err)
	}
	if len(orders) == 0 {
		return 0, nil
	}

	now := s.now()
	assignments := make([]models.ProductionAssignment, len(orders))
	for i, order := range orders {
		assignments[i] = models.ProductionAssignment{
			OrderID:   order.ID,
			MachineID: machines[i%len(machines)].ID,
			StartTime: now,
			EndTime:   now.AddDate(0, 0, order.ProcessingDays),
		}
	}

	if err := s.repo.UpsertAssignments(ctx, assignments); err != nil {
		return 0, fmt.Errorf("write assignments: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpUpdate, "production_assignments", nil,
		fmt.Sprintf("assigned %d orders across %d machines", len(orders), len(machines))))
	return len(assignments), nil
}

// RegisterMachine adds a new machine in the available state.
func (s *PlanningService) RegisterMachine(ctx context.Context, name string, capacity decimal.Decimal, actor string) (*models.Machine, error) {
	machine, err := models.NewMachine(name, capacity)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateMachine(ctx, machine); err != nil {
		return nil, fmt.Errorf("create machine: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpInsert, "machines", &machine.ID,
		fmt.Sprintf("machine %s registered", machine.Name)))
	return machine, nil
}

// ListMachines returns machines, optionally filtered by a status value.
func (s *PlanningService) ListMachines(ctx context.Context, status string) ([]models.Machine, error) {
	var filter *models.MachineStatus
	if status != "" {
		parsed, err := models.ParseMachineStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}

	machines, err := s.repo.Machines(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return machines, nil
}

// ProductionPlan returns every assignment for display, earliest start first.
func (s *PlanningService) ProductionPlan(ctx context.Context) ([]models.PlanEntry, error) {
	entries, err := s.repo.Plan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load production plan: %w", err)
	}
	return entries, nil
}
