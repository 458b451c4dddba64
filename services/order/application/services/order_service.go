package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	auditmodels "github.com/ghuser/smartfactory/services/audit/domain/models"
	"github.com/ghuser/smartfactory/services/order/domain/models"
	"github.com/ghuser/smartfactory/services/order/domain/repositories"
)

// OrderService is the Order Transaction Manager. Creation is all-or-nothing:
// the order, its lines, and every stock debit commit in one transaction, so a
// failed debit leaves no partial order behind.
type OrderService struct {
	repo  repositories.OrderRepository
	audit auditsvcs.Recorder
}

// NewOrderService returns an OrderService wired with the given repository and audit sink.
func NewOrderService(repo repositories.OrderRepository, audit auditsvcs.Recorder) *OrderService {
	return &OrderService{repo: repo, audit: audit}
}

// CreateInput carries everything needed to create an order. Line unit prices
// are snapshotted from the item catalog inside the transaction, never taken
// from the caller.
type CreateInput struct {
	OrderNo        string
	Customer       string
	OrderDate      time.Time
	DeliveryDate   *time.Time
	DueDate        *time.Time
	ProcessingDays int
	Lines          []models.LineInput
}

// Create builds and persists a pending order. Returns ErrEmptyOrder for a
// lineless request, ErrDuplicateOrderNo for a taken order number,
// ErrLineItemNotFound for an unknown item, and ErrInsufficientStock when any
// line's debit would drive stock negative; in every failure case nothing is
// persisted.
func (s *OrderService) Create(ctx context.Context, in CreateInput, actor string) (*models.Order, error) {
	order, err := models.NewOrder(in.OrderNo, in.Customer, actor, in.OrderDate,
		in.DeliveryDate, in.DueDate, in.ProcessingDays, in.Lines)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, order, in.Lines)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpInsert, "orders", &created.ID,
		fmt.Sprintf("order %s created with %d lines, total %s", created.OrderNo, len(created.Lines), created.Total.StringFixed(2))))
	return created, nil
}

// UpdateStatus moves the order to a new lifecycle status. Any recognized
// status may follow any other; only unknown values are rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus string, actor string) error {
	status, err := models.ParseStatus(newStatus)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpUpdate, "orders", &orderID,
		fmt.Sprintf("status set to %s", status)))
	return nil
}

// GetByID returns the order with its lines.
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

// List returns orders newest first, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status string) ([]models.Order, error) {
	opts := repositories.ListOptions{}
	if status != "" {
		parsed, err := models.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		opts.Status = &parsed
	}

	orders, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Statistics summarizes the order book: counts per status, pending count, and
// total sales over shipped and delivered orders.
func (s *OrderService) Statistics(ctx context.Context) (*repositories.Statistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("order statistics: %w", err)
	}
	return stats, nil
}
