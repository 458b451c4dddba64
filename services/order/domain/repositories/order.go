package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/smartfactory/services/order/domain/models"
)

// ListOptions narrows List results. Zero value means no filter.
type ListOptions struct {
	Status *models.Status
}

// Statistics summarizes the order book for dashboards.
type Statistics struct {
	TotalOrders    int
	CountsByStatus map[models.Status]int
	PendingCount   int
	// TotalSales sums total_amount over shipped and delivered orders.
	TotalSales decimal.Decimal
}

// OrderRepository is the persistence interface for the Order Transaction Manager.
// The domain layer owns this interface; infrastructure implements it.
//
// Create must be atomic: the order row, its lines, and every stock debit
// commit together or not at all.
type OrderRepository interface {
	// Create persists the order, snapshots each line's unit price from the
	// item catalog, and debits stock for every line in one transaction.
	// Returns ErrDuplicateOrderNo if the order number is taken,
	// ErrLineItemNotFound if a line references an unknown item, and
	// ErrInsufficientStock (wrapping the item name) if any debit would drive
	// stock negative. On any error nothing is persisted.
	Create(ctx context.Context, order *models.Order, lines []models.LineInput) (*models.Order, error)

	// GetByID returns the order with its lines.
	// Returns ErrOrderNotFound if absent.
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)

	// List returns orders without lines, newest first.
	List(ctx context.Context, opts ListOptions) ([]models.Order, error)

	// UpdateStatus overwrites the order's status.
	// Returns ErrOrderNotFound if absent.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.Status) error

	// Statistics aggregates counts per status and total sales.
	Statistics(ctx context.Context) (*Statistics, error)
}
