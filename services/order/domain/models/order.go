package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/ghuser/smartfactory/services/order/domain"
)

// Order is the aggregate root for a customer order. Lines are immutable
// after creation; only Status and Priority change over the lifecycle.
type Order struct {
	ID             uuid.UUID
	OrderNo        string
	Customer       string
	OrderDate      time.Time
	DeliveryDate   *time.Time
	DueDate        *time.Time
	ProcessingDays int
	Status         Status
	Priority       *float64 // nil until the scheduler scores the order
	Total          decimal.Decimal
	Lines          []OrderLine
	CreatedBy      string
	CreatedAt      time.Time
}

// OrderLine is one item position on an order. UnitPrice is snapshotted
// from the item catalog at creation time and never re-read.
type OrderLine struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ItemID    uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewOrderLine constructs a line with subtotal = quantity * unitPrice,
// rounded to 2 decimal places.
func NewOrderLine(orderID, itemID uuid.UUID, quantity int, unitPrice decimal.Decimal) (OrderLine, error) {
	if quantity <= 0 {
		return OrderLine{}, fmt.Errorf("line quantity must be positive, got %d", quantity)
	}
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	return OrderLine{
		ID:        uuid.New(),
		OrderID:   orderID,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  subtotal,
	}, nil
}

// LineInput carries the caller-supplied part of an order line; the unit
// price is resolved from the catalog inside the creation transaction.
type LineInput struct {
	ItemID   uuid.UUID
	Quantity int
}

// NewOrder constructs a pending order shell. Lines and Total are filled in
// by the repository once prices are snapshotted; an order with no lines is
// rejected outright.
func NewOrder(orderNo, customer, createdBy string, orderDate time.Time, deliveryDate, dueDate *time.Time, processingDays int, lines []LineInput) (*Order, error) {
	if orderNo == "" {
		return nil, fmt.Errorf("order number must not be empty")
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if processingDays < 0 {
		return nil, fmt.Errorf("processing days must be non-negative, got %d", processingDays)
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("line quantity must be positive, got %d", l.Quantity)
		}
	}
	return &Order{
		ID:             uuid.New(),
		OrderNo:        orderNo,
		Customer:       customer,
		OrderDate:      orderDate,
		DeliveryDate:   deliveryDate,
		DueDate:        dueDate,
		ProcessingDays: processingDays,
		Status:         StatusPending,
		Total:          decimal.Zero,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// SetLines attaches priced lines and recomputes the order total.
func (o *Order) SetLines(lines []OrderLine) {
	o.Lines = lines
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	o.Total = total.Round(2)
}
