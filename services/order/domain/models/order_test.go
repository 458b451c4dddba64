package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/ghuser/smartfactory/services/order/domain"
)

func TestNewOrderLine(t *testing.T) {
	orderID, itemID := uuid.New(), uuid.New()

	t.Run("rounds subtotal to two decimal places", func(t *testing.T) {
		line, err := NewOrderLine(orderID, itemID, 3, decimal.RequireFromString("3.333"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 3 * 3.333 = 9.999 -> 10.00
		if want := decimal.RequireFromString("10.00"); !line.Subtotal.Equal(want) {
			t.Fatalf("expected %s, got %s", want, line.Subtotal)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		for _, qty := range []int{0, -1} {
			if _, err := NewOrderLine(orderID, itemID, qty, decimal.NewFromInt(1)); err == nil {
				t.Fatalf("expected error for quantity %d", qty)
			}
		}
	})
}

func TestNewOrder(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	lines := []LineInput{{ItemID: uuid.New(), Quantity: 1}}

	t.Run("starts pending with zero total", func(t *testing.T) {
		order, err := NewOrder("SO-1", "Acme", "li.na", date, nil, nil, 5, lines)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != StatusPending || !order.Total.IsZero() || order.Priority != nil {
			t.Fatalf("unexpected initial state: %+v", order)
		}
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		_, err := NewOrder("SO-1", "Acme", "li.na", date, nil, nil, 5, nil)
		if !errors.Is(err, domain.ErrEmptyOrder) {
			t.Fatalf("expected ErrEmptyOrder, got %v", err)
		}
	})

	t.Run("rejects empty order number", func(t *testing.T) {
		if _, err := NewOrder("", "Acme", "li.na", date, nil, nil, 5, lines); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSetLines(t *testing.T) {
	order, err := NewOrder("SO-1", "Acme", "li.na", time.Now().UTC(), nil, nil, 0,
		[]LineInput{{ItemID: uuid.New(), Quantity: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := NewOrderLine(order.ID, uuid.New(), 2, decimal.RequireFromString("19.99"))
	b, _ := NewOrderLine(order.ID, uuid.New(), 1, decimal.RequireFromString("0.01"))
	order.SetLines([]OrderLine{a, b})

	if want := decimal.RequireFromString("39.99"); !order.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total)
	}
}

func TestParseStatus(t *testing.T) {
	t.Run("accepts the recognized vocabulary", func(t *testing.T) {
		for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
			if _, err := ParseStatus(s); err != nil {
				t.Fatalf("unexpected error for %q: %v", s, err)
			}
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		for _, s := range []string{"", "PENDING", "archived"} {
			if _, err := ParseStatus(s); !errors.Is(err, domain.ErrInvalidStatus) {
				t.Fatalf("expected ErrInvalidStatus for %q, got %v", s, err)
			}
		}
	})
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending: false, StatusProcessing: false,
		StatusShipped: true, StatusDelivered: true, StatusCancelled: true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Fatalf("%s: expected terminal=%v, got %v", status, want, got)
		}
	}
}
