package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewStockRecord(t *testing.T) {
	itemID := uuid.New()

	t.Run("valid record", func(t *testing.T) {
		rec, err := NewStockRecord(itemID, 10, 5, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.ID == (uuid.UUID{}) {
			t.Fatal("expected non-zero UUID for ID")
		}
		if rec.ItemID != itemID {
			t.Fatalf("expected ItemID %v, got %v", itemID, rec.ItemID)
		}
		if rec.LastUpdated.IsZero() {
			t.Fatal("expected non-zero LastUpdated")
		}
	})

	t.Run("rejects negative current stock", func(t *testing.T) {
		if _, err := NewStockRecord(itemID, -1, 0, 100); err == nil {
			t.Fatal("expected error for negative current stock")
		}
	})

	t.Run("rejects min above max", func(t *testing.T) {
		if _, err := NewStockRecord(itemID, 0, 10, 5); err == nil {
			t.Fatal("expected error for min > max")
		}
	})

	t.Run("min equal to max is valid", func(t *testing.T) {
		if _, err := NewStockRecord(itemID, 0, 10, 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestStockRecord_IsLow(t *testing.T) {
	cases := []struct {
		name    string
		current int
		min     int
		want    bool
	}{
		{"below min", 4, 5, true},
		{"equal to min", 5, 5, false},
		{"above min", 6, 5, false},
		{"zero min never low", 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := StockRecord{CurrentStock: tc.current, MinStock: tc.min}
			if got := rec.IsLow(); got != tc.want {
				t.Fatalf("IsLow() = %v, want %v", got, tc.want)
			}
		})
	}
}
