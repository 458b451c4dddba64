package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	auditmodels "github.com/ghuser/smartfactory/services/audit/domain/models"
	invdomain "github.com/ghuser/smartfactory/services/inventory/domain"
	"github.com/ghuser/smartfactory/services/inventory/domain/models"
)

// fakeStockRepo is an in-memory StockRepository. A per-item mutex mirrors the
// SELECT ... FOR UPDATE row lock the postgres implementation takes, so the
// concurrency tests exercise the same serialization contract.
type fakeStockRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.StockRecord
	sales   map[uuid.UUID][]models.SalesPoint
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{
		records: make(map[uuid.UUID]*models.StockRecord),
		sales:   make(map[uuid.UUID][]models.SalesPoint),
	}
}

func (f *fakeStockRepo) put(itemID uuid.UUID, current, minStock, maxStock int) {
	f.records[itemID] = &models.StockRecord{
		ID: uuid.New(), ItemID: itemID,
		CurrentStock: current, MinStock: minStock, MaxStock: maxStock,
		LastUpdated: time.Now().UTC(),
	}
}

func (f *fakeStockRepo) GetByItemID(_ context.Context, itemID uuid.UUID) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[itemID]
	if !ok {
		return nil, invdomain.ErrStockNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeStockRepo) SetStock(_ context.Context, itemID uuid.UUID, newStock int) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[itemID]
	if !ok {
		return nil, invdomain.ErrStockNotFound
	}
	rec.CurrentStock = newStock
	rec.LastUpdated = time.Now().UTC()
	cp := *rec
	return &cp, nil
}

func (f *fakeStockRepo) AdjustStock(_ context.Context, itemID uuid.UUID, delta int) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[itemID]
	if !ok {
		return nil, invdomain.ErrStockNotFound
	}
	next := rec.CurrentStock + delta
	if next < 0 {
		return nil, invdomain.ErrNegativeStock
	}
	rec.CurrentStock = next
	rec.LastUpdated = time.Now().UTC()
	cp := *rec
	return &cp, nil
}

func (f *fakeStockRepo) BatchAdjust(_ context.Context, itemIDs []uuid.UUID, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	adjusted := 0
	for _, id := range itemIDs {
		rec, ok := f.records[id]
		if !ok {
			return 0, invdomain.ErrStockNotFound
		}
		if rec.CurrentStock+delta < 0 {
			continue
		}
		rec.CurrentStock += delta
		adjusted++
	}
	return adjusted, nil
}

func (f *fakeStockRepo) UpdateLevels(_ context.Context, itemID uuid.UUID, minStock, maxStock int) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[itemID]
	if !ok {
		return nil, invdomain.ErrStockNotFound
	}
	rec.MinStock = minStock
	rec.MaxStock = maxStock
	cp := *rec
	return &cp, nil
}

func (f *fakeStockRepo) LowStock(_ context.Context) ([]models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StockRecord
	for _, rec := range f.records {
		if rec.IsLow() {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeStockRepo) RecordSale(_ context.Context, itemID uuid.UUID, recordedOn time.Time, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales[itemID] = append(f.sales[itemID], models.SalesPoint{
		ItemID: itemID, RecordedOn: recordedOn, Quantity: quantity,
	})
	return nil
}

func (f *fakeStockRepo) History(_ context.Context, itemID uuid.UUID) ([]models.SalesPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SalesPoint(nil), f.sales[itemID]...), nil
}

// nopRecorder satisfies the audit Recorder without persistence.
type nopRecorder struct {
	mu      sync.Mutex
	entries []auditmodels.Entry
}

func (n *nopRecorder) Record(_ context.Context, entry auditmodels.Entry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, entry)
}

func TestSetStock(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()

	t.Run("overwrites current stock and audits", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 10, 5, 100)
		audit := &nopRecorder{}
		svc := NewStockService(repo, audit)

		rec, err := svc.SetStock(ctx, itemID, 42, "li.na")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.CurrentStock != 42 {
			t.Fatalf("expected 42, got %d", rec.CurrentStock)
		}
		if len(audit.entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
		}
	})

	t.Run("rejects negative target", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 10, 5, 100)
		svc := NewStockService(repo, &nopRecorder{})

		_, err := svc.SetStock(ctx, itemID, -1, "li.na")
		if !errors.Is(err, invdomain.ErrNegativeStock) {
			t.Fatalf("expected ErrNegativeStock, got %v", err)
		}
		rec, _ := repo.GetByItemID(ctx, itemID)
		if rec.CurrentStock != 10 {
			t.Fatalf("ledger mutated on rejected set: %d", rec.CurrentStock)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		svc := NewStockService(newFakeStockRepo(), &nopRecorder{})
		_, err := svc.SetStock(ctx, uuid.New(), 5, "li.na")
		if !errors.Is(err, invdomain.ErrStockNotFound) {
			t.Fatalf("expected ErrStockNotFound, got %v", err)
		}
	})

	t.Run("reports low stock condition", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 10, 5, 100)
		svc := NewStockService(repo, &nopRecorder{})

		rec, err := svc.SetStock(ctx, itemID, 2, "li.na")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rec.IsLow() {
			t.Fatal("expected low stock condition")
		}
	})
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()

	t.Run("applies positive and negative deltas", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 10, 0, 100)
		svc := NewStockService(repo, &nopRecorder{})

		if rec, err := svc.AdjustStock(ctx, itemID, 5, "restock", "li.na"); err != nil || rec.CurrentStock != 15 {
			t.Fatalf("expected 15, got %v / %v", rec, err)
		}
		if rec, err := svc.AdjustStock(ctx, itemID, -15, "order", "li.na"); err != nil || rec.CurrentStock != 0 {
			t.Fatalf("expected 0, got %v / %v", rec, err)
		}
	})

	t.Run("rejects adjustment below zero with no ledger mutation", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 3, 0, 100)
		svc := NewStockService(repo, &nopRecorder{})

		_, err := svc.AdjustStock(ctx, itemID, -4, "order", "li.na")
		if !errors.Is(err, invdomain.ErrNegativeStock) {
			t.Fatalf("expected ErrNegativeStock, got %v", err)
		}
		rec, _ := repo.GetByItemID(ctx, itemID)
		if rec.CurrentStock != 3 {
			t.Fatalf("ledger mutated on rejected adjust: %d", rec.CurrentStock)
		}
	})

	t.Run("stock never observably negative under any adjustment sequence", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 5, 0, 100)
		svc := NewStockService(repo, &nopRecorder{})

		deltas := []int{-3, -3, 4, -4, -1, -10, 2}
		for _, d := range deltas {
			_, _ = svc.AdjustStock(ctx, itemID, d, "seq", "li.na")
			rec, _ := repo.GetByItemID(ctx, itemID)
			if rec.CurrentStock < 0 {
				t.Fatalf("stock went negative after delta %d: %d", d, rec.CurrentStock)
			}
		}
	})

	t.Run("concurrent safe deltas do not lose updates", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 100, 0, 1000)
		svc := NewStockService(repo, &nopRecorder{})

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.AdjustStock(ctx, itemID, -2, "concurrent", "li.na")
			}()
		}
		wg.Wait()

		rec, _ := repo.GetByItemID(ctx, itemID)
		if rec.CurrentStock != 0 {
			t.Fatalf("expected exactly 0 after 50 serialized -2 deltas, got %d", rec.CurrentStock)
		}
	})

	t.Run("concurrent unsafe sum rejects the overflow, no lost update", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 10, 0, 100)
		svc := NewStockService(repo, &nopRecorder{})

		// Each delta alone is safe; together they would go negative.
		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = svc.AdjustStock(ctx, itemID, -7, "race", "li.na")
			}(i)
		}
		wg.Wait()

		rec, _ := repo.GetByItemID(ctx, itemID)
		okCount := 0
		for _, err := range results {
			if err == nil {
				okCount++
			} else if !errors.Is(err, invdomain.ErrNegativeStock) {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if okCount != 1 || rec.CurrentStock != 3 {
			t.Fatalf("expected exactly one success leaving 3, got %d successes and stock %d", okCount, rec.CurrentStock)
		}
	})
}

func TestBatchAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("skips records that would go negative", func(t *testing.T) {
		repo := newFakeStockRepo()
		a, b := uuid.New(), uuid.New()
		repo.put(a, 10, 0, 100)
		repo.put(b, 2, 0, 100)
		svc := NewStockService(repo, &nopRecorder{})

		adjusted, err := svc.BatchAdjust(ctx, []uuid.UUID{a, b}, -5, "li.na")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if adjusted != 1 {
			t.Fatalf("expected 1 adjusted, got %d", adjusted)
		}
		recB, _ := repo.GetByItemID(ctx, b)
		if recB.CurrentStock != 2 {
			t.Fatalf("skipped record mutated: %d", recB.CurrentStock)
		}
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		svc := NewStockService(newFakeStockRepo(), &nopRecorder{})
		adjusted, err := svc.BatchAdjust(ctx, nil, -5, "li.na")
		if err != nil || adjusted != 0 {
			t.Fatalf("expected 0/nil, got %d/%v", adjusted, err)
		}
	})
}

func TestUpdateLevels(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()

	t.Run("rejects min above max", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 10, 0, 100)
		svc := NewStockService(repo, &nopRecorder{})

		_, err := svc.UpdateLevels(ctx, itemID, 50, 10, "li.na")
		if !errors.Is(err, invdomain.ErrInvalidStockLevels) {
			t.Fatalf("expected ErrInvalidStockLevels, got %v", err)
		}
	})

	t.Run("persists valid levels", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.put(itemID, 10, 0, 100)
		svc := NewStockService(repo, &nopRecorder{})

		rec, err := svc.UpdateLevels(ctx, itemID, 20, 200, "li.na")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.MinStock != 20 || rec.MaxStock != 200 {
			t.Fatalf("unexpected levels %d/%d", rec.MinStock, rec.MaxStock)
		}
	})
}

func TestLowStockItems(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStockRepo()
	low, ok1, ok2 := uuid.New(), uuid.New(), uuid.New()
	repo.put(low, 1, 5, 100)
	repo.put(ok1, 5, 5, 100) // equal to min is not low
	repo.put(ok2, 50, 5, 100)
	svc := NewStockService(repo, &nopRecorder{})

	records, err := svc.LowStockItems(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ItemID != low {
		t.Fatalf("expected only the low item, got %v", records)
	}
}
