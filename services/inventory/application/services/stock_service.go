package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	auditmodels "github.com/ghuser/smartfactory/services/audit/domain/models"
	invdomain "github.com/ghuser/smartfactory/services/inventory/domain"
	"github.com/ghuser/smartfactory/services/inventory/domain/models"
	"github.com/ghuser/smartfactory/services/inventory/domain/repositories"
)

// StockService is the Stock Ledger: the only component allowed to mutate
// stock records. Low-stock alerting is transactional (repository layer);
// audit is best-effort after commit.
type StockService struct {
	repo  repositories.StockRepository
	audit auditsvcs.Recorder
}

// NewStockService returns a StockService wired with the given repository and audit sink.
func NewStockService(repo repositories.StockRepository, audit auditsvcs.Recorder) *StockService {
	return &StockService{repo: repo, audit: audit}
}

// SetStock overwrites the item's current stock. A negative target is rejected
// before the store is touched. Returns the updated record; callers can check
// IsLow() for the alert condition.
func (s *StockService) SetStock(ctx context.Context, itemID uuid.UUID, newStock int, actor string) (*models.StockRecord, error) {
	if newStock < 0 {
		return nil, fmt.Errorf("%w: target %d", invdomain.ErrNegativeStock, newStock)
	}

	prev, err := s.repo.GetByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("read stock: %w", err)
	}

	rec, err := s.repo.SetStock(ctx, itemID, newStock)
	if err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpUpdate, "stock_records", &itemID,
		fmt.Sprintf("stock set from %d to %d", prev.CurrentStock, newStock)))
	return rec, nil
}

// AdjustStock applies a delta to the item's current stock. The adjustment is
// atomic per item: a result below zero rejects the whole call with the ledger
// unchanged.
func (s *StockService) AdjustStock(ctx context.Context, itemID uuid.UUID, delta int, reason, actor string) (*models.StockRecord, error) {
	rec, err := s.repo.AdjustStock(ctx, itemID, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpAdjust, "stock_records", &itemID,
		fmt.Sprintf("stock adjusted by %+d to %d, reason: %s", delta, rec.CurrentStock, reason)))
	return rec, nil
}

// BatchAdjust applies the same delta to every listed item in one transaction,
// skipping items whose result would go negative. Returns the adjusted count.
func (s *StockService) BatchAdjust(ctx context.Context, itemIDs []uuid.UUID, delta int, actor string) (int, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	adjusted, err := s.repo.BatchAdjust(ctx, itemIDs, delta)
	if err != nil {
		return 0, fmt.Errorf("batch adjust: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpAdjust, "stock_records", nil,
		fmt.Sprintf("batch adjusted %d of %d records by %+d", adjusted, len(itemIDs), delta)))
	return adjusted, nil
}

// UpdateLevels overwrites the min/max thresholds for the item.
func (s *StockService) UpdateLevels(ctx context.Context, itemID uuid.UUID, minStock, maxStock int, actor string) (*models.StockRecord, error) {
	if err := models.ValidateLevels(minStock, maxStock); err != nil {
		return nil, fmt.Errorf("%w: %w", invdomain.ErrInvalidStockLevels, err)
	}

	rec, err := s.repo.UpdateLevels(ctx, itemID, minStock, maxStock)
	if err != nil {
		return nil, fmt.Errorf("update levels: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpUpdate, "stock_records", &itemID,
		fmt.Sprintf("levels set to min %d, max %d", minStock, maxStock)))
	return rec, nil
}

// LowStockItems returns every record below its safety threshold.
// No ordering is guaranteed.
func (s *StockService) LowStockItems(ctx context.Context) ([]models.StockRecord, error) {
	records, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return records, nil
}

// History returns the item's demand observations in chronological order.
func (s *StockService) History(ctx context.Context, itemID uuid.UUID) ([]models.SalesPoint, error) {
	points, err := s.repo.History(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return points, nil
}

// RecordSale appends one demand observation for the item. Called by the
// worker when order-created events arrive; observational, so failures do not
// affect the order itself.
func (s *StockService) RecordSale(ctx context.Context, itemID uuid.UUID, recordedOn time.Time, quantity int) error {
	if err := s.repo.RecordSale(ctx, itemID, recordedOn, quantity); err != nil {
		return fmt.Errorf("record sale: %w", err)
	}
	return nil
}
