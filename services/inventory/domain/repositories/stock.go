package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/smartfactory/services/inventory/domain/models"
)

// StockRepository is the persistence interface for the Stock Ledger.
// The domain layer owns this interface; infrastructure implements it.
//
// Implementations must serialize concurrent mutations per item (row locks or
// equivalent) so the read-check-write cycle never loses an update, and must
// perform each mutation in a single transaction.
type StockRepository interface {
	// GetByItemID returns the stock record for the item.
	// Returns ErrStockNotFound if no record exists.
	GetByItemID(ctx context.Context, itemID uuid.UUID) (*models.StockRecord, error)

	// SetStock overwrites current stock. Returns the updated record.
	// Returns ErrStockNotFound if no record exists.
	SetStock(ctx context.Context, itemID uuid.UUID, newStock int) (*models.StockRecord, error)

	// AdjustStock applies a delta to current stock. Returns ErrNegativeStock
	// (ledger unchanged) if the result would be negative, ErrStockNotFound if
	// no record exists. Returns the updated record.
	AdjustStock(ctx context.Context, itemID uuid.UUID, delta int) (*models.StockRecord, error)

	// BatchAdjust applies the same delta to every listed item in one
	// transaction. Items whose result would go negative are skipped.
	// Returns the number of records actually adjusted.
	BatchAdjust(ctx context.Context, itemIDs []uuid.UUID, delta int) (int, error)

	// UpdateLevels overwrites the min/max thresholds. Returns the updated record.
	UpdateLevels(ctx context.Context, itemID uuid.UUID, minStock, maxStock int) (*models.StockRecord, error)

	// LowStock returns all records with current stock below min stock.
	// No ordering is guaranteed.
	LowStock(ctx context.Context) ([]models.StockRecord, error)

	// RecordSale appends one demand observation for the item.
	RecordSale(ctx context.Context, itemID uuid.UUID, recordedOn time.Time, quantity int) error

	// History returns the item's demand observations in chronological order.
	History(ctx context.Context, itemID uuid.UUID) ([]models.SalesPoint, error)
}
