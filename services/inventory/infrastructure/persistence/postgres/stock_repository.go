package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/smartfactory/pkg/database"
	"github.com/ghuser/smartfactory/pkg/events"
	invdomain "github.com/ghuser/smartfactory/services/inventory/domain"
	domainevents "github.com/ghuser/smartfactory/services/inventory/domain/events"
	"github.com/ghuser/smartfactory/services/inventory/domain/models"
)

// StockRepository implements repositories.StockRepository against PostgreSQL.
//
// Every mutation locks the stock row with SELECT ... FOR UPDATE before the
// read-check-write cycle, so concurrent adjustments on the same item are
// serialized by the database and a stale-read lost update cannot occur.
type StockRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewStockRepository returns a StockRepository backed by the given connection
// pool and event bus. The bus publishes LowStockEvents inside the mutating
// transaction; pass nil to disable event publishing (tests).
func NewStockRepository(db *database.Database, bus *events.EventBus) *StockRepository {
	return &StockRepository{db: db, bus: bus}
}

// GetByItemID returns the stock record for the item.
func (r *StockRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) (*models.StockRecord, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, item_id, current_stock, min_stock, max_stock, last_updated
		FROM stock_records WHERE item_id = $1`, itemID)
	return scanRecord(row)
}

// SetStock overwrites current stock inside one transaction and publishes a
// LowStockEvent when the new level is below the safety threshold.
func (r *StockRepository) SetStock(ctx context.Context, itemID uuid.UUID, newStock int) (*models.StockRecord, error) {
	return r.mutate(ctx, itemID, func(current int) (int, error) {
		return newStock, nil
	})
}

// AdjustStock applies a delta inside one transaction. The row lock taken by
// mutate serializes concurrent deltas on the same item.
func (r *StockRepository) AdjustStock(ctx context.Context, itemID uuid.UUID, delta int) (*models.StockRecord, error) {
	return r.mutate(ctx, itemID, func(current int) (int, error) {
		next := current + delta
		if next < 0 {
			return 0, fmt.Errorf("%w: %d%+d would be %d", invdomain.ErrNegativeStock, current, delta, next)
		}
		return next, nil
	})
}

// mutate runs the lock-read-compute-write cycle for one item. compute receives
// the locked current stock and returns the replacement value; returning an
// error aborts the transaction with the ledger unchanged.
func (r *StockRepository) mutate(ctx context.Context, itemID uuid.UUID, compute func(current int) (int, error)) (*models.StockRecord, error) {
	var rec *models.StockRecord
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		locked, err := lockRecord(ctx, tx, itemID)
		if err != nil {
			return err
		}

		next, err := compute(locked.CurrentStock)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			UPDATE stock_records SET current_stock = $1, last_updated = $2 WHERE item_id = $3`,
			next, now, itemID,
		); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		locked.CurrentStock = next
		locked.LastUpdated = now
		rec = locked

		if locked.IsLow() {
			if err := r.publishLowStock(tx, locked); err != nil {
				return fmt.Errorf("publish low stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// BatchAdjust applies the same delta to every listed item in one transaction.
// Rows whose result would go negative are skipped rather than failing the batch.
func (r *StockRepository) BatchAdjust(ctx context.Context, itemIDs []uuid.UUID, delta int) (int, error) {
	adjusted := 0
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		for _, itemID := range itemIDs {
			locked, err := lockRecord(ctx, tx, itemID)
			if err != nil {
				return err
			}
			next := locked.CurrentStock + delta
			if next < 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE stock_records SET current_stock = $1, last_updated = $2 WHERE item_id = $3`,
				next, now, itemID,
			); err != nil {
				return fmt.Errorf("batch update stock: %w", err)
			}
			adjusted++

			locked.CurrentStock = next
			if locked.IsLow() {
				if err := r.publishLowStock(tx, locked); err != nil {
					return fmt.Errorf("publish low stock: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return adjusted, nil
}

// UpdateLevels overwrites the min/max thresholds for the item.
func (r *StockRepository) UpdateLevels(ctx context.Context, itemID uuid.UUID, minStock, maxStock int) (*models.StockRecord, error) {
	var rec *models.StockRecord
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		locked, err := lockRecord(ctx, tx, itemID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			UPDATE stock_records SET min_stock = $1, max_stock = $2, last_updated = $3 WHERE item_id = $4`,
			minStock, maxStock, now, itemID,
		); err != nil {
			return fmt.Errorf("update stock levels: %w", err)
		}

		locked.MinStock = minStock
		locked.MaxStock = maxStock
		locked.LastUpdated = now
		rec = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// LowStock returns all records with current stock below min stock.
func (r *StockRepository) LowStock(ctx context.Context) ([]models.StockRecord, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, item_id, current_stock, min_stock, max_stock, last_updated
		FROM stock_records WHERE current_stock < min_stock`)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []models.StockRecord
	for rows.Next() {
		var rec models.StockRecord
		if err := rows.Scan(&rec.ID, &rec.ItemID, &rec.CurrentStock, &rec.MinStock, &rec.MaxStock, &rec.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock records: %w", err)
	}
	return records, nil
}

// RecordSale appends one demand observation, snapshotting the item's current
// stock levels alongside the sold quantity.
func (r *StockRepository) RecordSale(ctx context.Context, itemID uuid.UUID, recordedOn time.Time, quantity int) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO sales_history (item_id, recorded_on, quantity, current_stock, min_stock)
		SELECT item_id, $2, $3, current_stock, min_stock
		FROM stock_records WHERE item_id = $1`,
		itemID, recordedOn, quantity,
	)
	if err != nil {
		return fmt.Errorf("insert sales history: %w", err)
	}
	return nil
}

// History returns the item's demand observations in chronological order.
func (r *StockRepository) History(ctx context.Context, itemID uuid.UUID) ([]models.SalesPoint, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT item_id, recorded_on, quantity, current_stock, min_stock
		FROM sales_history WHERE item_id = $1 ORDER BY recorded_on`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query sales history: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var points []models.SalesPoint
	for rows.Next() {
		var p models.SalesPoint
		if err := rows.Scan(&p.ItemID, &p.RecordedOn, &p.Quantity, &p.CurrentStock, &p.MinStock); err != nil {
			return nil, fmt.Errorf("scan sales point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales history: %w", err)
	}
	return points, nil
}

func (r *StockRepository) publishLowStock(tx *sql.Tx, rec *models.StockRecord) error {
	if r.bus == nil {
		return nil
	}
	event := domainevents.LowStockEvent{
		EventID:      uuid.New(),
		Version:      1,
		ItemID:       rec.ItemID,
		CurrentStock: rec.CurrentStock,
		MinStock:     rec.MinStock,
		OccurredAt:   rec.LastUpdated,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.EventID.String())
	msg.Metadata.Set("event_version", "1")
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return p.Publish(domainevents.TopicLowStock, msg)
}

// lockRecord reads the stock row FOR UPDATE, holding the lock until the
// surrounding transaction ends.
func lockRecord(ctx context.Context, tx *sql.Tx, itemID uuid.UUID) (*models.StockRecord, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, item_id, current_stock, min_stock, max_stock, last_updated
		FROM stock_records WHERE item_id = $1 FOR UPDATE`, itemID)
	return scanRecord(row)
}

func scanRecord(row *sql.Row) (*models.StockRecord, error) {
	var rec models.StockRecord
	err := row.Scan(&rec.ID, &rec.ItemID, &rec.CurrentStock, &rec.MinStock, &rec.MaxStock, &rec.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrStockNotFound
		}
		return nil, fmt.Errorf("query stock record: %w", err)
	}
	return &rec, nil
}
