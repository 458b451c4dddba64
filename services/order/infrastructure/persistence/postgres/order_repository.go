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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ghuser/smartfactory/pkg/database"
	"github.com/ghuser/smartfactory/pkg/events"
	orderdomain "github.com/ghuser/smartfactory/services/order/domain"
	domainevents "github.com/ghuser/smartfactory/services/order/domain/events"
	"github.com/ghuser/smartfactory/services/order/domain/models"
	"github.com/ghuser/smartfactory/services/order/domain/repositories"
)

const pgUniqueViolation = "23505"

// OrderRepository implements repositories.OrderRepository against PostgreSQL.
//
// Create holds a FOR UPDATE lock on every stock row it debits, so two orders
// competing for the same item serialize at the database and the last-unit
// race resolves to exactly one winner.
type OrderRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewOrderRepository returns an OrderRepository backed by the given connection
// pool and event bus. The bus publishes OrderCreatedEvents inside the creating
// transaction; pass nil to disable event publishing (tests).
func NewOrderRepository(db *database.Database, bus *events.EventBus) *OrderRepository {
	return &OrderRepository{db: db, bus: bus}
}

// Create persists the order, its lines, and the matching stock debits in one
// transaction. Any failure rolls back everything.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, lines []models.LineInput) (*models.Order, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, order_no, customer_name, order_date, delivery_date, due_date,
				processing_time, status, total_amount, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			order.ID, order.OrderNo, order.Customer, order.OrderDate, order.DeliveryDate,
			order.DueDate, order.ProcessingDays, order.Status, decimal.Zero, order.CreatedBy, order.CreatedAt,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("%w: %s", orderdomain.ErrDuplicateOrderNo, order.OrderNo)
			}
			return fmt.Errorf("insert order: %w", err)
		}

		priced := make([]models.OrderLine, 0, len(lines))
		for _, in := range lines {
			name, unitPrice, err := snapshotItem(ctx, tx, in.ItemID)
			if err != nil {
				return err
			}
			line, err := models.NewOrderLine(order.ID, in.ItemID, in.Quantity, unitPrice)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_lines (id, order_id, item_id, quantity, unit_price, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				line.ID, line.OrderID, line.ItemID, line.Quantity, line.UnitPrice, line.Subtotal,
			); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
			if err := debitStock(ctx, tx, in.ItemID, name, in.Quantity); err != nil {
				return err
			}
			priced = append(priced, line)
		}

		order.SetLines(priced)
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET total_amount = $1 WHERE id = $2`,
			order.Total, order.ID,
		); err != nil {
			return fmt.Errorf("update order total: %w", err)
		}

		if err := r.publishCreated(tx, order); err != nil {
			return fmt.Errorf("publish order created: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID returns the order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, order_no, customer_name, order_date, delivery_date, due_date,
			processing_time, status, total_amount, priority, created_by, created_at
		FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, order_id, item_id, quantity, unit_price, subtotal
		FROM order_lines WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return order, nil
}

// List returns orders without lines, newest first.
func (r *OrderRepository) List(ctx context.Context, opts repositories.ListOptions) ([]models.Order, error) {
	query := `
		SELECT id, order_no, customer_name, order_date, delivery_date, due_date,
			processing_time, status, total_amount, priority, created_by, created_at
		FROM orders`
	args := []any{}
	if opts.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *opts.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus overwrites the order's status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.Status) error {
	res, err := r.db.DB().ExecContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return orderdomain.ErrOrderNotFound
	}
	return nil
}

// Statistics aggregates counts per status and total sales over shipped and
// delivered orders.
func (r *OrderRepository) Statistics(ctx context.Context) (*repositories.Statistics, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT status, COUNT(*),
			COALESCE(SUM(total_amount) FILTER (WHERE status IN ('shipped', 'delivered')), 0)
		FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("query order statistics: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	stats := &repositories.Statistics{
		CountsByStatus: make(map[models.Status]int),
		TotalSales:     decimal.Zero,
	}
	for rows.Next() {
		var status models.Status
		var count int
		var sales decimal.Decimal
		if err := rows.Scan(&status, &count, &sales); err != nil {
			return nil, fmt.Errorf("scan order statistics: %w", err)
		}
		stats.CountsByStatus[status] = count
		stats.TotalOrders += count
		stats.TotalSales = stats.TotalSales.Add(sales)
		if status == models.StatusPending {
			stats.PendingCount = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order statistics: %w", err)
	}
	return stats, nil
}

func (r *OrderRepository) publishCreated(tx *sql.Tx, order *models.Order) error {
	if r.bus == nil {
		return nil
	}
	event := domainevents.OrderCreatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		Customer:   order.Customer,
		Total:      order.Total,
		OccurredAt: order.CreatedAt,
	}
	for _, l := range order.Lines {
		event.Lines = append(event.Lines, domainevents.OrderCreatedLine{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
		})
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
	return p.Publish(domainevents.TopicOrderCreated, msg)
}

// snapshotItem reads the item's name and current unit price inside the
// creating transaction.
func snapshotItem(ctx context.Context, tx *sql.Tx, itemID uuid.UUID) (string, decimal.Decimal, error) {
	var name string
	var unitPrice decimal.Decimal
	err := tx.QueryRowContext(ctx, `
		SELECT name, unit_price FROM items WHERE id = $1`, itemID).Scan(&name, &unitPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", decimal.Zero, fmt.Errorf("%w: %s", orderdomain.ErrLineItemNotFound, itemID)
		}
		return "", decimal.Zero, fmt.Errorf("query item: %w", err)
	}
	return name, unitPrice, nil
}

// debitStock locks the item's stock row and subtracts the ordered quantity.
// A debit that would go negative aborts the whole transaction.
func debitStock(ctx context.Context, tx *sql.Tx, itemID uuid.UUID, itemName string, quantity int) error {
	var current int
	err := tx.QueryRowContext(ctx, `
		SELECT current_stock FROM stock_records WHERE item_id = $1 FOR UPDATE`, itemID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s has no stock record", orderdomain.ErrLineItemNotFound, itemName)
		}
		return fmt.Errorf("lock stock record: %w", err)
	}
	next := current - quantity
	if next < 0 {
		return fmt.Errorf("%w: %s has %d, ordered %d", orderdomain.ErrInsufficientStock, itemName, current, quantity)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE stock_records SET current_stock = $1, last_updated = $2 WHERE item_id = $3`,
		next, time.Now().UTC(), itemID,
	); err != nil {
		return fmt.Errorf("debit stock: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	order, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func scanOrderRow(row rowScanner) (*models.Order, error) {
	var o models.Order
	var status string
	err := row.Scan(&o.ID, &o.OrderNo, &o.Customer, &o.OrderDate, &o.DeliveryDate, &o.DueDate,
		&o.ProcessingDays, &status, &o.Total, &o.Priority, &o.CreatedBy, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Status = models.Status(status)
	return &o, nil
}
