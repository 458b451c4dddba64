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

	"github.com/ghuser/smartfactory/pkg/database"
	"github.com/ghuser/smartfactory/pkg/events"
	itemdomain "github.com/ghuser/smartfactory/services/item/domain"
	domainevents "github.com/ghuser/smartfactory/services/item/domain/events"
	"github.com/ghuser/smartfactory/services/item/domain/models"
	"github.com/ghuser/smartfactory/services/item/domain/repositories"
)

const pgUniqueViolation = "23505"

// Stock thresholds seeded for a freshly created item.
const (
	initialMinStock = 0
	initialMaxStock = 1000
)

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository backed by the given connection pool
// and event bus. The bus is used to publish ItemCreatedEvents after a successful save.
func NewItemRepository(database *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: database, bus: bus}
}

// Save persists a new Item, seeds its zero stock record, and publishes an
// ItemCreatedEvent, all within the same transaction.
// Returns ErrItemAlreadyExists on unique constraint violations.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, name, description, unit, unit_price, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.Name.String(), item.Description, item.Unit,
			item.UnitPrice, item.CreatedBy, item.CreatedAt,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("%w: %s", itemdomain.ErrItemAlreadyExists, item.Name)
			}
			return fmt.Errorf("insert item: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock_records (id, item_id, current_stock, min_stock, max_stock, last_updated)
			VALUES ($1, $2, 0, $3, $4, $5)`,
			uuid.New(), item.ID, initialMinStock, initialMaxStock, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("seed stock record: %w", err)
		}

		if r.bus != nil {
			if err := r.publishCreated(tx, item); err != nil {
				return fmt.Errorf("publish item created: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves an Item by ID. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, name, description, unit, unit_price, created_by, created_at
		FROM items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// Find retrieves a paginated list of items and the total count.
func (r *ItemRepository) Find(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, name, description, unit, unit_price, created_by, created_at
		FROM items ORDER BY name LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate items: %w", err)
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}
	return items, total, nil
}

// Delete removes an item by ID. Stock records and sales history cascade.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.DB().ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Exists reports whether an item with the given ID exists.
func (r *ItemRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check item exists: %w", err)
	}
	return exists, nil
}

func (r *ItemRepository) publishCreated(tx *sql.Tx, item *models.Item) error {
	event := domainevents.ItemCreatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     item.ID,
		Name:       item.Name.String(),
		Unit:       item.Unit,
		UnitPrice:  item.UnitPrice,
		OccurredAt: item.CreatedAt,
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
	return p.Publish(domainevents.TopicItemCreated, msg)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	var name string
	err := row.Scan(&item.ID, &name, &item.Description, &item.Unit,
		&item.UnitPrice, &item.CreatedBy, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	item.Name = models.ItemName(name)
	return &item, nil
}
