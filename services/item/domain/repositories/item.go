package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/smartfactory/services/item/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
type ItemRepository interface {
	// Save persists a new Item and seeds its zero stock record in the same
	// transaction. Returns ErrItemAlreadyExists if the name is taken.
	Save(ctx context.Context, item *models.Item) error

	// GetByID retrieves an Item by ID. Returns ErrItemNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// Find retrieves a paginated list of items.
	// Returns the items slice and the total count (ignoring pagination).
	Find(ctx context.Context, opts QueryOpts) ([]*models.Item, int, error)

	// Delete removes an item by ID. The item's stock record and sales
	// history cascade with it.
	Delete(ctx context.Context, id uuid.UUID) error

	// Exists reports whether an item with the given ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
