package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	pkgcache "github.com/ghuser/smartfactory/pkg/cache"
	auditsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	auditmodels "github.com/ghuser/smartfactory/services/audit/domain/models"
	itemdomain "github.com/ghuser/smartfactory/services/item/domain"
	"github.com/ghuser/smartfactory/services/item/domain/models"
	"github.com/ghuser/smartfactory/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/smartfactory/services/item/domain/services"
)

// ItemService orchestrates creation and retrieval of Items.
// Event publishing is handled by the repository layer (outbox pattern).
// Reads are served from Redis cache when available.
type ItemService struct {
	repo  repositories.ItemRepository
	cache *pkgcache.ItemCache
	audit auditsvcs.Recorder
}

// NewItemService returns an ItemService wired with the given repository, cache, and audit sink.
func NewItemService(repo repositories.ItemRepository, itemCache *pkgcache.ItemCache, audit auditsvcs.Recorder) *ItemService {
	return &ItemService{repo: repo, cache: itemCache, audit: audit}
}

// Create validates and persists an Item; the repository seeds the zero stock
// record and publishes ItemCreatedEvent in the same transaction.
func (s *ItemService) Create(ctx context.Context, name, description, unit string, unitPrice decimal.Decimal, actor string) (*models.Item, error) {
	itemName, err := models.NewItemName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}

	item, err := models.NewItem(itemName, description, unit, unitPrice, actor)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	if err := domainsvcs.ValidateItemForCreation(item); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpInsert, "items", &item.ID,
		fmt.Sprintf("item %s created at %s per %s", item.Name, item.UnitPrice.StringFixed(2), item.Unit)))
	return item, nil
}

// GetByID retrieves an Item using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil {
			return &models.Item{
				ID:          cached.ID,
				Name:        models.ItemName(cached.Name),
				Description: cached.Description,
				Unit:        cached.Unit,
				UnitPrice:   cached.UnitPrice,
				CreatedAt:   cached.CreatedAt,
			}, nil
		} else if !errors.Is(err, redis.Nil) {
			// Cache error — fall through to Postgres.
			_ = err
		}
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if s.cache != nil {
		go func() {
			_ = s.cache.Set(context.Background(), &pkgcache.CachedItem{
				ID:          item.ID,
				Name:        item.Name.String(),
				Description: item.Description,
				Unit:        item.Unit,
				UnitPrice:   item.UnitPrice,
				CreatedAt:   item.CreatedAt,
			})
		}()
	}

	return item, nil
}

// List returns a paginated slice of items plus the total count.
func (s *ItemService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	items, total, err := s.repo.Find(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}

// Delete removes an item by ID; its stock record and sales history cascade.
// Returns ErrItemNotFound if no matching item exists.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check item: %w", err)
	}
	if !exists {
		return itemdomain.ErrItemNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(context.Background(), id)
	}

	s.audit.Record(ctx, auditmodels.NewEntry(actor, auditmodels.OpDelete, "items", &id, "item deleted"))
	return nil
}
