package repositories

import (
	"context"

	"github.com/ghuser/smartfactory/services/audit/domain/models"
)

// AuditRepository is the persistence interface for audit entries.
// The domain layer owns this interface; infrastructure implements it.
type AuditRepository interface {
	// Append inserts one entry. Implementations must never mutate existing rows.
	Append(ctx context.Context, entry models.Entry) error

	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.Entry, error)
}
