package postgres

import (
	"context"
	"fmt"

	"github.com/ghuser/smartfactory/pkg/database"
	"github.com/ghuser/smartfactory/services/audit/domain/models"
)

// AuditRepository implements repositories.AuditRepository against PostgreSQL.
type AuditRepository struct {
	db *database.Database
}

// NewAuditRepository returns an AuditRepository backed by the given pool.
func NewAuditRepository(db *database.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts one audit entry outside any business transaction, so a
// failed business operation never leaves audit rows behind and a failed
// audit write never blocks the business operation.
func (r *AuditRepository) Append(ctx context.Context, entry models.Entry) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO audit_entries (actor, operation, table_name, record_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Actor, string(entry.Operation), entry.TableName, entry.RecordID, entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListRecent returns up to limit entries, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, actor, operation, table_name, record_id, detail, created_at
		FROM audit_entries
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		var op string
		if err := rows.Scan(&e.ID, &e.Actor, &op, &e.TableName, &e.RecordID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Operation = models.Operation(op)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
