package services

import (
	"context"

	"github.com/ghuser/smartfactory/pkg/logger"
	"github.com/ghuser/smartfactory/services/audit/domain/models"
	"github.com/ghuser/smartfactory/services/audit/domain/repositories"
)

// Recorder is the audit sink injected into every mutating service.
// Record is fire-and-forget: it returns nothing, so callers cannot couple
// their success path to audit persistence.
type Recorder interface {
	Record(ctx context.Context, entry models.Entry)
}

// AuditService appends audit entries and serves the operator view.
type AuditService struct {
	repo repositories.AuditRepository
	log  logger.Logger
}

// NewAuditService returns an AuditService wired with the given repository.
func NewAuditService(repo repositories.AuditRepository, log logger.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

// Record appends an entry on a best-effort basis. A persistence failure is
// surfaced to the operational log only; the originating business operation
// has already committed and must not be affected.
func (s *AuditService) Record(ctx context.Context, entry models.Entry) {
	if err := s.repo.Append(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			"actor", entry.Actor,
			"operation", string(entry.Operation),
			"table", entry.TableName,
			"error", err,
		)
	}
}

// ListRecent returns up to limit entries, newest first.
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListRecent(ctx, limit)
}
