package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/smartfactory/pkg/app"
	"github.com/ghuser/smartfactory/services/audit/application/handlers"
	appsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	"github.com/ghuser/smartfactory/services/audit/infrastructure/persistence/postgres"
)

// NewService wires the audit service with its postgres repository.
// Exposed so other bounded contexts can inject the shared Recorder.
func NewService(a *app.Application) *appsvcs.AuditService {
	return appsvcs.NewAuditService(postgres.NewAuditRepository(a.Db), a.Logger)
}

// AuditRoutes registers audit endpoints on the provided chi router.
func AuditRoutes(r chi.Router, svc *appsvcs.AuditService) {
	r.Route("/audit", func(r chi.Router) {
		r.Get("/", handlers.NewGetAuditHandler(svc).Execute)
	})
}
