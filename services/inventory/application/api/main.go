package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/smartfactory/pkg/app"
	auditsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	"github.com/ghuser/smartfactory/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/smartfactory/services/inventory/application/services"
	"github.com/ghuser/smartfactory/services/inventory/infrastructure/persistence/postgres"
)

// NewService wires the stock ledger with its postgres repository and event bus.
func NewService(a *app.Application, audit auditsvcs.Recorder) *appsvcs.StockService {
	repo := postgres.NewStockRepository(a.Db, a.EventBus)
	return appsvcs.NewStockService(repo, audit)
}

// InventoryRoutes registers stock ledger endpoints on the provided chi router.
func InventoryRoutes(r chi.Router, svc *appsvcs.StockService) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/low-stock", handlers.NewGetLowStockHandler(svc).Execute)
		r.Post("/batch-adjust", handlers.NewPostBatchAdjustHandler(svc).Execute)
		r.Put("/{itemID}/stock", handlers.NewPutStockHandler(svc).Execute)
		r.Post("/{itemID}/adjust", handlers.NewPostAdjustHandler(svc).Execute)
		r.Put("/{itemID}/levels", handlers.NewPutLevelsHandler(svc).Execute)
	})
}
