package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/smartfactory/pkg/app"
	auditsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	"github.com/ghuser/smartfactory/services/order/application/handlers"
	appsvcs "github.com/ghuser/smartfactory/services/order/application/services"
	"github.com/ghuser/smartfactory/services/order/infrastructure/persistence/postgres"
)

// NewService wires the order transaction manager with its postgres repository
// and event bus.
func NewService(a *app.Application, audit auditsvcs.Recorder) *appsvcs.OrderService {
	repo := postgres.NewOrderRepository(a.Db, a.EventBus)
	return appsvcs.NewOrderService(repo, audit)
}

// OrderRoutes registers order endpoints on the provided chi router.
func OrderRoutes(r chi.Router, svc *appsvcs.OrderService) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", handlers.NewPostOrderHandler(svc).Execute)
		r.Get("/", handlers.NewGetOrdersHandler(svc).Execute)
		r.Get("/stats", handlers.NewGetStatisticsHandler(svc).Execute)
		r.Get("/{orderID}", handlers.NewGetOrderHandler(svc).Execute)
		r.Patch("/{orderID}/status", handlers.NewPatchStatusHandler(svc).Execute)
	})
}
