package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/smartfactory/pkg/app"
	auditsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	"github.com/ghuser/smartfactory/services/item/application/handlers"
	appsvcs "github.com/ghuser/smartfactory/services/item/application/services"
)

// NewServices wires the item catalog with its postgres repository, Redis
// cache, and audit sink.
func NewServices(a *app.Application, audit auditsvcs.Recorder) *appsvcs.Services {
	return appsvcs.New(a, audit)
}

// ItemRoutes registers item endpoints on the provided chi router.
func ItemRoutes(r chi.Router, svcs *appsvcs.Services) {
	r.Route("/items", func(r chi.Router) {
		r.Post("/", handlers.NewPostItemHandler(svcs).Execute)
		r.Get("/", handlers.NewGetItemsHandler(svcs).Execute)
		r.Get("/{itemID}", handlers.NewGetItemHandler(svcs).Execute)
		r.Delete("/{itemID}", handlers.NewDeleteItemHandler(svcs).Execute)
	})
}
