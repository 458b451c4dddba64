package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/smartfactory/pkg/app"
	auditsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
	"github.com/ghuser/smartfactory/services/planning/application/handlers"
	appsvcs "github.com/ghuser/smartfactory/services/planning/application/services"
	"github.com/ghuser/smartfactory/services/planning/infrastructure/persistence/postgres"
)

// NewService wires the forecaster and scheduler with their postgres
// repository and the configured planning defaults.
func NewService(a *app.Application, audit auditsvcs.Recorder) *appsvcs.PlanningService {
	repo := postgres.NewPlanningRepository(a.Db)
	return appsvcs.NewPlanningService(repo, audit,
		a.Config.ForecastAlpha, a.Config.ForecastHorizon, a.Config.ScheduleBatchSize)
}

// PlanningRoutes registers forecasting and scheduling endpoints on the
// provided chi router.
func PlanningRoutes(r chi.Router, svc *appsvcs.PlanningService) {
	r.Route("/planning", func(r chi.Router) {
		r.Get("/forecast", handlers.NewGetForecastHandler(svc).Execute)
		r.Post("/promote", handlers.NewPostPromoteHandler(svc).Execute)
		r.Get("/plan", handlers.NewGetPlanHandler(svc).Execute)
		r.Post("/machines", handlers.NewPostMachineHandler(svc).Execute)
		r.Get("/machines", handlers.NewGetMachinesHandler(svc).Execute)
	})
}
