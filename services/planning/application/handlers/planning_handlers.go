package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/smartfactory/pkg/auth"
	"github.com/ghuser/smartfactory/pkg/errhttp"
	"github.com/ghuser/smartfactory/pkg/httpx"
	pkgvalidator "github.com/ghuser/smartfactory/pkg/validator"
	appsvcs "github.com/ghuser/smartfactory/services/planning/application/services"
	"github.com/ghuser/smartfactory/services/planning/domain/models"
)

// PromoteRequest is the request body for POST /planning/promote.
type PromoteRequest struct {
	Count  int  `json:"count" validate:"gte=0,lte=100" example:"5"`
	Assign bool `json:"assign" example:"true"`
} // @name PromoteRequest

// RegisterMachineRequest is the request body for POST /planning/machines.
type RegisterMachineRequest struct {
	Name     string          `json:"name" validate:"required,min=1,max=255" example:"lathe-3"`
	Capacity decimal.Decimal `json:"capacity" example:"120.5"`
} // @name RegisterMachineRequest

// MachineResponse is the API view of a machine.
type MachineResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	Capacity  decimal.Decimal `json:"capacity"`
	CreatedAt time.Time       `json:"created_at"`
} // @name MachineResponse

func toMachineResponse(m *models.Machine) MachineResponse {
	return MachineResponse{
		ID:        m.ID,
		Name:      m.Name,
		Status:    m.Status.String(),
		Capacity:  m.Capacity,
		CreatedAt: m.CreatedAt,
	}
}

// ForecastResponse carries the projected demand points.
type ForecastResponse struct {
	Points              []models.ForecastPoint `json:"points"`
	InsufficientHistory bool                   `json:"insufficient_history"`
} // @name ForecastResponse

// PlanEntryResponse is one row of the production plan.
type PlanEntryResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNo     string    `json:"order_no"`
	MachineID   uuid.UUID `json:"machine_id"`
	MachineName string    `json:"machine_name"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
} // @name PlanEntryResponse

// GetForecastHandler handles GET /planning/forecast requests.
type GetForecastHandler struct {
	svc *appsvcs.PlanningService
}

// NewGetForecastHandler returns a GetForecastHandler backed by the given service.
func NewGetForecastHandler(svc *appsvcs.PlanningService) *GetForecastHandler {
	return &GetForecastHandler{svc: svc}
}

// Execute projects demand; `?alpha=` and `?horizon=` override the configured
// defaults.
func (h *GetForecastHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var alpha float64
	var horizon int
	if raw := r.URL.Query().Get("alpha"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid alpha")
			return
		}
		alpha = parsed
	}
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid horizon")
			return
		}
		horizon = parsed
	}

	result, err := h.svc.ForecastDemand(r.Context(), alpha, horizon)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ForecastResponse{
		Points:              result.Points,
		InsufficientHistory: result.InsufficientHistory,
	})
}

// PostPromoteHandler handles POST /planning/promote requests.
type PostPromoteHandler struct {
	svc *appsvcs.PlanningService
}

// NewPostPromoteHandler returns a PostPromoteHandler backed by the given service.
func NewPostPromoteHandler(svc *appsvcs.PlanningService) *PostPromoteHandler {
	return &PostPromoteHandler{svc: svc}
}

// Execute scores pending orders and promotes the top batch to processing;
// with assign set, the promoted orders are also paired with machines.
func (h *PostPromoteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[PromoteRequest](w, r)
	if !ok {
		return
	}
	actor := auth.ActorFromRequest(r)

	promoted, err := h.svc.PromoteTopOrders(r.Context(), req.Count, actor)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	assigned := 0
	if req.Assign {
		assigned, err = h.svc.AssignPromoted(r.Context(), actor)
		if err != nil {
			errhttp.WriteError(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"promoted": promoted, "assigned": assigned})
}

// GetPlanHandler handles GET /planning/plan requests.
type GetPlanHandler struct {
	svc *appsvcs.PlanningService
}

// NewGetPlanHandler returns a GetPlanHandler backed by the given service.
func NewGetPlanHandler(svc *appsvcs.PlanningService) *GetPlanHandler {
	return &GetPlanHandler{svc: svc}
}

// Execute lists every production assignment, earliest start first.
func (h *GetPlanHandler) Execute(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ProductionPlan(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]PlanEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = PlanEntryResponse{
			OrderID:     e.OrderID,
			OrderNo:     e.OrderNo,
			MachineID:   e.MachineID,
			MachineName: e.MachineName,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

// PostMachineHandler handles POST /planning/machines requests.
type PostMachineHandler struct {
	svc *appsvcs.PlanningService
}

// NewPostMachineHandler returns a PostMachineHandler backed by the given service.
func NewPostMachineHandler(svc *appsvcs.PlanningService) *PostMachineHandler {
	return &PostMachineHandler{svc: svc}
}

// Execute registers a new machine in the available state.
func (h *PostMachineHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RegisterMachineRequest](w, r)
	if !ok {
		return
	}

	machine, err := h.svc.RegisterMachine(r.Context(), req.Name, req.Capacity, auth.ActorFromRequest(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMachineResponse(machine))
}

// GetMachinesHandler handles GET /planning/machines requests.
type GetMachinesHandler struct {
	svc *appsvcs.PlanningService
}

// NewGetMachinesHandler returns a GetMachinesHandler backed by the given service.
func NewGetMachinesHandler(svc *appsvcs.PlanningService) *GetMachinesHandler {
	return &GetMachinesHandler{svc: svc}
}

// Execute lists machines; `?status=` filters by availability.
func (h *GetMachinesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	machines, err := h.svc.ListMachines(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]MachineResponse, len(machines))
	for i := range machines {
		out[i] = toMachineResponse(&machines[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}
