package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/smartfactory/pkg/auth"
	"github.com/ghuser/smartfactory/pkg/errhttp"
	"github.com/ghuser/smartfactory/pkg/httpx"
	pkgvalidator "github.com/ghuser/smartfactory/pkg/validator"
	appsvcs "github.com/ghuser/smartfactory/services/order/application/services"
	"github.com/ghuser/smartfactory/services/order/domain/models"
)

// OrderLineRequest is one item position in a create-order request. Unit
// prices come from the catalog, never from the client.
type OrderLineRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0" example:"3"`
} // @name OrderLineRequest

// CreateOrderRequest is the request body for POST /orders.
type CreateOrderRequest struct {
	OrderNo        string             `json:"order_no" validate:"required,min=1,max=64" example:"SO-1001"`
	Customer       string             `json:"customer" validate:"required,min=1,max=255" example:"Acme Corp"`
	OrderDate      time.Time          `json:"order_date" validate:"required"`
	DeliveryDate   *time.Time         `json:"delivery_date,omitempty"`
	DueDate        *time.Time         `json:"due_date,omitempty"`
	ProcessingDays int                `json:"processing_days" validate:"gte=0" example:"5"`
	Lines          []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
} // @name CreateOrderRequest

// UpdateStatusRequest is the request body for PATCH /orders/{orderID}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required" example:"shipped"`
} // @name UpdateStatusRequest

// OrderLineResponse is one priced line of an order.
type OrderLineResponse struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
} // @name OrderLineResponse

// OrderResponse is the API view of an order.
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNo        string              `json:"order_no"`
	Customer       string              `json:"customer"`
	OrderDate      time.Time           `json:"order_date"`
	DeliveryDate   *time.Time          `json:"delivery_date,omitempty"`
	DueDate        *time.Time          `json:"due_date,omitempty"`
	ProcessingDays int                 `json:"processing_days"`
	Status         string              `json:"status"`
	Priority       *float64            `json:"priority,omitempty"`
	Total          decimal.Decimal     `json:"total"`
	Lines          []OrderLineResponse `json:"lines,omitempty"`
	CreatedBy      string              `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
} // @name OrderResponse

func toOrderResponse(order *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:             order.ID,
		OrderNo:        order.OrderNo,
		Customer:       order.Customer,
		OrderDate:      order.OrderDate,
		DeliveryDate:   order.DeliveryDate,
		DueDate:        order.DueDate,
		ProcessingDays: order.ProcessingDays,
		Status:         order.Status.String(),
		Priority:       order.Priority,
		Total:          order.Total,
		CreatedBy:      order.CreatedBy,
		CreatedAt:      order.CreatedAt,
	}
	for _, l := range order.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return resp
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

// PostOrderHandler handles POST /orders requests.
type PostOrderHandler struct {
	svc *appsvcs.OrderService
}

// NewPostOrderHandler returns a PostOrderHandler backed by the given service.
func NewPostOrderHandler(svc *appsvcs.OrderService) *PostOrderHandler {
	return &PostOrderHandler{svc: svc}
}

// Execute creates an order, snapshotting line prices and debiting stock
// atomically.
//
//	@Summary	Create order
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateOrderRequest	true	"Order to create"
//	@Success	201		{object}	OrderResponse
//	@Failure	409		{object}	map[string]string
//	@Router		/orders [post]
func (h *PostOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateOrderRequest](w, r)
	if !ok {
		return
	}

	in := appsvcs.CreateInput{
		OrderNo:        req.OrderNo,
		Customer:       req.Customer,
		OrderDate:      req.OrderDate,
		DeliveryDate:   req.DeliveryDate,
		DueDate:        req.DueDate,
		ProcessingDays: req.ProcessingDays,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, models.LineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	order, err := h.svc.Create(r.Context(), in, auth.ActorFromRequest(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(order))
}

// PatchStatusHandler handles PATCH /orders/{orderID}/status requests.
type PatchStatusHandler struct {
	svc *appsvcs.OrderService
}

// NewPatchStatusHandler returns a PatchStatusHandler backed by the given service.
func NewPatchStatusHandler(svc *appsvcs.OrderService) *PatchStatusHandler {
	return &PatchStatusHandler{svc: svc}
}

// Execute moves an order to a new lifecycle status.
func (h *PatchStatusHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateStatusRequest](w, r)
	if !ok {
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), orderID, req.Status, auth.ActorFromRequest(r)); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// GetOrderHandler handles GET /orders/{orderID} requests.
type GetOrderHandler struct {
	svc *appsvcs.OrderService
}

// NewGetOrderHandler returns a GetOrderHandler backed by the given service.
func NewGetOrderHandler(svc *appsvcs.OrderService) *GetOrderHandler {
	return &GetOrderHandler{svc: svc}
}

// Execute returns one order with its lines.
func (h *GetOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.svc.GetByID(r.Context(), orderID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

// GetOrdersHandler handles GET /orders requests.
type GetOrdersHandler struct {
	svc *appsvcs.OrderService
}

// NewGetOrdersHandler returns a GetOrdersHandler backed by the given service.
func NewGetOrdersHandler(svc *appsvcs.OrderService) *GetOrdersHandler {
	return &GetOrdersHandler{svc: svc}
}

// Execute lists orders newest first; `?status=` filters by lifecycle status.
func (h *GetOrdersHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}

// StatisticsResponse summarizes the order book.
type StatisticsResponse struct {
	TotalOrders    int             `json:"total_orders"`
	CountsByStatus map[string]int  `json:"counts_by_status"`
	PendingCount   int             `json:"pending_count"`
	TotalSales     decimal.Decimal `json:"total_sales"`
} // @name OrderStatisticsResponse

// GetStatisticsHandler handles GET /orders/statistics requests.
type GetStatisticsHandler struct {
	svc *appsvcs.OrderService
}

// NewGetStatisticsHandler returns a GetStatisticsHandler backed by the given service.
func NewGetStatisticsHandler(svc *appsvcs.OrderService) *GetStatisticsHandler {
	return &GetStatisticsHandler{svc: svc}
}

// Execute aggregates order counts per status and total sales.
func (h *GetStatisticsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := StatisticsResponse{
		TotalOrders:    stats.TotalOrders,
		CountsByStatus: make(map[string]int, len(stats.CountsByStatus)),
		PendingCount:   stats.PendingCount,
		TotalSales:     stats.TotalSales,
	}
	for status, count := range stats.CountsByStatus {
		resp.CountsByStatus[status.String()] = count
	}
	httpx.JSON(w, http.StatusOK, resp)
}
