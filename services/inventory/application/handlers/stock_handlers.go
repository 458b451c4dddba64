package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/smartfactory/pkg/auth"
	"github.com/ghuser/smartfactory/pkg/errhttp"
	"github.com/ghuser/smartfactory/pkg/httpx"
	pkgvalidator "github.com/ghuser/smartfactory/pkg/validator"
	appsvcs "github.com/ghuser/smartfactory/services/inventory/application/services"
	"github.com/ghuser/smartfactory/services/inventory/domain/models"
)

// SetStockRequest is the request body for PUT /inventory/{itemID}/stock.
type SetStockRequest struct {
	Stock int `json:"stock" validate:"gte=0" example:"150"`
} // @name SetStockRequest

// AdjustStockRequest is the request body for POST /inventory/{itemID}/adjust.
type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required" example:"-5"`
	Reason string `json:"reason" validate:"required,min=1,max=255" example:"cycle count correction"`
} // @name AdjustStockRequest

// BatchAdjustRequest is the request body for POST /inventory/batch-adjust.
type BatchAdjustRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" validate:"required,min=1"`
	Delta   int         `json:"delta" validate:"required"`
} // @name BatchAdjustRequest

// UpdateLevelsRequest is the request body for PUT /inventory/{itemID}/levels.
type UpdateLevelsRequest struct {
	MinStock int `json:"min_stock" validate:"gte=0" example:"10"`
	MaxStock int `json:"max_stock" validate:"gte=0" example:"1000"`
} // @name UpdateLevelsRequest

// StockRecordResponse is the stock ledger view of one item.
type StockRecordResponse struct {
	ItemID       uuid.UUID `json:"item_id"`
	CurrentStock int       `json:"current_stock"`
	MinStock     int       `json:"min_stock"`
	MaxStock     int       `json:"max_stock"`
	Low          bool      `json:"low"`
	LastUpdated  time.Time `json:"last_updated"`
} // @name StockRecordResponse

func toStockResponse(rec *models.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ItemID:       rec.ItemID,
		CurrentStock: rec.CurrentStock,
		MinStock:     rec.MinStock,
		MaxStock:     rec.MaxStock,
		Low:          rec.IsLow(),
		LastUpdated:  rec.LastUpdated,
	}
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid item id")
		return uuid.Nil, false
	}
	return id, true
}

// PutStockHandler handles PUT /inventory/{itemID}/stock requests.
type PutStockHandler struct {
	svc *appsvcs.StockService
}

// NewPutStockHandler returns a PutStockHandler backed by the given service.
func NewPutStockHandler(svc *appsvcs.StockService) *PutStockHandler {
	return &PutStockHandler{svc: svc}
}

// Execute overwrites an item's current stock.
//
//	@Summary	Set stock level
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		itemID	path		string			true	"Item ID"
//	@Param		request	body		SetStockRequest	true	"New stock level"
//	@Success	200		{object}	StockRecordResponse
//	@Router		/inventory/{itemID}/stock [put]
func (h *PutStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SetStockRequest](w, r)
	if !ok {
		return
	}

	rec, err := h.svc.SetStock(r.Context(), itemID, req.Stock, auth.ActorFromRequest(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStockResponse(rec))
}

// PostAdjustHandler handles POST /inventory/{itemID}/adjust requests.
type PostAdjustHandler struct {
	svc *appsvcs.StockService
}

// NewPostAdjustHandler returns a PostAdjustHandler backed by the given service.
func NewPostAdjustHandler(svc *appsvcs.StockService) *PostAdjustHandler {
	return &PostAdjustHandler{svc: svc}
}

// Execute applies a signed delta to an item's current stock.
//
//	@Summary	Adjust stock
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		itemID	path		string				true	"Item ID"
//	@Param		request	body		AdjustStockRequest	true	"Adjustment"
//	@Success	200		{object}	StockRecordResponse
//	@Failure	409		{object}	map[string]string
//	@Router		/inventory/{itemID}/adjust [post]
func (h *PostAdjustHandler) Execute(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AdjustStockRequest](w, r)
	if !ok {
		return
	}

	rec, err := h.svc.AdjustStock(r.Context(), itemID, req.Delta, req.Reason, auth.ActorFromRequest(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStockResponse(rec))
}

// PostBatchAdjustHandler handles POST /inventory/batch-adjust requests.
type PostBatchAdjustHandler struct {
	svc *appsvcs.StockService
}

// NewPostBatchAdjustHandler returns a PostBatchAdjustHandler backed by the given service.
func NewPostBatchAdjustHandler(svc *appsvcs.StockService) *PostBatchAdjustHandler {
	return &PostBatchAdjustHandler{svc: svc}
}

// Execute applies the same delta to a list of items in one transaction.
// Items whose result would go negative are skipped; the response reports the
// number actually adjusted.
func (h *PostBatchAdjustHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[BatchAdjustRequest](w, r)
	if !ok {
		return
	}

	adjusted, err := h.svc.BatchAdjust(r.Context(), req.ItemIDs, req.Delta, auth.ActorFromRequest(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"adjusted": adjusted})
}

// PutLevelsHandler handles PUT /inventory/{itemID}/levels requests.
type PutLevelsHandler struct {
	svc *appsvcs.StockService
}

// NewPutLevelsHandler returns a PutLevelsHandler backed by the given service.
func NewPutLevelsHandler(svc *appsvcs.StockService) *PutLevelsHandler {
	return &PutLevelsHandler{svc: svc}
}

// Execute overwrites an item's min/max thresholds.
func (h *PutLevelsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateLevelsRequest](w, r)
	if !ok {
		return
	}

	rec, err := h.svc.UpdateLevels(r.Context(), itemID, req.MinStock, req.MaxStock, auth.ActorFromRequest(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStockResponse(rec))
}

// GetLowStockHandler handles GET /inventory/low-stock requests.
type GetLowStockHandler struct {
	svc *appsvcs.StockService
}

// NewGetLowStockHandler returns a GetLowStockHandler backed by the given service.
func NewGetLowStockHandler(svc *appsvcs.StockService) *GetLowStockHandler {
	return &GetLowStockHandler{svc: svc}
}

// Execute lists every item below its safety threshold.
func (h *GetLowStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.LowStockItems(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]StockRecordResponse, len(records))
	for i := range records {
		out[i] = toStockResponse(&records[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}
