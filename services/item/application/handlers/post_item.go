package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/smartfactory/pkg/auth"
	"github.com/ghuser/smartfactory/pkg/errhttp"
	"github.com/ghuser/smartfactory/pkg/httpx"
	pkgvalidator "github.com/ghuser/smartfactory/pkg/validator"
	appsvcs "github.com/ghuser/smartfactory/services/item/application/services"
	"github.com/ghuser/smartfactory/services/item/domain/models"
)

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255" example:"Steel Bracket"`
	Description string          `json:"description" validate:"max=1024" example:"Galvanized mounting bracket"`
	Unit        string          `json:"unit" validate:"required,min=1,max=32" example:"pcs"`
	UnitPrice   decimal.Decimal `json:"unit_price" example:"19.99"`
} // @name CreateItemRequest

// ItemResponse is the API view of an item.
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"          example:"123e4567-e89b-12d3-a456-426614174000"`
	Name        string          `json:"name"        example:"Steel Bracket"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"        example:"pcs"`
	UnitPrice   decimal.Decimal `json:"unit_price"  example:"19.99"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"  example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"name is required"`
} // @name ErrorResponse

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		Unit:        item.Unit,
		UnitPrice:   item.UnitPrice,
		CreatedBy:   item.CreatedBy,
		CreatedAt:   item.CreatedAt,
	}
}

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute creates a new catalog item and seeds its zero stock record.
//
//	@Summary		Create item
//	@Description	Creates a catalog item with an initial empty stock record
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Create(r.Context(), req.Name, req.Description, req.Unit, req.UnitPrice, auth.ActorFromRequest(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}
