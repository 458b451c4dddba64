package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/smartfactory/pkg/errhttp"
	"github.com/ghuser/smartfactory/pkg/httpx"
	appsvcs "github.com/ghuser/smartfactory/services/item/application/services"
	"github.com/ghuser/smartfactory/services/item/domain/repositories"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ListItemsResponse wraps a page of items with the total count.
type ListItemsResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
} // @name ListItemsResponse

// GetItemsHandler handles GET /items requests.
type GetItemsHandler struct {
	svc *appsvcs.Services
}

// NewGetItemsHandler returns a GetItemsHandler backed by the given services.
func NewGetItemsHandler(svc *appsvcs.Services) *GetItemsHandler {
	return &GetItemsHandler{svc: svc}
}

// Execute lists catalog items; `?limit=` and `?offset=` paginate.
func (h *GetItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	opts := repositories.QueryOpts{Limit: defaultPageSize}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = parsed
	}
	if opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		opts.Offset = parsed
	}

	items, total, err := h.svc.Item.List(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListItemsResponse{Items: make([]ItemResponse, len(items)), Total: total}
	for i, item := range items {
		resp.Items[i] = toItemResponse(item)
	}
	httpx.JSON(w, http.StatusOK, resp)
}
