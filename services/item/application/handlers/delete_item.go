package handlers

import (
	"net/http"

	"github.com/ghuser/smartfactory/pkg/auth"
	"github.com/ghuser/smartfactory/pkg/errhttp"
	"github.com/ghuser/smartfactory/pkg/httpx"
	appsvcs "github.com/ghuser/smartfactory/services/item/application/services"
)

// DeleteItemHandler handles DELETE /items/{itemID} requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc}
}

// Execute removes an item; its stock record and sales history cascade with it.
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Item.Delete(r.Context(), id, auth.ActorFromRequest(r)); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
