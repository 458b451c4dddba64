// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/smartfactory/pkg/httpx"
	invdomain "github.com/ghuser/smartfactory/services/inventory/domain"
	itemdomain "github.com/ghuser/smartfactory/services/item/domain"
	orderdomain "github.com/ghuser/smartfactory/services/order/domain"
	plandomain "github.com/ghuser/smartfactory/services/planning/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors become 500s with the message masked, so driver and
// infrastructure details never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, true))
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, itemdomain.ErrItemNotFound),
		errors.Is(err, invdomain.ErrStockNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrLineItemNotFound),
		errors.Is(err, plandomain.ErrMachineNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, itemdomain.ErrItemAlreadyExists),
		errors.Is(err, orderdomain.ErrDuplicateOrderNo),
		errors.Is(err, plandomain.ErrMachineAlreadyExists),
		errors.Is(err, orderdomain.ErrInsufficientStock),
		errors.Is(err, invdomain.ErrNegativeStock),
		errors.Is(err, plandomain.ErrNoAvailableMachines):
		return http.StatusConflict // 409
	case errors.Is(err, itemdomain.ErrInvalidItemName),
		errors.Is(err, invdomain.ErrInvalidStockLevels),
		errors.Is(err, orderdomain.ErrEmptyOrder),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, plandomain.ErrInvalidAlpha),
		errors.Is(err, plandomain.ErrInvalidHorizon),
		errors.Is(err, plandomain.ErrInvalidMachineStatus):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
