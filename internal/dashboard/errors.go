package dashboard

import (
	"errors"
	"net/http"

	"storedash/internal/session"
	"storedash/internal/storeapi"
)

var (
	ErrStoreNotLoaded     = errors.New("Store not loaded")
	ErrProductNotFound    = errors.New("Product not found")
	ErrPaymentNotFound    = errors.New("Payment not found")
	ErrNotAwaiting        = errors.New("Payment is no longer awaiting review")
	ErrInvalidOrderStatus = errors.New("Order status must be pending or done")
)

// ValidationError is an input problem reported back to the operator verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// HTTPStatus maps a controller error to the status a surface should reply with.
func HTTPStatus(err error) int {
	var verr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr), errors.Is(err, ErrInvalidOrderStatus), errors.Is(err, session.ErrMissingToken):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotAwaiting):
		return http.StatusConflict
	case errors.Is(err, ErrStoreNotLoaded):
		return http.StatusPreconditionFailed
	}
	// A 2xx reply carrying ok:false is still a failure for our callers.
	if status := storeapi.StatusOf(err); status >= http.StatusBadRequest {
		return status
	}
	return http.StatusBadGateway
}
