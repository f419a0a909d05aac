package database

import (
	"errors"
	"net/http"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrOrderNotFound    = errors.New("online order not found")
	ErrCategoryNotFound = errors.New("category not found")

	// ErrInvalidState marks an operation attempted on a record in the wrong
	// lifecycle state, e.g. cancelling an already cancelled sale or receiving
	// a received purchase.
	ErrInvalidState = errors.New("record is not in a valid state for this operation")

	// ErrValidation marks bad input rejected before any store write.
	ErrValidation = errors.New("validation failed")
)

// ErrorStatus maps a domain error to an HTTP status code. Anything
// unrecognized is treated as a store failure.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrSaleNotFound),
		errors.Is(err, ErrPurchaseNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
