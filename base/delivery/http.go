package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// ErrorDataProvider is an error carrying a structured payload for clients
type ErrorDataProvider interface {
	error
	ErrorData() interface{}
}

// MakeJsonResp writes data wrapped in a JsonResponse. When data is an error
// the status is derived from it unless it maps to nothing more specific than
// the given one.
func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		if s := ErrorStatus(err); s != 0 {
			status = s
		}
		var p ErrorDataProvider
		if errors.As(err, &p) {
			data = p.ErrorData()
		} else {
			data = err.Error()
		}
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// ErrorStatus maps known errors to an http status, 0 if unknown
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, query.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auction.ErrSelfBidForbidden), errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auction.ErrAuctionNotOpen),
		errors.Is(err, auction.ErrAuctionStillOpen),
		errors.Is(err, auction.ErrInvalidTransition),
		errors.Is(err, auction.ErrVersionConflict),
		errors.Is(err, auction.ErrLockTimeout),
		errors.Is(err, auction.ErrFinalizationConflict),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, auction.ErrBidTooLow),
		errors.Is(err, auction.ErrIncrementTooSmall),
		errors.Is(err, auction.ErrProxyCeilingTooLow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRepositoryUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented
	}
	return 0
}
