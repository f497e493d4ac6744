package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/domain"
)

const fractionDigits = 2

type ctPriceValue struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
}

func toCTMoney(amount decimal.Decimal, currency string) ctPriceValue {
	return ctPriceValue{
		Type:           "centPrecision",
		CurrencyCode:   currency,
		CentAmount:     amount.Shift(fractionDigits).Round(0).IntPart(),
		FractionDigits: fractionDigits,
	}
}

type ctRef struct {
	TypeID string `json:"typeId,omitempty"`
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
}

type ctErrorResponse struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Errors     []ctErrorItem `json:"errors"`
}

type ctErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ctErrorResponse{
		StatusCode: status,
		Message:    message,
		Errors:     []ctErrorItem{{Code: code, Message: message}},
	})
}

// writeError maps service errors onto HTTP responses. Unknown errors are
// logged and reported with a generic message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		abortWithError(c, http.StatusBadRequest, "InvalidInput", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "ResourceNotFound", err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		abortWithError(c, http.StatusConflict, "ConcurrentModification", err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "General", "internal error")
	}
}
