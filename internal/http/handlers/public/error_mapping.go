package public

import (
	"errors"

	"github.com/averoza/marketplace/internal/http/response"
	"github.com/averoza/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError binds one business error to its API response
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	// Stock errors carry per-product detail worth surfacing verbatim.
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		code := response.CodeBadRequest
		if errors.Is(stockErr.Reason, service.ErrStockConflict) {
			code = response.CodeConflict
		}
		respondError(c, code, stockErr.Error(), nil)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, msg: "invalid cart request"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrValidation, code: response.CodeBadRequest, msg: "invalid checkout request"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, msg: "payment method invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrStockConflict, code: response.CodeConflict, msg: "stock changed during checkout"},
	{target: service.ErrOrderNumberConflict, code: response.CodeConflict, msg: "order number conflict, retry checkout"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrForbidden, code: response.CodeForbidden, msg: "forbidden"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, msg: "invalid status transition"},
	{target: service.ErrOrderCancelNotAllowed, code: response.CodeBadRequest, msg: "order can no longer be cancelled"},
}
