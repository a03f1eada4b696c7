package public

import (
	"github.com/averoza/marketplace/internal/http/response"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest checkout payload. Line items come from the stored
// cart; any items in the body are ignored.
type CheckoutRequest struct {
	ShippingAddress       models.Address  `json:"shipping_address" binding:"required"`
	BillingAddress        *models.Address `json:"billing_address"`
	BillingSameAsShipping bool            `json:"billing_same_as_shipping"`
	PaymentMethod         string          `json:"payment_method" binding:"required"`
	CustomerNotes         string          `json:"customer_notes"`
}

// CheckoutSummary prices the cart without creating anything
func (h *Handler) CheckoutSummary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	totals, err := h.CheckoutService.Summary(uid)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout summary failed")
		return
	}
	response.Success(c, totals)
}

// Checkout turns the cart into an order
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.CheckoutService.Process(uid, service.CheckoutInput{
		ShippingAddress:       req.ShippingAddress,
		BillingAddress:        req.BillingAddress,
		BillingSameAsShipping: req.BillingSameAsShipping,
		PaymentMethod:         req.PaymentMethod,
		CustomerNotes:         req.CustomerNotes,
	})
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Created(c, order)
}
