package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcart/internal/cart"
	"shopcart/internal/middleware"
	"shopcart/internal/payment"
)

func doCheckout(checkout *cart.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cart.CheckoutRequest
		if !bindJSON(c, &req) {
			return
		}
		ident := middleware.IdentityFrom(c)
		result, err := checkout.Checkout(c.Request.Context(), ident, req)
		if err != nil {
			if errors.Is(err, cart.ErrPaymentProvider) {
				c.JSON(http.StatusBadGateway, gin.H{"code": 502, "msg": "payment provider error"})
				return
			}
			cartError(c, err)
			return
		}
		if result.PaymentURL != "" {
			c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
				"url":   result.PaymentURL,
				"order": result.Order,
			}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "order placed", "data": result.Order})
	}
}

// paymentReturn is the gateway's redirect target: the signature is verified
// before the single allowed transition awaiting-payment -> confirmed fires.
func paymentReturn(checkout *cart.CheckoutService, gateway payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderNo, err := gateway.VerifyReturn(c.Request.URL.Query())
		if err != nil {
			if errors.Is(err, payment.ErrPaymentFailed) {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "payment was not completed"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid payment return"})
			return
		}
		order, err := checkout.ConfirmPayment(c.Request.Context(), orderNo)
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "payment confirmed", "data": order})
	}
}
