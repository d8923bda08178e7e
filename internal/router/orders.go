package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopcart/internal/cart"
	"shopcart/internal/middleware"
)

// requireUser answers 401 for anonymous callers and returns the user id
// otherwise.
func requireUser(c *gin.Context) (int64, bool) {
	ident := middleware.IdentityFrom(c)
	if !ident.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "authentication required"})
		return 0, false
	}
	return *ident.UserID, true
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "not found"})
		return 0, false
	}
	return uint(id), true
}

func listOrders(orders *cart.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		list, err := orders.List(c.Request.Context(), userID)
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

func orderDetail(orders *cart.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}
		order, err := orders.Detail(c.Request.Context(), userID, orderID)
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": order})
	}
}

func cancelOrder(orders *cart.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}
		order, err := orders.Cancel(c.Request.Context(), userID, orderID)
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "order cancelled", "data": order})
	}
}
