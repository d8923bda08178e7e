package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcart/internal/cart"
	"shopcart/internal/middleware"
)

type addToCartRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

func addToCart(persistent, session cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addToCartRequest
		if !bindJSON(c, &req) {
			return
		}
		ident := middleware.IdentityFrom(c)
		view, err := storeFor(ident, persistent, session).
			Add(c.Request.Context(), ident, req.ProductID, req.VariantID, req.Quantity)
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product added to cart", "data": view})
	}
}

func viewCart(persistent, session cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := middleware.IdentityFrom(c)
		view, err := storeFor(ident, persistent, session).View(c.Request.Context(), ident)
		if err != nil {
			// An authenticated user with no open order gets a friendly
			// 200; an empty anonymous session is a 404.
			if err == cart.ErrEmptyCart && ident.Authenticated() {
				c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "your cart is empty"})
				return
			}
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": view})
	}
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func updateCartItem(persistent, session cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if !bindJSON(c, &req) {
			return
		}
		ident := middleware.IdentityFrom(c)
		view, err := storeFor(ident, persistent, session).
			UpdateItem(c.Request.Context(), ident, c.Param("item_id"), req.Quantity)
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "cart updated", "data": view})
	}
}

func removeCartItem(persistent, session cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := middleware.IdentityFrom(c)
		view, err := storeFor(ident, persistent, session).
			RemoveItem(c.Request.Context(), ident, c.Param("item_id"))
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product removed from cart", "data": view})
	}
}

func clearCart(persistent, session cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := middleware.IdentityFrom(c)
		if err := storeFor(ident, persistent, session).Clear(c.Request.Context(), ident); err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "cart cleared"})
	}
}
