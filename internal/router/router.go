package router

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"shopcart/internal/cart"
	"shopcart/internal/catalog"
	"shopcart/internal/config"
	"shopcart/internal/middleware"
	"shopcart/internal/payment"
	"shopcart/internal/queue"
	rediskey "shopcart/pkg/redis"
)

// Setup wires every HTTP route. Handlers are closures over their services so
// nothing reaches for globals.
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, producer *queue.Producer, cfg config.AppConfig) {
	persistent := cart.NewPersistentStore(db)
	sessionStorage := rediskey.NewCartStorage(rdb, cfg.SessionCartTTL)
	session := cart.NewSessionStore(db, sessionStorage)
	gateway := payment.NewSignedURLGateway(cfg.PaymentBaseURL, cfg.PaymentMerchant, cfg.PaymentSecret, cfg.PaymentReturnURL)

	var events cart.Publisher
	if producer != nil {
		events = producer
	}
	checkout := cart.NewCheckoutService(db, session, gateway, events)
	orders := cart.NewOrderService(db)
	reconciler := catalog.NewReconciler(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	api := r.Group("/api", middleware.Identify(cfg.JWTSecret, cfg.SessionCartTTL))
	limited := middleware.RedisRateLimit(rdb, cfg.CartRateLimit, cfg.CartRateWindow)

	// Cart
	api.POST("/cart/add", limited, addToCart(persistent, session))
	api.GET("/cart", viewCart(persistent, session))
	api.PUT("/cart/items/:item_id", limited, updateCartItem(persistent, session))
	api.DELETE("/cart/items/:item_id", limited, removeCartItem(persistent, session))
	api.DELETE("/cart", limited, clearCart(persistent, session))

	// Checkout
	api.POST("/checkout", limited, doCheckout(checkout))
	api.GET("/checkout/payment/return", paymentReturn(checkout, gateway))

	// Orders
	api.GET("/orders", listOrders(orders))
	api.GET("/orders/:order_id", orderDetail(orders))
	api.POST("/orders/:order_id/cancel", cancelOrder(orders))

	// Catalog
	api.GET("/products", listProducts(db))
	api.GET("/products/:id", getProduct(db))
	api.POST("/products", createProduct(db))
	api.PUT("/products/:id", updateProduct(db))
	api.DELETE("/products/:id", deleteProduct(db))
	api.POST("/products/:id/restore", restoreProduct(db))
	api.POST("/products/variants", reconcileVariants(reconciler))
	api.PUT("/products/variants", updateVariants(db))
	api.DELETE("/products/variants/:id", deleteVariant(db))
}

// storeFor picks the cart implementation matching the caller.
func storeFor(id cart.Identity, persistent, session cart.Store) cart.Store {
	if id.Authenticated() {
		return persistent
	}
	return session
}

// bindJSON parses the body and answers a 422 with per-field messages on
// validation failure. Returns false when the request was already answered.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fmt.Sprintf("failed on the %q rule", fe.Tag())
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":   422,
			"msg":    "validation error",
			"errors": fields,
		})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
	return false
}

// cartError maps the service error taxonomy onto HTTP codes; anything
// unexpected becomes an opaque 500.
func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "not found"})
	case errors.Is(err, cart.ErrEmptyCart):
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "your cart is empty"})
	case errors.Is(err, cart.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "insufficient product quantity"})
	case errors.Is(err, cart.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "order status does not allow this operation"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": "internal error"})
	}
}
