package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopcart/internal/model"
)

// Identity is the resolved caller of a request: either an authenticated user
// or an anonymous session. Handlers pass it explicitly instead of reading
// auth state ambiently.
type Identity struct {
	UserID    *int64
	SessionID string
}

// Authenticated reports whether the identity belongs to a logged-in user.
func (id Identity) Authenticated() bool { return id.UserID != nil }

// Sentinel errors surfaced to the HTTP layer. Anything else is treated as an
// internal error and not leaked to clients.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrPaymentProvider   = errors.New("payment provider error")
)

// Line is one cart entry. For persistent carts ID is the order item id, for
// session carts it is the line's uuid.
type Line struct {
	ID        string                `json:"id"`
	ProductID uint                  `json:"product_id"`
	VariantID *uint                 `json:"variant_id"`
	Quantity  int                   `json:"quantity"`
	Price     int64                 `json:"price"`
	Product   *model.Product        `json:"product,omitempty"`
	Variant   *model.ProductVariant `json:"variant,omitempty"`
}

// Cart is the view returned by every cart operation. OrderID is zero for
// session carts.
type Cart struct {
	OrderID     uint   `json:"order_id,omitempty"`
	UserID      *int64 `json:"user_id,omitempty"`
	TotalAmount int64  `json:"total_amount"`
	Lines       []Line `json:"items"`
}

// Store reconciles cart mutations for one kind of identity. The persistent
// implementation is backed by the orders table, the session one by Redis.
type Store interface {
	// Add merges (product, variant, quantity) into the cart, enforcing
	// stock limits. Rejections leave the cart untouched.
	Add(ctx context.Context, id Identity, productID uint, variantID *uint, quantity int) (*Cart, error)
	// View returns the current cart or ErrEmptyCart.
	View(ctx context.Context, id Identity) (*Cart, error)
	// UpdateItem replaces a line's quantity after re-checking stock.
	UpdateItem(ctx context.Context, id Identity, itemID string, quantity int) (*Cart, error)
	// RemoveItem drops a line and adjusts the total.
	RemoveItem(ctx context.Context, id Identity, itemID string) (*Cart, error)
	// Clear removes every line. Clearing an absent cart is ErrEmptyCart.
	Clear(ctx context.Context, id Identity) error
}

// loadProductVariant fetches the product and, when requested, the variant.
// The variant must belong to the product.
func loadProductVariant(tx *gorm.DB, productID uint, variantID *uint) (*model.Product, *model.ProductVariant, error) {
	var product model.Product
	if err := tx.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if variantID == nil {
		return &product, nil, nil
	}
	var variant model.ProductVariant
	if err := tx.Where("product_id = ?", productID).First(&variant, *variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return &product, &variant, nil
}

// availableStock is the stock limit for an add/update: variant stock when a
// variant is selected, product quantity otherwise.
func availableStock(product *model.Product, variant *model.ProductVariant) int {
	if variant != nil {
		return variant.Stock
	}
	return product.Quantity
}

// unitPrice is the current catalog price for a line.
func unitPrice(product *model.Product, variant *model.ProductVariant) int64 {
	if variant != nil {
		return variant.Price
	}
	return product.Price
}
