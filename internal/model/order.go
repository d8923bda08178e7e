package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order status codes. StatusCart is the open cart of an authenticated user;
// there is at most one per user.
const (
	StatusCart        = 1 // open cart, not yet checked out
	StatusConfirmed   = 2 // checkout done (COD) or online payment confirmed
	StatusAwaitingPay = 3 // online checkout done, waiting for gateway return
	StatusCompleted   = 4 // fulfilment finished
	StatusCancelled   = 5 // terminal
)

// allowedTransitions is the whole order state machine. Cancellation is only
// reachable from StatusConfirmed.
var allowedTransitions = map[int][]int{
	StatusCart:        {StatusConfirmed, StatusAwaitingPay},
	StatusAwaitingPay: {StatusConfirmed},
	StatusConfirmed:   {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to int) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusName maps a status code to its display name.
func StatusName(status int) string {
	switch status {
	case StatusCart:
		return "cart"
	case StatusConfirmed:
		return "confirmed"
	case StatusAwaitingPay:
		return "awaiting_payment"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", status)
	}
}

// Order is both the open cart (StatusCart) and the placed order; checkout
// promotes the same row instead of copying it.
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is nil for guest checkouts; those carry a GuestOrder record.
	UserID   *int64 `gorm:"index" json:"user_id"`
	StatusID int    `gorm:"not null;default:1;index" json:"status_id"`
	// OrderNo is assigned at checkout and is the idempotency key for the
	// fulfilment pipeline.
	OrderNo     string `gorm:"size:64;index" json:"order_no"`
	TotalAmount int64  `gorm:"not null;default:0" json:"total_amount"`

	ShippingMethod string `gorm:"size:255" json:"shipping_method"`
	Payment        string `gorm:"size:255" json:"payment"`
	AddressDetail  string `gorm:"size:255" json:"address_detail"`
	Ward           string `gorm:"size:255" json:"ward"`
	District       string `gorm:"size:255" json:"district"`
	City           string `gorm:"size:255" json:"city"`

	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	GuestOrder *GuestOrder `gorm:"foreignKey:OrderID" json:"guest_order,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one cart/order line. Price is the unit price snapshot taken
// when the line was last added to, not re-derived from the catalog.
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrderID   uint  `gorm:"not null;index" json:"order_id"`
	ProductID uint  `gorm:"not null;index" json:"product_id"`
	VariantID *uint `gorm:"index" json:"variant_id"`
	Quantity  int   `gorm:"not null" json:"quantity"`
	Price     int64 `gorm:"not null" json:"price"`
}

func (OrderItem) TableName() string { return "order_items" }

// GuestOrder holds contact and shipping details for a checkout performed
// without authentication, 1:1 with its order.
type GuestOrder struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrderID       uint   `gorm:"not null;uniqueIndex" json:"order_id"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Email         string `gorm:"size:255" json:"email"`
	PhoneNumber   string `gorm:"size:20;not null" json:"phone_number"`
	AddressDetail string `gorm:"size:255" json:"address_detail"`
	Ward          string `gorm:"size:255" json:"ward"`
	District      string `gorm:"size:255" json:"district"`
	City          string `gorm:"size:255" json:"city"`
}

func (GuestOrder) TableName() string { return "guest_orders" }
