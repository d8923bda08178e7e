package queue

import "fmt"

// OrderLine is one item of a placed order as carried on the wire.
type OrderLine struct {
	ProductID uint  `json:"product_id"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

// OrderPlacedMessage is the event written to Kafka after an order is
// durably committed. OrderNo doubles as the idempotency key downstream.
type OrderPlacedMessage struct {
	OrderNo     string      `json:"order_no"`
	OrderID     uint        `json:"order_id"`
	UserID      *int64      `json:"user_id"`
	Guest       bool        `json:"guest"`
	TotalAmount int64       `json:"total_amount"`
	Payment     string      `json:"payment"`
	Items       []OrderLine `json:"items"`
}

// Validate rejects malformed messages before the consumer acts on them.
func (m OrderPlacedMessage) Validate() error {
	if m.OrderNo == "" {
		return fmt.Errorf("order_no is required")
	}
	if m.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if !m.Guest && m.UserID == nil {
		return fmt.Errorf("user_id is required for non-guest orders")
	}
	if m.TotalAmount < 0 {
		return fmt.Errorf("total_amount must be >= 0")
	}
	if len(m.Items) == 0 {
		return fmt.Errorf("items must not be empty")
	}
	for i, item := range m.Items {
		if item.ProductID == 0 {
			return fmt.Errorf("items[%d].product_id is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("items[%d].quantity must be > 0", i)
		}
	}
	return nil
}
