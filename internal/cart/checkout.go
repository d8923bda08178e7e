package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopcart/internal/model"
	"shopcart/internal/payment"
	"shopcart/internal/queue"
)

// PaymentOnline is the payment method that hands off to the gateway.
const PaymentOnline = "online"

// CheckoutRequest carries shipping, payment and contact fields. Binding tags
// drive validation; field errors surface as a 422 with per-field messages.
type CheckoutRequest struct {
	ShippingMethod string `json:"shipping_method" binding:"required,max=255"`
	Payment        string `json:"payment" binding:"required,max=255"`
	AddressDetail  string `json:"address_detail" binding:"required,max=255"`
	Ward           string `json:"ward" binding:"required,max=255"`
	District       string `json:"district" binding:"required,max=255"`
	City           string `json:"city" binding:"required,max=255"`
	Name           string `json:"name" binding:"required,max=255"`
	Email          string `json:"email" binding:"omitempty,email,max=255"`
	PhoneNumber    string `json:"phone_number" binding:"required,max=20"`
}

// CheckoutResult is the order plus, for online payment, the gateway redirect.
type CheckoutResult struct {
	Order      *model.Order `json:"order"`
	PaymentURL string       `json:"payment_url,omitempty"`
}

// Publisher emits order-placed events after the order is durably committed.
type Publisher interface {
	Publish(ctx context.Context, msg queue.OrderPlacedMessage) error
}

// CheckoutService turns a cart (persistent or session) into a placed order.
// The whole mutation — order upsert, item persistence, guest record, stock
// decrements — runs in one transaction; the payment redirect is only issued
// after commit so an abandoned payment cannot leave orphan state.
type CheckoutService struct {
	db       *gorm.DB
	sessions *SessionStore
	gateway  payment.Gateway
	events   Publisher
}

func NewCheckoutService(db *gorm.DB, sessions *SessionStore, gateway payment.Gateway, events Publisher) *CheckoutService {
	return &CheckoutService{db: db, sessions: sessions, gateway: gateway, events: events}
}

// newOrderNo derives a short order number the fulfilment pipeline keys on.
func newOrderNo() string {
	return "SC" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// decrementStock applies an atomic conditional decrement so concurrent
// checkouts cannot oversell. Zero rows affected means the stock ran out.
func decrementStock(tx *gorm.DB, productID uint, variantID *uint, quantity int) error {
	var res *gorm.DB
	if variantID != nil {
		res = tx.Model(&model.ProductVariant{}).
			Where("id = ? AND stock >= ?", *variantID, quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	} else {
		res = tx.Model(&model.Product{}).
			Where("id = ? AND quantity >= ?", productID, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (s *CheckoutService) Checkout(ctx context.Context, id Identity, req CheckoutRequest) (*CheckoutResult, error) {
	status := model.StatusConfirmed
	if req.Payment == PaymentOnline {
		status = model.StatusAwaitingPay
	}

	var order model.Order
	var items []model.OrderItem

	// Session lines are read up front; Redis is not part of the DB
	// transaction.
	var lines []sessionLine
	if !id.Authenticated() {
		var err error
		lines, err = s.sessions.load(ctx, id.SessionID)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			return nil, ErrEmptyCart
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if id.Authenticated() {
			var open model.Order
			err := tx.Preload("Items").
				Where("user_id = ? AND status_id = ?", *id.UserID, model.StatusCart).
				First(&open).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrEmptyCart
				}
				return err
			}
			if len(open.Items) == 0 {
				return ErrEmptyCart
			}

			var total int64
			for _, item := range open.Items {
				total += item.Price * int64(item.Quantity)
				if err := decrementStock(tx, item.ProductID, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}

			open.TotalAmount = total
			open.StatusID = status
			open.OrderNo = newOrderNo()
			open.ShippingMethod = req.ShippingMethod
			open.Payment = req.Payment
			open.AddressDetail = req.AddressDetail
			open.Ward = req.Ward
			open.District = req.District
			open.City = req.City
			if err := tx.Save(&open).Error; err != nil {
				return err
			}
			order = open
			items = open.Items
			return nil
		}

		var total int64
		for _, l := range lines {
			total += l.Price * int64(l.Quantity)
		}
		guest := model.Order{
			UserID:         nil,
			StatusID:       status,
			OrderNo:        newOrderNo(),
			TotalAmount:    total,
			ShippingMethod: req.ShippingMethod,
			Payment:        req.Payment,
			AddressDetail:  req.AddressDetail,
			Ward:           req.Ward,
			District:       req.District,
			City:           req.City,
		}
		if err := tx.Create(&guest).Error; err != nil {
			return err
		}
		for _, l := range lines {
			item := model.OrderItem{
				OrderID:   guest.ID,
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				Quantity:  l.Quantity,
				Price:     l.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			if err := decrementStock(tx, l.ProductID, l.VariantID, l.Quantity); err != nil {
				return err
			}
			items = append(items, item)
		}
		record := model.GuestOrder{
			OrderID:       guest.ID,
			Name:          req.Name,
			Email:         req.Email,
			PhoneNumber:   req.PhoneNumber,
			AddressDetail: req.AddressDetail,
			Ward:          req.Ward,
			District:      req.District,
			City:          req.City,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		order = guest
		return nil
	})
	if err != nil {
		return nil, err
	}

	// COD orders are confirmed right here, so their event goes out now.
	// Online orders are only awaiting payment; their event is published by
	// ConfirmPayment once the gateway return settles them.
	if status == model.StatusConfirmed {
		s.publishPlaced(ctx, &order, items)
	}

	result := &CheckoutResult{Order: &order}
	if req.Payment == PaymentOnline {
		url, err := s.gateway.PaymentURL(&order)
		if err != nil {
			// The order is committed and awaiting payment; the caller
			// can retry the redirect.
			return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
		}
		result.PaymentURL = url
		return result, nil
	}

	// COD: the session cart is spent.
	if !id.Authenticated() {
		if err := s.sessions.Clear(ctx, id); err != nil {
			log.Printf("checkout: clear session cart: %v", err)
		}
	}
	return result, nil
}

// ConfirmPayment handles the gateway return, moving the order from awaiting
// payment to confirmed and publishing its order-placed event. Repeated
// returns for the same order are rejected by the transition check, so the
// event goes out at most once.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, orderNo string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !model.CanTransition(order.StatusID, model.StatusConfirmed) {
			return ErrInvalidTransition
		}
		order.StatusID = model.StatusConfirmed
		return tx.Model(&model.Order{}).
			Where("id = ?", order.ID).
			Update("status_id", model.StatusConfirmed).Error
	})
	if err != nil {
		return nil, err
	}
	s.publishPlaced(ctx, &order, order.Items)
	return &order, nil
}

func (s *CheckoutService) publishPlaced(ctx context.Context, order *model.Order, items []model.OrderItem) {
	if s.events == nil {
		return
	}
	msg := queue.OrderPlacedMessage{
		OrderNo:     order.OrderNo,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Guest:       order.UserID == nil,
		TotalAmount: order.TotalAmount,
		Payment:     order.Payment,
	}
	for _, item := range items {
		msg.Items = append(msg.Items, queue.OrderLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	// Fulfilment is best effort here; the order is already durable.
	if err := s.events.Publish(ctx, msg); err != nil {
		log.Printf("checkout: publish order %s: %v", order.OrderNo, err)
	}
}
