package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopcart/internal/model"
)

// OrderService covers the post-checkout order surface: history, detail and
// cancellation, always scoped to the owning user.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// List returns the caller's placed orders, excluding the open cart.
func (s *OrderService) List(ctx context.Context, userID int64) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status_id <> ?", userID, model.StatusCart).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Detail returns one order, owner-scoped.
func (s *OrderService) Detail(ctx context.Context, userID int64, orderID uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("GuestOrder").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Cancel moves a confirmed order to cancelled. Any other source status is
// rejected without mutation.
func (s *OrderService) Cancel(ctx context.Context, userID int64, orderID uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.StatusID != model.StatusConfirmed {
			return ErrInvalidTransition
		}
		order.StatusID = model.StatusCancelled
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
