package cart

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"shopcart/internal/model"
)

// PersistentStore keeps an authenticated user's cart as the single open
// order (status 1) plus its order items. Every mutation runs inside one
// transaction so concurrent requests cannot lose updates to the order total.
type PersistentStore struct {
	db *gorm.DB
}

func NewPersistentStore(db *gorm.DB) *PersistentStore {
	return &PersistentStore{db: db}
}

// openOrder finds the caller's open cart order.
func (s *PersistentStore) openOrder(tx *gorm.DB, userID int64) (*model.Order, error) {
	var order model.Order
	err := tx.Where("user_id = ? AND status_id = ?", userID, model.StatusCart).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	return &order, nil
}

func (s *PersistentStore) Add(ctx context.Context, id Identity, productID uint, variantID *uint, quantity int) (*Cart, error) {
	if !id.Authenticated() {
		return nil, ErrNotFound
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, variant, err := loadProductVariant(tx, productID, variantID)
		if err != nil {
			return err
		}
		if quantity > availableStock(product, variant) {
			return ErrInsufficientStock
		}

		// Lazily create the open order on first add.
		var order model.Order
		err = tx.Where("user_id = ? AND status_id = ?", *id.UserID, model.StatusCart).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			order = model.Order{UserID: id.UserID, StatusID: model.StatusCart}
			err = tx.Create(&order).Error
		}
		if err != nil {
			return err
		}

		price := unitPrice(product, variant)

		var item model.OrderItem
		q := tx.Where("order_id = ? AND product_id = ?", order.ID, productID)
		if variantID == nil {
			q = q.Where("variant_id IS NULL")
		} else {
			q = q.Where("variant_id = ?", *variantID)
		}
		err = q.First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = model.OrderItem{
				OrderID:   order.ID,
				ProductID: productID,
				VariantID: variantID,
				Quantity:  quantity,
				Price:     price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// The unit price is re-snapshotted to the current catalog
			// price on every add; existing quantity keeps the old total
			// contribution.
			item.Quantity += quantity
			item.Price = price
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}

		order.TotalAmount += price * int64(quantity)
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, id)
}

func (s *PersistentStore) View(ctx context.Context, id Identity) (*Cart, error) {
	if !id.Authenticated() {
		return nil, ErrEmptyCart
	}
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status_id = ?", *id.UserID, model.StatusCart).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}

	out := &Cart{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Lines:       make([]Line, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		line := Line{
			ID:        strconv.FormatUint(uint64(item.ID), 10),
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		var product model.Product
		if err := s.db.WithContext(ctx).Preload("Images").First(&product, item.ProductID).Error; err == nil {
			line.Product = &product
		}
		if item.VariantID != nil {
			var variant model.ProductVariant
			if err := s.db.WithContext(ctx).First(&variant, *item.VariantID).Error; err == nil {
				line.Variant = &variant
			}
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}

func (s *PersistentStore) UpdateItem(ctx context.Context, id Identity, itemID string, quantity int) (*Cart, error) {
	if !id.Authenticated() {
		return nil, ErrEmptyCart
	}
	numericID, err := strconv.ParseUint(itemID, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.openOrder(tx, *id.UserID)
		if err != nil {
			return err
		}
		var item model.OrderItem
		err = tx.Where("id = ? AND order_id = ?", numericID, order.ID).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		product, variant, err := loadProductVariant(tx, item.ProductID, item.VariantID)
		if err != nil {
			return err
		}
		if quantity > availableStock(product, variant) {
			return ErrInsufficientStock
		}

		order.TotalAmount -= item.Price * int64(item.Quantity)
		item.Quantity = quantity
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		order.TotalAmount += item.Price * int64(item.Quantity)
		return tx.Save(order).Error
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, id)
}

func (s *PersistentStore) RemoveItem(ctx context.Context, id Identity, itemID string) (*Cart, error) {
	if !id.Authenticated() {
		return nil, ErrEmptyCart
	}
	numericID, err := strconv.ParseUint(itemID, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.openOrder(tx, *id.UserID)
		if err != nil {
			return err
		}
		var item model.OrderItem
		err = tx.Where("id = ? AND order_id = ?", numericID, order.ID).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		order.TotalAmount -= item.Price * int64(item.Quantity)
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return tx.Save(order).Error
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, id)
}

func (s *PersistentStore) Clear(ctx context.Context, id Identity) error {
	if !id.Authenticated() {
		return ErrEmptyCart
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.openOrder(tx, *id.UserID)
		if err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		order.TotalAmount = 0
		return tx.Save(order).Error
	})
}
