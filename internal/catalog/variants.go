// Package catalog holds the variant combination generator and its
// reconciliation against the stored variant set.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"shopcart/internal/model"
)

// AttributeSelection is one axis of the requested variant matrix: an
// attribute and the chosen values.
type AttributeSelection struct {
	AttributeID uint   `json:"attribute_id" binding:"required"`
	ValueIDs    []uint `json:"value_ids" binding:"required,min=1"`
}

// pair is one (attribute, value) cell of a combination.
type pair struct {
	AttributeID uint
	ValueID     uint
}

// combinations expands the selections into their Cartesian product,
// preserving the request's attribute order. N1×N2×...×Nk results.
func combinations(selections []AttributeSelection) [][]pair {
	combos := [][]pair{{}}
	for _, sel := range selections {
		next := make([][]pair, 0, len(combos)*len(sel.ValueIDs))
		for _, combo := range combos {
			for _, valueID := range sel.ValueIDs {
				extended := make([]pair, len(combo), len(combo)+1)
				copy(extended, combo)
				extended = append(extended, pair{AttributeID: sel.AttributeID, ValueID: valueID})
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}

// BuildSKU derives the deterministic SKU for a combination from the value
// names in combination order. The attribute order of the request is part of
// the contract: reordering attributes produces different SKUs.
func BuildSKU(valueNames []string) string {
	return "SKU-" + strings.Join(valueNames, "-")
}

// Reconciler syncs a product's stored variants with a requested selection
// matrix.
type Reconciler struct {
	db *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db}
}

// Reconcile generates every combination, then: updates variants whose SKU
// already exists, creates missing ones with their attribute links, and
// deletes variants whose SKU no longer appears. Re-running with identical
// input is a no-op apart from the stock/price refresh. The whole pass is one
// transaction.
func (r *Reconciler) Reconcile(ctx context.Context, productID uint, selections []AttributeSelection, stock int, price int64) ([]string, error) {
	var skus []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, productID).Error; err != nil {
			return err
		}

		var existing []model.ProductVariant
		if err := tx.Where("product_id = ?", productID).Find(&existing).Error; err != nil {
			return err
		}
		bySKU := make(map[string]*model.ProductVariant, len(existing))
		for i := range existing {
			bySKU[existing[i].SKU] = &existing[i]
		}

		seen := make(map[string]bool)
		for _, combo := range combinations(selections) {
			names := make([]string, 0, len(combo))
			for _, p := range combo {
				var value model.AttributeValue
				if err := tx.First(&value, p.ValueID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("attribute value %d: %w", p.ValueID, gorm.ErrRecordNotFound)
					}
					return err
				}
				names = append(names, value.Value)
			}
			sku := BuildSKU(names)
			if seen[sku] {
				continue
			}
			seen[sku] = true
			skus = append(skus, sku)

			if variant, ok := bySKU[sku]; ok {
				variant.Stock = stock
				variant.Price = price
				if err := tx.Save(variant).Error; err != nil {
					return err
				}
				continue
			}

			variant := model.ProductVariant{
				ProductID: productID,
				SKU:       sku,
				Stock:     stock,
				Price:     price,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
			for _, p := range combo {
				link := model.VariantAttribute{
					VariantID:   variant.ID,
					AttributeID: p.AttributeID,
					ValueID:     p.ValueID,
				}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
		}

		// Variants absent from the generated set are retired together
		// with their attribute links.
		for i := range existing {
			if seen[existing[i].SKU] {
				continue
			}
			if err := tx.Where("variant_id = ?", existing[i].ID).Delete(&model.VariantAttribute{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skus, nil
}
