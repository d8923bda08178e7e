package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopcart/internal/catalog"
	"shopcart/internal/model"
)

type reconcileVariantsRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	// Attribute order matters: it is the order value names are joined into
	// the SKU.
	Attributes []catalog.AttributeSelection `json:"attribute" binding:"required,min=1,dive"`
	Stock      int                          `json:"stock" binding:"min=0"`
	Price      int64                        `json:"price" binding:"required,min=1"`
}

func reconcileVariants(reconciler *catalog.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reconcileVariantsRequest
		if !bindJSON(c, &req) {
			return
		}
		skus, err := reconciler.Reconcile(c.Request.Context(), req.ProductID, req.Attributes, req.Stock, req.Price)
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product variants updated", "variants": skus})
	}
}

type variantUpdate struct {
	ID        uint    `json:"id" binding:"required"`
	Stock     *int    `json:"stock"`
	Price     *int64  `json:"price"`
	Thumbnail *string `json:"thumbnail"`
}

type updateVariantsRequest struct {
	Variants []variantUpdate `json:"variants" binding:"required,min=1,dive"`
}

// updateVariants applies per-variant stock/price/thumbnail changes. Unknown
// variant ids are skipped.
func updateVariants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateVariantsRequest
		if !bindJSON(c, &req) {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			for _, upd := range req.Variants {
				var variant model.ProductVariant
				if err := tx.First(&variant, upd.ID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return err
				}
				if upd.Stock != nil {
					variant.Stock = *upd.Stock
				}
				if upd.Price != nil {
					variant.Price = *upd.Price
				}
				if upd.Thumbnail != nil {
					variant.Thumbnail = *upd.Thumbnail
				}
				if err := tx.Save(&variant).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product variants updated"})
	}
}

func deleteVariant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var variant model.ProductVariant
			if err := tx.First(&variant, "id = ?", c.Param("id")).Error; err != nil {
				return err
			}
			if err := tx.Where("variant_id = ?", variant.ID).Delete(&model.VariantAttribute{}).Error; err != nil {
				return err
			}
			return tx.Delete(&variant).Error
		})
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product variant deleted"})
	}
}
