package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopcart/internal/model"
)

// sortableColumns whitelists sort_by values; anything else is ignored.
var sortableColumns = map[string]bool{
	"name":       true,
	"price":      true,
	"view":       true,
	"created_at": true,
}

func listProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.WithContext(c.Request.Context()).
			Model(&model.Product{}).
			Preload("Images").
			Preload("Variants").
			Preload("Variants.Attributes")

		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			q = q.Where("name LIKE ? OR description LIKE ?", like, like)
		}
		if v := c.Query("category_id"); v != "" {
			q = q.Where("category_id = ?", v)
		}
		if v := c.Query("brand_id"); v != "" {
			q = q.Where("brand_id = ?", v)
		}
		if v := c.Query("min_price"); v != "" {
			q = q.Where("price >= ?", v)
		}
		if v := c.Query("max_price"); v != "" {
			q = q.Where("price <= ?", v)
		}
		if v := c.Query("status"); v != "" {
			q = q.Where("status = ?", v)
		}

		sortBy := c.Query("sort_by")
		if sortableColumns[sortBy] {
			order := "desc"
			if c.Query("sort_order") == "asc" {
				order = "asc"
			}
			q = q.Order(sortBy + " " + order)
		}

		var products []model.Product
		if err := q.Find(&products).Error; err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": products})
	}
}

func getProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product model.Product
		err := db.WithContext(c.Request.Context()).
			Preload("Images").
			Preload("Variants").
			Preload("Variants.Attributes").
			First(&product, "id = ?", c.Param("id")).Error
		if err != nil {
			cartError(c, err)
			return
		}
		// Detail views bump the counter without racing other requests.
		db.WithContext(c.Request.Context()).
			Model(&model.Product{}).
			Where("id = ?", product.ID).
			UpdateColumn("view", gorm.Expr("view + 1"))
		product.View++
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": product})
	}
}

type productImageRequest struct {
	ImageURL    string `json:"image_url" binding:"required,url"`
	IsThumbnail bool   `json:"is_thumbnail"`
}

type productRequest struct {
	Name        string                `json:"name" binding:"required,max=255"`
	Description string                `json:"description"`
	Price       int64                 `json:"price" binding:"required,min=1"`
	PriceOld    int64                 `json:"price_old" binding:"omitempty,min=0"`
	Quantity    int                   `json:"quantity" binding:"min=0"`
	CategoryID  *uint                 `json:"category_id"`
	BrandID     *uint                 `json:"brand_id"`
	Promotion   string                `json:"promotion"`
	Status      string                `json:"status"`
	Images      []productImageRequest `json:"images" binding:"omitempty,dive"`
}

func createProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if !bindJSON(c, &req) {
			return
		}
		product := model.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			PriceOld:    req.PriceOld,
			Quantity:    req.Quantity,
			CategoryID:  req.CategoryID,
			BrandID:     req.BrandID,
			Promotion:   req.Promotion,
			Status:      req.Status,
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			for _, img := range req.Images {
				image := model.ProductImage{
					ProductID:   product.ID,
					ImageURL:    img.ImageURL,
					IsThumbnail: img.IsThumbnail,
				}
				if err := tx.Create(&image).Error; err != nil {
					return err
				}
				product.Images = append(product.Images, image)
			}
			return nil
		})
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product created", "data": product})
	}
}

func updateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if !bindJSON(c, &req) {
			return
		}
		var product model.Product
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&product, "id = ?", c.Param("id")).Error; err != nil {
				return err
			}
			product.Name = req.Name
			product.Description = req.Description
			product.Price = req.Price
			product.PriceOld = req.PriceOld
			product.Quantity = req.Quantity
			product.CategoryID = req.CategoryID
			product.BrandID = req.BrandID
			product.Promotion = req.Promotion
			if req.Status != "" {
				product.Status = req.Status
			}
			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			// Images are replaced wholesale when the request carries any.
			if req.Images != nil {
				if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductImage{}).Error; err != nil {
					return err
				}
				product.Images = nil
				for _, img := range req.Images {
					image := model.ProductImage{
						ProductID:   product.ID,
						ImageURL:    img.ImageURL,
						IsThumbnail: img.IsThumbnail,
					}
					if err := tx.Create(&image).Error; err != nil {
						return err
					}
					product.Images = append(product.Images, image)
				}
			}
			return nil
		})
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product updated", "data": product})
	}
}

// deleteProduct soft-deletes the product together with its variants and
// their attribute links, so restore can bring the whole graph back.
func deleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var product model.Product
			if err := tx.Preload("Variants").First(&product, "id = ?", c.Param("id")).Error; err != nil {
				return err
			}
			for _, variant := range product.Variants {
				if err := tx.Where("variant_id = ?", variant.ID).Delete(&model.VariantAttribute{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductVariant{}).Error; err != nil {
				return err
			}
			return tx.Delete(&product).Error
		})
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product deleted"})
	}
}

func restoreProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "not found"})
			return
		}
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var product model.Product
			if err := tx.Unscoped().First(&product, id).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Model(&model.Product{}).
				Where("id = ?", id).
				Update("deleted_at", nil).Error; err != nil {
				return err
			}
			var variants []model.ProductVariant
			if err := tx.Unscoped().Where("product_id = ?", id).Find(&variants).Error; err != nil {
				return err
			}
			for _, variant := range variants {
				if err := tx.Unscoped().Model(&model.ProductVariant{}).
					Where("id = ?", variant.ID).
					Update("deleted_at", nil).Error; err != nil {
					return err
				}
				if err := tx.Unscoped().Model(&model.VariantAttribute{}).
					Where("variant_id = ?", variant.ID).
					Update("deleted_at", nil).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "not found"})
				return
			}
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "product restored"})
	}
}
