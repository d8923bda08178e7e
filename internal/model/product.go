package model

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog item. Quantity is the product-level stock used when
// the buyer picks no variant; variant stock lives on ProductVariant.
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// Prices are stored in minor units (cents).
	Price      int64  `gorm:"not null" json:"price"`
	PriceOld   int64  `json:"price_old"`
	Quantity   int    `gorm:"not null;default:0" json:"quantity"`
	View       int64  `gorm:"not null;default:0" json:"view"`
	CategoryID *uint  `gorm:"index" json:"category_id"`
	BrandID    *uint  `gorm:"index" json:"brand_id"`
	Promotion  string `gorm:"size:255" json:"promotion"`
	Status     string `gorm:"size:50;default:'active'" json:"status"`

	Images   []ProductImage   `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (Product) TableName() string { return "products" }

// ProductImage keeps a hosted image URL; at most one per product should be
// flagged as thumbnail.
type ProductImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProductID   uint   `gorm:"not null;index" json:"product_id"`
	ImageURL    string `gorm:"size:1024;not null" json:"image_url"`
	IsThumbnail bool   `gorm:"not null;default:false" json:"is_thumbnail"`
}

func (ProductImage) TableName() string { return "product_images" }
