package model

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant is one purchasable configuration of a product. SKU is
// derived from the attribute-value combination by the catalog reconciler and
// is unique per product.
type ProductVariant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProductID uint   `gorm:"not null;index" json:"product_id"`
	SKU       string `gorm:"size:255;not null;index" json:"sku"`
	Stock     int    `gorm:"not null;default:0" json:"stock"`
	Price     int64  `gorm:"not null" json:"price"`
	Thumbnail string `gorm:"size:1024" json:"thumbnail"`

	Attributes []VariantAttribute `gorm:"foreignKey:VariantID" json:"attributes,omitempty"`
}

func (ProductVariant) TableName() string { return "product_variants" }

// Attribute is a variant axis, e.g. Color or Size.
type Attribute struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string `gorm:"size:255;not null" json:"name"`

	Values []AttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
}

func (Attribute) TableName() string { return "attributes" }

// AttributeValue is one selectable value of an attribute, e.g. Red. Value is
// the human-readable name that ends up inside generated SKUs.
type AttributeValue struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AttributeID uint   `gorm:"not null;index" json:"attribute_id"`
	Value       string `gorm:"size:255;not null" json:"value"`
}

func (AttributeValue) TableName() string { return "attribute_values" }

// VariantAttribute links a variant to one (attribute, value) pair. A variant
// carries at most one value per attribute.
type VariantAttribute struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	VariantID   uint `gorm:"not null;index;uniqueIndex:idx_variant_attribute" json:"variant_id"`
	AttributeID uint `gorm:"not null;uniqueIndex:idx_variant_attribute" json:"attribute_id"`
	ValueID     uint `gorm:"not null" json:"value_id"`
}

func (VariantAttribute) TableName() string { return "variant_attributes" }
