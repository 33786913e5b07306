package models

import (
	"time"
)

// AttributeDataType represents the value type a marketplace attribute expects
type AttributeDataType string

const (
	DataTypeString  AttributeDataType = "String"
	DataTypeDecimal AttributeDataType = "Decimal"
	DataTypeInteger AttributeDataType = "Integer"
	DataTypeBoolean AttributeDataType = "Boolean"
	DataTypeURL     AttributeDataType = "URL"
)

// Marketplace represents a destination marketplace whose taxonomy offers are translated into
type Marketplace struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Categories []MarketCategory `gorm:"foreignKey:MarketplaceID" json:"categories,omitempty"`
}

// TableName specifies the table name for Marketplace
func (Marketplace) TableName() string {
	return "marketplaces"
}

// MarketCategory represents a category in the marketplace taxonomy.
// SourceID is the marketplace's own identifier, kept as text because
// marketplaces disagree on identifier shapes.
type MarketCategory struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	MarketplaceID uint   `gorm:"not null;index:idx_market_categories_marketplace;uniqueIndex:uq_market_category_source,priority:1" json:"marketplaceId"`
	SourceID      string `gorm:"type:varchar(100);not null;uniqueIndex:uq_market_category_source,priority:2" json:"sourceId"`
	Name          string `gorm:"type:varchar(500);not null" json:"name"`
	ParentID      *uint  `gorm:"index:idx_market_categories_parent" json:"parentId,omitempty"`

	// Only leaf categories carry attributes and accept offers
	Leaf bool `gorm:"default:false" json:"leaf"`

	// Set when the marketplace drops the category from its tree
	Deleted bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Marketplace *Marketplace      `gorm:"foreignKey:MarketplaceID" json:"marketplace,omitempty"`
	Attributes  []MarketAttribute `gorm:"foreignKey:CategoryID" json:"attributes,omitempty"`
}

// TableName specifies the table name for MarketCategory
func (MarketCategory) TableName() string {
	return "market_categories"
}

// MarketAttribute represents an attribute the marketplace defines for a category
type MarketAttribute struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CategoryID uint   `gorm:"not null;index:idx_market_attributes_category;uniqueIndex:uq_market_attribute_source,priority:1" json:"categoryId"`
	SourceID   string `gorm:"type:varchar(100);not null;uniqueIndex:uq_market_attribute_source,priority:2" json:"sourceId"`
	Name       string `gorm:"type:varchar(500);not null" json:"name"`

	DataType AttributeDataType `gorm:"type:varchar(50);not null;default:'String'" json:"dataType"`

	// Dictionary-backed attributes only accept values from a closed list
	DictionaryID *int64 `json:"dictionaryId,omitempty"`

	Required bool `gorm:"default:false" json:"required"`

	// Operator switch: excluded from translation entirely
	Disabled bool `gorm:"default:false" json:"disabled"`

	// Marketplace removed the attribute from its schema
	Deleted bool `gorm:"default:false" json:"deleted"`

	// Rich-content payloads bypass data-type conversion
	IsRichContent bool `gorm:"default:false" json:"isRichContent"`

	// Operator opt-in for the equal-value auto-mapper
	MapEqualValues bool `gorm:"default:false" json:"mapEqualValues"`

	// When set, attribute mappings are auto-created for feed attributes
	// whose name matches case-insensitively
	MapFeedAttributeName string `gorm:"type:varchar(500)" json:"mapFeedAttributeName,omitempty"`

	// Fallback dictionary value for the single-mapping auto-mapper
	DefaultValueID *uint `json:"defaultValueId,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Category *MarketCategory        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Values   []MarketAttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
}

// TableName specifies the table name for MarketAttribute
func (MarketAttribute) TableName() string {
	return "market_attributes"
}

// MarketAttributeValue represents a dictionary value of a marketplace attribute
type MarketAttributeValue struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AttributeID uint   `gorm:"not null;index:idx_market_values_attribute;uniqueIndex:uq_market_value_source,priority:1" json:"attributeId"`
	SourceID    int64  `gorm:"not null;uniqueIndex:uq_market_value_source,priority:2" json:"sourceId"`
	Value       string `gorm:"type:text;not null" json:"value"`

	// Marketplace-provided annotation and illustration for the value
	Info       string `gorm:"type:text" json:"info,omitempty"`
	PictureURL string `gorm:"type:varchar(1000)" json:"pictureUrl,omitempty"`

	Deleted bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`

	Attribute *MarketAttribute `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
}

// TableName specifies the table name for MarketAttributeValue
func (MarketAttributeValue) TableName() string {
	return "market_attribute_values"
}
