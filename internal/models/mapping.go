package models

import (
	"time"
)

// CategoryMapping binds a feed category to a marketplace category.
// All attribute and value mappings hang off this row.
type CategoryMapping struct {
	ID               uint `gorm:"primaryKey" json:"id"`
	FeedCategoryID   uint `gorm:"not null;uniqueIndex:uq_category_mapping,priority:1" json:"feedCategoryId"`
	MarketCategoryID uint `gorm:"not null;uniqueIndex:uq_category_mapping,priority:2;index:idx_category_mappings_market" json:"marketCategoryId"`

	Deleted bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	FeedCategory   *FeedCategory   `gorm:"foreignKey:FeedCategoryID" json:"feedCategory,omitempty"`
	MarketCategory *MarketCategory `gorm:"foreignKey:MarketCategoryID" json:"marketCategory,omitempty"`
}

// TableName specifies the table name for CategoryMapping
func (CategoryMapping) TableName() string {
	return "category_mappings"
}

// AttributeMapping binds a feed attribute to a marketplace attribute within
// one category mapping. The optional unit pair requests numeric conversion
// of feed values.
type AttributeMapping struct {
	ID                uint `gorm:"primaryKey" json:"id"`
	CategoryMappingID uint `gorm:"not null;index:idx_attribute_mappings_category;uniqueIndex:uq_attribute_mapping,priority:1" json:"categoryMappingId"`
	FeedAttributeID   uint `gorm:"not null;uniqueIndex:uq_attribute_mapping,priority:2" json:"feedAttributeId"`
	MarketAttributeID uint `gorm:"not null;uniqueIndex:uq_attribute_mapping,priority:3" json:"marketAttributeId"`

	FromUnitID *uint `json:"fromUnitId,omitempty"`
	ToUnitID   *uint `json:"toUnitId,omitempty"`

	// Pass raw values through without data-type coercion
	IgnoreDataType bool `gorm:"default:false" json:"ignoreDataType"`

	Deleted bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	CategoryMapping *CategoryMapping `gorm:"foreignKey:CategoryMappingID" json:"categoryMapping,omitempty"`
	FeedAttribute   *FeedAttribute   `gorm:"foreignKey:FeedAttributeID" json:"feedAttribute,omitempty"`
	MarketAttribute *MarketAttribute `gorm:"foreignKey:MarketAttributeID" json:"marketAttribute,omitempty"`
}

// TableName specifies the table name for AttributeMapping
func (AttributeMapping) TableName() string {
	return "attribute_mappings"
}

// ValueMapping binds a raw feed value to a marketplace dictionary value within
// one attribute mapping. MarketValueID is nil for free-text confirmations.
type ValueMapping struct {
	ID                 uint  `gorm:"primaryKey" json:"id"`
	AttributeMappingID uint  `gorm:"not null;index:idx_value_mappings_attribute;uniqueIndex:uq_value_mapping,priority:1" json:"attributeMappingId"`
	FeedValueID        uint  `gorm:"not null;uniqueIndex:uq_value_mapping,priority:2" json:"feedValueId"`
	MarketValueID      *uint `gorm:"uniqueIndex:uq_value_mapping,priority:3" json:"marketValueId,omitempty"`

	Deleted bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	AttributeMapping *AttributeMapping     `gorm:"foreignKey:AttributeMappingID" json:"attributeMapping,omitempty"`
	FeedValue        *FeedAttributeValue   `gorm:"foreignKey:FeedValueID" json:"feedValue,omitempty"`
	MarketValue      *MarketAttributeValue `gorm:"foreignKey:MarketValueID" json:"marketValue,omitempty"`
}

// TableName specifies the table name for ValueMapping
func (ValueMapping) TableName() string {
	return "value_mappings"
}

// MappingSyncState tracks the last translation run per feed and marketplace
type MappingSyncState struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	FeedID        uint `gorm:"not null;uniqueIndex:uq_mapping_sync,priority:1" json:"feedId"`
	MarketplaceID uint `gorm:"not null;uniqueIndex:uq_mapping_sync,priority:2" json:"marketplaceId"`

	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
	LastError  string     `gorm:"type:text" json:"lastError,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for MappingSyncState
func (MappingSyncState) TableName() string {
	return "mapping_sync_states"
}
