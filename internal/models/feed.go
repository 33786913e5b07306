package models

import (
	"time"
)

// FeedStatus represents the lifecycle state of a product feed
type FeedStatus string

const (
	FeedActive   FeedStatus = "ACTIVE"
	FeedPaused   FeedStatus = "PAUSED"
	FeedArchived FeedStatus = "ARCHIVED"
)

// Feed represents a supplier product catalog in the source taxonomy
type Feed struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`
	URL  string `gorm:"type:varchar(500)" json:"url,omitempty"`

	Status FeedStatus `gorm:"type:varchar(50);not null;default:'ACTIVE';index:idx_feeds_status" json:"status"`

	// Last successful catalog download
	LastFetchedAt *time.Time `json:"lastFetchedAt,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Categories []FeedCategory `gorm:"foreignKey:FeedID" json:"categories,omitempty"`
}

// TableName specifies the table name for Feed
func (Feed) TableName() string {
	return "feeds"
}

// FeedCategory represents a category node in the feed taxonomy.
// SourceID is the category identifier as it appears in the feed file.
type FeedCategory struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FeedID   uint   `gorm:"not null;index:idx_feed_categories_feed;uniqueIndex:uq_feed_category_source,priority:1" json:"feedId"`
	SourceID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_feed_category_source,priority:2" json:"sourceId"`
	Name     string `gorm:"type:varchar(500);not null" json:"name"`
	ParentID *uint  `gorm:"index:idx_feed_categories_parent" json:"parentId,omitempty"`

	// Set when the category disappears from the feed but mappings still reference it
	Deleted bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Feed       *Feed           `gorm:"foreignKey:FeedID" json:"feed,omitempty"`
	Attributes []FeedAttribute `gorm:"foreignKey:CategoryID" json:"attributes,omitempty"`
}

// TableName specifies the table name for FeedCategory
func (FeedCategory) TableName() string {
	return "feed_categories"
}

// FeedAttribute represents an attribute (offer param name) observed in a feed category
type FeedAttribute struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CategoryID uint   `gorm:"not null;index:idx_feed_attributes_category;uniqueIndex:uq_feed_attribute_name,priority:1" json:"categoryId"`
	Name       string `gorm:"type:varchar(500);not null;uniqueIndex:uq_feed_attribute_name,priority:2" json:"name"`

	// Unit symbol as written in the feed, when the param carries one
	Unit string `gorm:"type:varchar(100)" json:"unit,omitempty"`

	Deleted bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Category *FeedCategory        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Values   []FeedAttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
}

// TableName specifies the table name for FeedAttribute
func (FeedAttribute) TableName() string {
	return "feed_attributes"
}

// FeedAttributeValue represents a distinct raw value observed for a feed attribute
type FeedAttributeValue struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AttributeID uint   `gorm:"not null;index:idx_feed_values_attribute;uniqueIndex:uq_feed_value,priority:1" json:"attributeId"`
	Value       string `gorm:"type:text;not null;uniqueIndex:uq_feed_value,priority:2" json:"value"`

	Deleted bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`

	Attribute *FeedAttribute `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
}

// TableName specifies the table name for FeedAttributeValue
func (FeedAttributeValue) TableName() string {
	return "feed_attribute_values"
}
