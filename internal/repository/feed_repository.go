package repository

import (
	"context"
	"errors"

	"feed-mapper-service/internal/models"

	"gorm.io/gorm"
)

// ErrFeedNotFound is returned when a feed lookup misses
var ErrFeedNotFound = errors.New("feed not found")

// ErrFeedCategoryNotFound is returned when a feed category lookup misses
var ErrFeedCategoryNotFound = errors.New("feed category not found")

// FeedRepository handles database operations for the feed-side taxonomy
type FeedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *gorm.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// GetFeed retrieves a feed by ID
func (r *FeedRepository) GetFeed(ctx context.Context, id uint) (*models.Feed, error) {
	var feed models.Feed
	err := r.db.WithContext(ctx).First(&feed, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedNotFound
		}
		return nil, err
	}
	return &feed, nil
}

// GetCategoryBySource retrieves a feed category by its source identifier
func (r *FeedRepository) GetCategoryBySource(ctx context.Context, feedID uint, sourceID string) (*models.FeedCategory, error) {
	var category models.FeedCategory
	err := r.db.WithContext(ctx).
		Where("feed_id = ? AND source_id = ?", feedID, sourceID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// ListCategories retrieves all categories of a feed
func (r *FeedRepository) ListCategories(ctx context.Context, feedID uint) ([]models.FeedCategory, error) {
	var categories []models.FeedCategory
	err := r.db.WithContext(ctx).
		Where("feed_id = ?", feedID).
		Order("id").
		Find(&categories).Error
	return categories, err
}

// ListAttributes retrieves the attributes of a feed category
func (r *FeedRepository) ListAttributes(ctx context.Context, categoryID uint) ([]models.FeedAttribute, error) {
	var attributes []models.FeedAttribute
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&attributes).Error
	return attributes, err
}

// ListAttributesByName retrieves feed attributes of a category whose name
// matches case-insensitively
func (r *FeedRepository) ListAttributesByName(ctx context.Context, categoryID uint, name string) ([]models.FeedAttribute, error) {
	var attributes []models.FeedAttribute
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND LOWER(name) = LOWER(?)", categoryID, name).
		Order("id").
		Find(&attributes).Error
	return attributes, err
}

// ListValues retrieves the observed values of a feed attribute
func (r *FeedRepository) ListValues(ctx context.Context, attributeID uint) ([]models.FeedAttributeValue, error) {
	var values []models.FeedAttributeValue
	err := r.db.WithContext(ctx).
		Where("attribute_id = ?", attributeID).
		Order("id").
		Find(&values).Error
	return values, err
}
