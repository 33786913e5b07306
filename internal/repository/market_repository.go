package repository

import (
	"context"
	"errors"

	"feed-mapper-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMarketCategoryNotFound is returned when a marketplace category lookup misses
var ErrMarketCategoryNotFound = errors.New("market category not found")

// ErrMarketAttributeNotFound is returned when a marketplace attribute lookup misses
var ErrMarketAttributeNotFound = errors.New("market attribute not found")

// MarketRepository handles database operations for the marketplace-side taxonomy
type MarketRepository struct {
	db *gorm.DB
}

// NewMarketRepository creates a new market repository
func NewMarketRepository(db *gorm.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

// GetCategory retrieves a marketplace category by ID
func (r *MarketRepository) GetCategory(ctx context.Context, id uint) (*models.MarketCategory, error) {
	var category models.MarketCategory
	err := r.db.WithContext(ctx).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarketCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetAttribute retrieves a marketplace attribute by ID
func (r *MarketRepository) GetAttribute(ctx context.Context, id uint) (*models.MarketAttribute, error) {
	var attribute models.MarketAttribute
	err := r.db.WithContext(ctx).First(&attribute, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarketAttributeNotFound
		}
		return nil, err
	}
	return &attribute, nil
}

// GetAttributeBySource retrieves a marketplace attribute by category and source id
func (r *MarketRepository) GetAttributeBySource(ctx context.Context, categoryID uint, sourceID string) (*models.MarketAttribute, error) {
	var attribute models.MarketAttribute
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND source_id = ?", categoryID, sourceID).
		First(&attribute).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarketAttributeNotFound
		}
		return nil, err
	}
	return &attribute, nil
}

// ListAttributes retrieves all attributes of a marketplace category
func (r *MarketRepository) ListAttributes(ctx context.Context, categoryID uint) ([]models.MarketAttribute, error) {
	var attributes []models.MarketAttribute
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&attributes).Error
	return attributes, err
}

// ListNameMappableAttributes retrieves attributes of a category that carry a
// feed attribute name to auto-map by
func (r *MarketRepository) ListNameMappableAttributes(ctx context.Context, categoryID uint) ([]models.MarketAttribute, error) {
	var attributes []models.MarketAttribute
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND map_feed_attribute_name <> '' AND deleted = false", categoryID).
		Order("id").
		Find(&attributes).Error
	return attributes, err
}

// ListDictionaryValues retrieves the dictionary values of a marketplace attribute.
// Deleted values are included; callers filter by the Deleted flag.
func (r *MarketRepository) ListDictionaryValues(ctx context.Context, attributeID uint) ([]models.MarketAttributeValue, error) {
	var values []models.MarketAttributeValue
	err := r.db.WithContext(ctx).
		Where("attribute_id = ?", attributeID).
		Order("id").
		Find(&values).Error
	return values, err
}

// EnsureAttribute creates a marketplace attribute if the (category, source)
// pair does not exist yet
func (r *MarketRepository) EnsureAttribute(ctx context.Context, attribute *models.MarketAttribute) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_id"}, {Name: "source_id"}},
		DoNothing: true,
	}).Create(attribute).Error
}
