package repository

import (
	"context"
	"errors"

	"feed-mapper-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCategoryMappingNotFound is returned when a category mapping lookup misses
var ErrCategoryMappingNotFound = errors.New("category mapping not found")

// ErrAttributeMappingNotFound is returned when an attribute mapping lookup misses
var ErrAttributeMappingNotFound = errors.New("attribute mapping not found")

// MappingRepository handles database operations for the mapping graph
type MappingRepository struct {
	db *gorm.DB
}

// NewMappingRepository creates a new mapping repository
func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// GetCategoryMapping retrieves a category mapping with both category sides loaded
func (r *MappingRepository) GetCategoryMapping(ctx context.Context, id uint) (*models.CategoryMapping, error) {
	var mapping models.CategoryMapping
	err := r.db.WithContext(ctx).
		Preload("FeedCategory").
		Preload("MarketCategory").
		First(&mapping, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryMappingNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

// ListCategoryMappingsByFeed retrieves all category mappings of a feed
func (r *MappingRepository) ListCategoryMappingsByFeed(ctx context.Context, feedID uint) ([]models.CategoryMapping, error) {
	var mappings []models.CategoryMapping
	err := r.db.WithContext(ctx).
		Joins("JOIN feed_categories ON feed_categories.id = category_mappings.feed_category_id").
		Where("feed_categories.feed_id = ?", feedID).
		Preload("FeedCategory").
		Preload("MarketCategory").
		Order("category_mappings.id").
		Find(&mappings).Error
	return mappings, err
}

// GetAttributeMapping retrieves an attribute mapping with both attribute sides loaded
func (r *MappingRepository) GetAttributeMapping(ctx context.Context, id uint) (*models.AttributeMapping, error) {
	var mapping models.AttributeMapping
	err := r.db.WithContext(ctx).
		Preload("FeedAttribute").
		Preload("MarketAttribute").
		First(&mapping, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeMappingNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

// ListAttributeMappings retrieves the attribute mappings of a category mapping
// with both attribute sides loaded
func (r *MappingRepository) ListAttributeMappings(ctx context.Context, categoryMappingID uint) ([]models.AttributeMapping, error) {
	var mappings []models.AttributeMapping
	err := r.db.WithContext(ctx).
		Where("category_mapping_id = ?", categoryMappingID).
		Preload("FeedAttribute").
		Preload("MarketAttribute").
		Order("id").
		Find(&mappings).Error
	return mappings, err
}

// ListAttributeMappingsByFeed retrieves all attribute mappings across the
// category mappings of a feed
func (r *MappingRepository) ListAttributeMappingsByFeed(ctx context.Context, feedID uint) ([]models.AttributeMapping, error) {
	var mappings []models.AttributeMapping
	err := r.db.WithContext(ctx).
		Joins("JOIN category_mappings ON category_mappings.id = attribute_mappings.category_mapping_id").
		Joins("JOIN feed_categories ON feed_categories.id = category_mappings.feed_category_id").
		Where("feed_categories.feed_id = ?", feedID).
		Preload("FeedAttribute").
		Preload("MarketAttribute").
		Order("attribute_mappings.id").
		Find(&mappings).Error
	return mappings, err
}

// ListValueMappings retrieves the value mappings of an attribute mapping
// with both value sides loaded
func (r *MappingRepository) ListValueMappings(ctx context.Context, attributeMappingID uint) ([]models.ValueMapping, error) {
	var mappings []models.ValueMapping
	err := r.db.WithContext(ctx).
		Where("attribute_mapping_id = ?", attributeMappingID).
		Preload("FeedValue").
		Preload("MarketValue").
		Order("id").
		Find(&mappings).Error
	return mappings, err
}

// ListValueMappingsForCategory retrieves all value mappings under a category
// mapping in one query
func (r *MappingRepository) ListValueMappingsForCategory(ctx context.Context, categoryMappingID uint) ([]models.ValueMapping, error) {
	var mappings []models.ValueMapping
	err := r.db.WithContext(ctx).
		Joins("JOIN attribute_mappings ON attribute_mappings.id = value_mappings.attribute_mapping_id").
		Where("attribute_mappings.category_mapping_id = ?", categoryMappingID).
		Preload("FeedValue").
		Preload("MarketValue").
		Order("value_mappings.id").
		Find(&mappings).Error
	return mappings, err
}

// CreateAttributeMapping creates an attribute mapping; a duplicate on the
// natural key is a no-op
func (r *MappingRepository) CreateAttributeMapping(ctx context.Context, mapping *models.AttributeMapping) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_mapping_id"}, {Name: "feed_attribute_id"}, {Name: "market_attribute_id"}},
		DoNothing: true,
	}).Create(mapping).Error
}

// CreateValueMapping creates a value mapping; a duplicate on the natural key
// is a no-op
func (r *MappingRepository) CreateValueMapping(ctx context.Context, mapping *models.ValueMapping) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attribute_mapping_id"}, {Name: "feed_value_id"}, {Name: "market_value_id"}},
		DoNothing: true,
	}).Create(mapping).Error
}

// CreateValueMappings creates a batch of value mappings in one transaction.
// Duplicates on the natural key are skipped.
func (r *MappingRepository) CreateValueMappings(ctx context.Context, mappings []models.ValueMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attribute_mapping_id"}, {Name: "feed_value_id"}, {Name: "market_value_id"}},
			DoNothing: true,
		}).Create(&mappings).Error
	})
}

// ListMappedFeedValueIDs retrieves the feed value ids already mapped under an
// attribute mapping
func (r *MappingRepository) ListMappedFeedValueIDs(ctx context.Context, attributeMappingID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.ValueMapping{}).
		Where("attribute_mapping_id = ?", attributeMappingID).
		Pluck("feed_value_id", &ids).Error
	return ids, err
}

// GetSyncState retrieves the sync bookkeeping row for a feed and marketplace
func (r *MappingRepository) GetSyncState(ctx context.Context, feedID, marketplaceID uint) (*models.MappingSyncState, error) {
	var state models.MappingSyncState
	err := r.db.WithContext(ctx).
		Where("feed_id = ? AND marketplace_id = ?", feedID, marketplaceID).
		First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// UpsertSyncState creates or updates the sync bookkeeping row
func (r *MappingRepository) UpsertSyncState(ctx context.Context, state *models.MappingSyncState) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feed_id"}, {Name: "marketplace_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_sync_at", "last_error", "updated_at"}),
	}).Create(state).Error
}
