package repository

import (
	"context"
	"errors"

	"feed-mapper-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnitNotFound is returned when a unit lookup misses
var ErrUnitNotFound = errors.New("unit not found")

// UnitRepository handles database operations for units and conversions
type UnitRepository struct {
	db *gorm.DB
}

// NewUnitRepository creates a new unit repository
func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// ListConversions retrieves all declared unit conversions
func (r *UnitRepository) ListConversions(ctx context.Context) ([]models.UnitConversion, error) {
	var conversions []models.UnitConversion
	err := r.db.WithContext(ctx).Order("id").Find(&conversions).Error
	return conversions, err
}

// GetUnitByCode retrieves a unit by its symbol
func (r *UnitRepository) GetUnitByCode(ctx context.Context, code string) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// UpsertConversion creates or updates a conversion factor for a unit pair
func (r *UnitRepository) UpsertConversion(ctx context.Context, conversion *models.UnitConversion) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_unit_id"}, {Name: "to_unit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"factor"}),
	}).Create(conversion).Error
}
