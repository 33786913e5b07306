package models

import (
	"time"
)

// Unit represents a measurement unit referenced by attribute mappings
type Unit struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for Unit
func (Unit) TableName() string {
	return "units"
}

// UnitConversion declares one direction of a conversion; the reverse
// direction is derived as the reciprocal at index build time.
type UnitConversion struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	FromUnitID uint    `gorm:"not null;uniqueIndex:uq_unit_conversion,priority:1" json:"fromUnitId"`
	ToUnitID   uint    `gorm:"not null;uniqueIndex:uq_unit_conversion,priority:2" json:"toUnitId"`
	Factor     float64 `gorm:"not null" json:"factor"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`

	FromUnit *Unit `gorm:"foreignKey:FromUnitID" json:"fromUnit,omitempty"`
	ToUnit   *Unit `gorm:"foreignKey:ToUnitID" json:"toUnit,omitempty"`
}

// TableName specifies the table name for UnitConversion
func (UnitConversion) TableName() string {
	return "unit_conversions"
}
