package services

import (
	"context"
	"sort"

	"feed-mapper-service/internal/models"
)

type unitPair struct {
	from uint
	to   uint
}

// UnitIndex is a symmetric lookup of conversion factors between unit pairs.
// Each declared conversion also yields the reciprocal in the opposite
// direction, so callers never have to care which direction was declared.
type UnitIndex struct {
	factors map[unitPair]float64
}

// BuildUnitIndex builds the conversion index from declared conversions.
// Conversions with a zero factor are skipped: they cannot produce a usable
// reciprocal and a declared factor of zero is always operator error.
func BuildUnitIndex(conversions []models.UnitConversion) *UnitIndex {
	index := &UnitIndex{factors: make(map[unitPair]float64, len(conversions)*2)}
	for _, c := range conversions {
		if c.Factor == 0 {
			continue
		}
		index.factors[unitPair{from: c.FromUnitID, to: c.ToUnitID}] = c.Factor
		index.factors[unitPair{from: c.ToUnitID, to: c.FromUnitID}] = 1 / c.Factor
	}
	return index
}

// Factor returns the multiplier that converts a value from one unit to
// another, and whether the pair is known
func (ix *UnitIndex) Factor(fromUnitID, toUnitID uint) (float64, bool) {
	factor, ok := ix.factors[unitPair{from: fromUnitID, to: toUnitID}]
	return factor, ok
}

// Len returns the number of directed pairs in the index
func (ix *UnitIndex) Len() int {
	return len(ix.factors)
}

// UnitIndexEntry is one directed conversion in serialized form
type UnitIndexEntry struct {
	FromUnitID uint    `json:"fromUnitId"`
	ToUnitID   uint    `json:"toUnitId"`
	Factor     float64 `json:"factor"`
}

// Entries returns the index as a sorted slice for API responses
func (ix *UnitIndex) Entries() []UnitIndexEntry {
	entries := make([]UnitIndexEntry, 0, len(ix.factors))
	for pair, factor := range ix.factors {
		entries = append(entries, UnitIndexEntry{
			FromUnitID: pair.from,
			ToUnitID:   pair.to,
			Factor:     factor,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FromUnitID != entries[j].FromUnitID {
			return entries[i].FromUnitID < entries[j].FromUnitID
		}
		return entries[i].ToUnitID < entries[j].ToUnitID
	})
	return entries
}

// unitConversionLister is the slice of the unit repository the service needs
type unitConversionLister interface {
	ListConversions(ctx context.Context) ([]models.UnitConversion, error)
}

// UnitIndexService loads declared conversions and builds the index
type UnitIndexService struct {
	units unitConversionLister
}

// NewUnitIndexService creates a new unit index service
func NewUnitIndexService(units unitConversionLister) *UnitIndexService {
	return &UnitIndexService{units: units}
}

// GetIndex loads all conversions and builds a fresh index
func (s *UnitIndexService) GetIndex(ctx context.Context) (*UnitIndex, error) {
	conversions, err := s.units.ListConversions(ctx)
	if err != nil {
		return nil, err
	}
	return BuildUnitIndex(conversions), nil
}
