package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"feed-mapper-service/internal/models"
)

type MockUnitLister struct {
	mock.Mock
}

var _ unitConversionLister = (*MockUnitLister)(nil)

func (m *MockUnitLister) ListConversions(ctx context.Context) ([]models.UnitConversion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UnitConversion), args.Error(1)
}

func TestBuildUnitIndex_Reciprocal(t *testing.T) {
	index := BuildUnitIndex([]models.UnitConversion{
		{FromUnitID: 1, ToUnitID: 2, Factor: 10}, // cm -> mm
	})

	factor, ok := index.Factor(1, 2)
	assert.True(t, ok)
	assert.Equal(t, 10.0, factor)

	reciprocal, ok := index.Factor(2, 1)
	assert.True(t, ok)
	assert.Equal(t, 0.1, reciprocal)

	assert.Equal(t, 2, index.Len())
}

func TestBuildUnitIndex_SkipsZeroFactor(t *testing.T) {
	index := BuildUnitIndex([]models.UnitConversion{
		{FromUnitID: 1, ToUnitID: 2, Factor: 0},
		{FromUnitID: 3, ToUnitID: 4, Factor: 1000},
	})

	_, ok := index.Factor(1, 2)
	assert.False(t, ok)
	_, ok = index.Factor(2, 1)
	assert.False(t, ok)

	factor, ok := index.Factor(3, 4)
	assert.True(t, ok)
	assert.Equal(t, 1000.0, factor)
}

func TestUnitIndex_UnknownPair(t *testing.T) {
	index := BuildUnitIndex(nil)
	_, ok := index.Factor(7, 8)
	assert.False(t, ok)
}

func TestUnitIndex_EntriesSorted(t *testing.T) {
	index := BuildUnitIndex([]models.UnitConversion{
		{FromUnitID: 5, ToUnitID: 1, Factor: 2},
		{FromUnitID: 1, ToUnitID: 2, Factor: 10},
	})

	entries := index.Entries()
	assert.Len(t, entries, 4)
	assert.Equal(t, UnitIndexEntry{FromUnitID: 1, ToUnitID: 2, Factor: 10}, entries[0])
	assert.Equal(t, UnitIndexEntry{FromUnitID: 1, ToUnitID: 5, Factor: 0.5}, entries[1])
	assert.Equal(t, UnitIndexEntry{FromUnitID: 2, ToUnitID: 1, Factor: 0.1}, entries[2])
	assert.Equal(t, UnitIndexEntry{FromUnitID: 5, ToUnitID: 1, Factor: 2}, entries[3])
}

func TestUnitIndexService_GetIndex(t *testing.T) {
	ctx := context.Background()

	mockUnits := new(MockUnitLister)
	mockUnits.On("ListConversions", ctx).Return([]models.UnitConversion{
		{FromUnitID: 1, ToUnitID: 2, Factor: 10},
	}, nil)

	service := NewUnitIndexService(mockUnits)
	index, err := service.GetIndex(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 2, index.Len())
	mockUnits.AssertExpectations(t)
}

func TestUnitIndexService_GetIndex_Error(t *testing.T) {
	ctx := context.Background()

	mockUnits := new(MockUnitLister)
	mockUnits.On("ListConversions", ctx).Return(nil, errors.New("db down"))

	service := NewUnitIndexService(mockUnits)
	index, err := service.GetIndex(ctx)

	assert.Error(t, err)
	assert.Nil(t, index)
}
