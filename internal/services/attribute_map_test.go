package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"feed-mapper-service/internal/models"
)

type MockAttributeMapSource struct {
	mock.Mock
}

var _ attributeMapSource = (*MockAttributeMapSource)(nil)

func (m *MockAttributeMapSource) GetCategoryMapping(ctx context.Context, id uint) (*models.CategoryMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CategoryMapping), args.Error(1)
}

func (m *MockAttributeMapSource) ListAttributeMappings(ctx context.Context, categoryMappingID uint) ([]models.AttributeMapping, error) {
	args := m.Called(ctx, categoryMappingID)
	return args.Get(0).([]models.AttributeMapping), args.Error(1)
}

func (m *MockAttributeMapSource) ListValueMappingsForCategory(ctx context.Context, categoryMappingID uint) ([]models.ValueMapping, error) {
	args := m.Called(ctx, categoryMappingID)
	return args.Get(0).([]models.ValueMapping), args.Error(1)
}

func dictID(v int64) *int64 { return &v }

func colorMapping(id uint, market *models.MarketAttribute) models.AttributeMapping {
	return models.AttributeMapping{
		ID:              id,
		FeedAttribute:   &models.FeedAttribute{ID: 10, Name: "Цвет"},
		MarketAttribute: market,
	}
}

func TestBuildAttributeMap_DictionaryAttribute(t *testing.T) {
	market := &models.MarketAttribute{
		ID:           20,
		SourceID:     "4389",
		Name:         "Цвет товара",
		DataType:     models.DataTypeString,
		DictionaryID: dictID(7),
	}
	mappings := []models.AttributeMapping{colorMapping(1, market)}
	valueMappings := []models.ValueMapping{
		{
			AttributeMappingID: 1,
			FeedValue:          &models.FeedAttributeValue{ID: 100, Value: "красный"},
			MarketValue:        &models.MarketAttributeValue{ID: 200, SourceID: 555, Value: "Красный"},
		},
	}

	attributeMap := BuildAttributeMap(mappings, valueMappings)

	entries, ok := attributeMap["ЦВЕТ"]
	assert.True(t, ok)
	entry := entries[1]
	assert.Equal(t, "4389", entry.SourceID)
	assert.Equal(t, int64(7), entry.DictionaryID)

	mapped := entry.Values["КРАСНЫЙ"]
	assert.Len(t, mapped, 1)
	assert.Equal(t, "Красный", mapped[0].Value)
	assert.Equal(t, int64(555), mapped[0].DictionaryValueID)
}

func TestBuildAttributeMap_DisabledAttributeExcluded(t *testing.T) {
	market := &models.MarketAttribute{ID: 20, SourceID: "4389", Disabled: true}
	attributeMap := BuildAttributeMap([]models.AttributeMapping{colorMapping(1, market)}, nil)
	assert.Empty(t, attributeMap)
}

func TestBuildAttributeMap_DeletedAttributeKeptFlagged(t *testing.T) {
	market := &models.MarketAttribute{ID: 20, SourceID: "4389", Deleted: true}
	attributeMap := BuildAttributeMap([]models.AttributeMapping{colorMapping(1, market)}, nil)

	entry := attributeMap["ЦВЕТ"][1]
	assert.True(t, entry.Deleted)
}

func TestBuildAttributeMap_FanOut(t *testing.T) {
	first := &models.MarketAttribute{ID: 20, SourceID: "4389"}
	second := &models.MarketAttribute{ID: 21, SourceID: "10096"}
	mappings := []models.AttributeMapping{
		colorMapping(1, first),
		colorMapping(2, second),
	}

	attributeMap := BuildAttributeMap(mappings, nil)

	assert.Len(t, attributeMap["ЦВЕТ"], 2)
	assert.Equal(t, "4389", attributeMap["ЦВЕТ"][1].SourceID)
	assert.Equal(t, "10096", attributeMap["ЦВЕТ"][2].SourceID)
}

func TestBuildAttributeMap_DeletedValueMappingSkipped(t *testing.T) {
	market := &models.MarketAttribute{ID: 20, SourceID: "4389", DictionaryID: dictID(7)}
	mappings := []models.AttributeMapping{colorMapping(1, market)}
	valueMappings := []models.ValueMapping{
		{
			AttributeMappingID: 1,
			Deleted:            true,
			FeedValue:          &models.FeedAttributeValue{ID: 100, Value: "красный"},
			MarketValue:        &models.MarketAttributeValue{ID: 200, SourceID: 555, Value: "Красный"},
		},
	}

	attributeMap := BuildAttributeMap(mappings, valueMappings)
	assert.Empty(t, attributeMap["ЦВЕТ"][1].Values)
}

func TestBuildAttributeMap_FreeTextConfirmation(t *testing.T) {
	market := &models.MarketAttribute{ID: 20, SourceID: "4389", DictionaryID: dictID(7)}
	mappings := []models.AttributeMapping{colorMapping(1, market)}
	valueMappings := []models.ValueMapping{
		{
			AttributeMappingID: 1,
			FeedValue:          &models.FeedAttributeValue{ID: 100, Value: "вишнёвый"},
		},
	}

	attributeMap := BuildAttributeMap(mappings, valueMappings)

	mapped := attributeMap["ЦВЕТ"][1].Values[NormalizeValue("вишнёвый")]
	assert.Len(t, mapped, 1)
	assert.Equal(t, "вишнёвый", mapped[0].Value)
	assert.Equal(t, int64(0), mapped[0].DictionaryValueID)
}

func TestBuildAttributeMap_SkipsMappingsWithoutSides(t *testing.T) {
	mappings := []models.AttributeMapping{
		{ID: 1, FeedAttribute: &models.FeedAttribute{Name: "Цвет"}},
		{ID: 2, MarketAttribute: &models.MarketAttribute{SourceID: "4389"}},
	}
	attributeMap := BuildAttributeMap(mappings, nil)
	assert.Empty(t, attributeMap)
}

func TestAttributeMapService_NoRedisBuildsFromStore(t *testing.T) {
	ctx := context.Background()

	mockSource := new(MockAttributeMapSource)
	mockSource.On("GetCategoryMapping", ctx, uint(5)).Return(&models.CategoryMapping{ID: 5}, nil)
	mockSource.On("ListAttributeMappings", ctx, uint(5)).Return([]models.AttributeMapping{
		colorMapping(1, &models.MarketAttribute{ID: 20, SourceID: "4389"}),
	}, nil)
	mockSource.On("ListValueMappingsForCategory", ctx, uint(5)).Return([]models.ValueMapping{}, nil)

	service := NewAttributeMapService(mockSource, nil, logrus.New())
	attributeMap, err := service.GetAttributeMap(ctx, 5)

	assert.NoError(t, err)
	assert.Contains(t, attributeMap, "ЦВЕТ")
	mockSource.AssertExpectations(t)
}
