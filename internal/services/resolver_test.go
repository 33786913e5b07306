package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"feed-mapper-service/internal/models"
)

func emptyUnitIndex() *UnitIndex {
	return BuildUnitIndex(nil)
}

func TestResolveValues_DictionaryHit(t *testing.T) {
	attributeMap := AttributeMap{
		"ЦВЕТ": {
			1: {
				SourceID:     "4389",
				DictionaryID: 7,
				Values: map[string][]ValueMapEntry{
					"КРАСНЫЙ": {{Value: "Красный", DictionaryValueID: 555}},
				},
			},
		},
	}

	result := ResolveValues(attributeMap, emptyUnitIndex(), []ParamValues{
		{Name: "ЦВЕТ", Values: []string{"красный"}},
	})

	values := result.Values["ЦВЕТ"]
	assert.Len(t, values, 1)
	assert.Equal(t, "Красный", values[0].Value)
	assert.Equal(t, int64(555), values[0].DictionaryValueID)
	assert.Equal(t, "4389", values[0].AttributeSourceID)
	assert.Equal(t, []string{"ЦВЕТ"}, result.Order)
}

func TestResolveValues_UnmappedAttribute(t *testing.T) {
	result := ResolveValues(AttributeMap{}, emptyUnitIndex(), []ParamValues{
		{Name: "МАТЕРИАЛ", Values: []string{"хлопок"}},
	})

	assert.Equal(t, []string{"МАТЕРИАЛ"}, result.UnmappedAttributes)
	assert.Empty(t, result.Values)
}

func TestResolveValues_UnmappedValue(t *testing.T) {
	attributeMap := AttributeMap{
		"ЦВЕТ": {
			1: {
				SourceID:     "4389",
				DictionaryID: 7,
				Values:       map[string][]ValueMapEntry{},
			},
		},
	}

	result := ResolveValues(attributeMap, emptyUnitIndex(), []ParamValues{
		{Name: "ЦВЕТ", Values: []string{"фуксия"}},
	})

	assert.Equal(t, []string{"4389"}, result.UnmappedValueAttributes)
	assert.Empty(t, result.Values)
}

func TestResolveValues_EmptyValue(t *testing.T) {
	attributeMap := AttributeMap{
		"ЦВЕТ": {
			1: {SourceID: "4389"},
		},
	}

	result := ResolveValues(attributeMap, emptyUnitIndex(), []ParamValues{
		{Name: "ЦВЕТ", Values: []string{""}},
	})

	assert.Equal(t, []string{"4389"}, result.EmptyValueAttributes)
}

func TestResolveValues_DeletedMappingSkipped(t *testing.T) {
	attributeMap := AttributeMap{
		"ЦВЕТ": {
			1: {SourceID: "4389", Deleted: true},
		},
	}

	result := ResolveValues(attributeMap, emptyUnitIndex(), []ParamValues{
		{Name: "ЦВЕТ", Values: []string{"красный"}},
	})

	assert.Empty(t, result.Values)
	assert.Empty(t, result.UnmappedValueAttributes)
}

func TestResolveValues_DeletedDictionaryValue(t *testing.T) {
	attributeMap := AttributeMap{
		"ЦВЕТ": {
			1: {
				SourceID:     "4389",
				DictionaryID: 7,
				Values: map[string][]ValueMapEntry{
					"КРАСНЫЙ": {{Value: "Красный", DictionaryValueID: 555, Deleted: true}},
				},
			},
		},
	}

	result := ResolveValues(attributeMap, emptyUnitIndex(), []ParamValues{
		{Name: "ЦВЕТ", Values: []string{"красный"}},
	})

	assert.Empty(t, result.Values)
	assert.Equal(t, []string{"4389"}, result.MappedWithDeletedValue)
}

func TestResolveValues_UnitConversion(t *testing.T) {
	unitIndex := BuildUnitIndex([]models.UnitConversion{
		{FromUnitID: 1, ToUnitID: 2, Factor: 10}, // cm -> mm
	})
	attributeMap := AttributeMap{
		"ДЛИНА": {
			1: {SourceID: "9454", DataType: models.DataTypeDecimal, FromUnitID: 1, ToUnitID: 2},
		},
	}

	result := ResolveValues(attributeMap, unitIndex, []ParamValues{
		{Name: "ДЛИНА", Values: []string{"12,5"}},
	})

	values := result.Values["ДЛИНА"]
	assert.Len(t, values, 1)
	assert.Equal(t, "125", values[0].Value)
}

func TestResolveValues_UnitConversionParseFailure(t *testing.T) {
	unitIndex := BuildUnitIndex([]models.UnitConversion{
		{FromUnitID: 1, ToUnitID: 2, Factor: 10},
	})
	attributeMap := AttributeMap{
		"ДЛИНА": {
			1: {SourceID: "9454", FromUnitID: 1, ToUnitID: 2},
		},
	}

	result := ResolveValues(attributeMap, unitIndex, []ParamValues{
		{Name: "ДЛИНА", Values: []string{"примерно 12"}},
	})

	assert.Empty(t, result.Values)
	assert.Equal(t, []string{"9454"}, result.TypeErrorAttributes)
}

func TestResolveValues_PlainPassThrough(t *testing.T) {
	attributeMap := AttributeMap{
		"СОСТАВ": {
			1: {SourceID: "4391", DataType: models.DataTypeString},
		},
	}

	result := ResolveValues(attributeMap, emptyUnitIndex(), []ParamValues{
		{Name: "СОСТАВ", Values: []string{"хлопок 100%"}},
	})

	values := result.Values["СОСТАВ"]
	assert.Len(t, values, 1)
	assert.Equal(t, "хлопок 100%", values[0].Value)
	assert.Equal(t, int64(0), values[0].DictionaryValueID)
}

func TestResolveValues_FanOutDeterministicOrder(t *testing.T) {
	attributeMap := AttributeMap{
		"ЦВЕТ": {
			2: {SourceID: "10096"},
			1: {SourceID: "4389"},
		},
	}

	for i := 0; i < 20; i++ {
		result := ResolveValues(attributeMap, emptyUnitIndex(), []ParamValues{
			{Name: "ЦВЕТ", Values: []string{"красный"}},
		})
		values := result.Values["ЦВЕТ"]
		assert.Len(t, values, 2)
		assert.Equal(t, "4389", values[0].AttributeSourceID)
		assert.Equal(t, "10096", values[1].AttributeSourceID)
	}
}

func TestResolveValues_MultipleValuesKeepFeedOrder(t *testing.T) {
	attributeMap := AttributeMap{
		"ИНТЕРФЕЙСЫ": {
			1: {SourceID: "4386"},
		},
	}

	result := ResolveValues(attributeMap, emptyUnitIndex(), []ParamValues{
		{Name: "ИНТЕРФЕЙСЫ", Values: []string{"USB-C", "HDMI", "Jack 3.5"}},
	})

	values := result.Values["ИНТЕРФЕЙСЫ"]
	assert.Len(t, values, 3)
	assert.Equal(t, "USB-C", values[0].Value)
	assert.Equal(t, "HDMI", values[1].Value)
	assert.Equal(t, "Jack 3.5", values[2].Value)
}
