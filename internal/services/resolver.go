package services

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"feed-mapper-service/internal/models"
)

// ParamValues carries the raw values of one feed attribute, keyed by the
// normalized attribute name, in feed order
type ParamValues struct {
	Name   string
	Values []string
}

// ResolvedValue is one marketplace-ready value produced by the resolver
type ResolvedValue struct {
	Value             string                   `json:"value"`
	DictionaryValueID int64                    `json:"dictionaryValueId"`
	AttributeSourceID string                   `json:"attributeSourceId"`
	DataType          models.AttributeDataType `json:"dataType"`
	IsRichContent     bool                     `json:"isRichContent"`
	IgnoreDataType    bool                     `json:"ignoreDataType"`
}

// ResolvedValues classifies every (attribute, value) pair of an offer.
// Values holds the translations keyed by normalized feed attribute name;
// Order lists those names in first-resolution order. The remaining slices
// are diagnostic buckets: attribute names for unmapped attributes,
// marketplace attribute source ids for the rest. A pair may contribute to a
// bucket once per occurrence, duplicates included.
type ResolvedValues struct {
	Values                  map[string][]ResolvedValue `json:"values"`
	Order                   []string                   `json:"order"`
	UnmappedAttributes      []string                   `json:"unmappedAttributes"`
	UnmappedValueAttributes []string                   `json:"unmappedValueAttributes"`
	EmptyValueAttributes    []string                   `json:"emptyValueAttributes"`
	TypeErrorAttributes     []string                   `json:"typeErrorAttributes"`
	MappedWithDeletedValue  []string                   `json:"mappedWithDeletedValue"`
}

// ResolveValues translates the raw feed values of one offer through the
// attribute map. Pure: identical inputs yield identical outputs, with mapping
// fan-out processed in ascending mapping id order.
func ResolveValues(attributeMap AttributeMap, unitIndex *UnitIndex, params []ParamValues) *ResolvedValues {
	result := &ResolvedValues{
		Values:                  make(map[string][]ResolvedValue),
		UnmappedAttributes:      []string{},
		UnmappedValueAttributes: []string{},
		EmptyValueAttributes:    []string{},
		TypeErrorAttributes:     []string{},
		MappedWithDeletedValue:  []string{},
	}

	for _, param := range params {
		mappingsForName := attributeMap[param.Name]

		for _, rawValue := range param.Values {
			if len(mappingsForName) == 0 {
				result.UnmappedAttributes = append(result.UnmappedAttributes, param.Name)
				continue
			}

			for _, mappingID := range sortedMappingIDs(mappingsForName) {
				entry := mappingsForName[mappingID]
				if entry.Deleted {
					continue
				}

				if rawValue == "" {
					result.EmptyValueAttributes = append(result.EmptyValueAttributes, entry.SourceID)
					continue
				}

				if entry.DictionaryID != 0 {
					resolveDictionaryValue(result, param.Name, rawValue, entry)
					continue
				}
				resolvePlainValue(result, unitIndex, param.Name, rawValue, entry)
			}
		}
	}

	return result
}

// resolveDictionaryValue translates one raw value through the value map of a
// dictionary-backed attribute
func resolveDictionaryValue(result *ResolvedValues, name, rawValue string, entry AttributeMapEntry) {
	mapped, ok := entry.Values[NormalizeValue(rawValue)]
	if !ok {
		result.UnmappedValueAttributes = append(result.UnmappedValueAttributes, entry.SourceID)
		return
	}

	for _, valueEntry := range mapped {
		if valueEntry.Deleted {
			continue
		}
		result.addValue(name, ResolvedValue{
			Value:             valueEntry.Value,
			DictionaryValueID: valueEntry.DictionaryValueID,
			AttributeSourceID: entry.SourceID,
			DataType:          entry.DataType,
			IsRichContent:     entry.IsRichContent,
			IgnoreDataType:    entry.IgnoreDataType,
		})
	}

	// every confirmed target for this value points at a deleted dictionary
	// value: the mapping exists but produces nothing
	if _, resolved := result.Values[name]; !resolved {
		result.MappedWithDeletedValue = append(result.MappedWithDeletedValue, entry.SourceID)
	}
}

// resolvePlainValue passes a free-text value through, converting units when
// the mapping declares a unit pair the index knows
func resolvePlainValue(result *ResolvedValues, unitIndex *UnitIndex, name, rawValue string, entry AttributeMapEntry) {
	value := rawValue
	if factor, ok := unitIndex.Factor(entry.FromUnitID, entry.ToUnitID); ok {
		numValue, err := strconv.ParseFloat(strings.ReplaceAll(rawValue, ",", "."), 64)
		if err != nil {
			result.TypeErrorAttributes = append(result.TypeErrorAttributes, entry.SourceID)
			return
		}
		value = strconv.FormatFloat(roundTo(numValue*factor, 10), 'f', -1, 64)
	}

	result.addValue(name, ResolvedValue{
		Value:             value,
		AttributeSourceID: entry.SourceID,
		DataType:          entry.DataType,
		IsRichContent:     entry.IsRichContent,
		IgnoreDataType:    entry.IgnoreDataType,
	})
}

func (r *ResolvedValues) addValue(name string, value ResolvedValue) {
	if _, ok := r.Values[name]; !ok {
		r.Order = append(r.Order, name)
	}
	r.Values[name] = append(r.Values[name], value)
}

func sortedMappingIDs(entries map[uint]AttributeMapEntry) []uint {
	ids := make([]uint, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func roundTo(value float64, digits int) float64 {
	shift := math.Pow(10, float64(digits))
	return math.Round(value*shift) / shift
}
