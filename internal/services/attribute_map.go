package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feed-mapper-service/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ValueMapEntry is one marketplace dictionary value a feed value translates to
type ValueMapEntry struct {
	Value             string `json:"value"`
	DictionaryValueID int64  `json:"dictionaryValueId"`
	Deleted           bool   `json:"deleted"`
}

// AttributeMapEntry describes one attribute mapping as the resolver consumes it.
// Values is populated only for dictionary-backed marketplace attributes and is
// keyed by the uppercased feed value.
type AttributeMapEntry struct {
	SourceID       string                     `json:"sourceId"`
	DictionaryID   int64                      `json:"dictionaryId,omitempty"`
	DataType       models.AttributeDataType   `json:"dataType"`
	MappingID      uint                       `json:"mappingId"`
	FromUnitID     uint                       `json:"fromUnitId,omitempty"`
	ToUnitID       uint                       `json:"toUnitId,omitempty"`
	IsRichContent  bool                       `json:"isRichContent"`
	IgnoreDataType bool                       `json:"ignoreDataType"`
	Deleted        bool                       `json:"deleted"`
	Values         map[string][]ValueMapEntry `json:"values,omitempty"`
}

// AttributeMap indexes attribute mappings by normalized feed attribute name,
// then by attribute mapping id. One feed attribute may fan out to several
// marketplace attributes.
type AttributeMap map[string]map[uint]AttributeMapEntry

// BuildAttributeMap composes the lookup structure the resolver works against
// from the raw mapping rows of one category mapping. Mappings to disabled
// marketplace attributes are excluded entirely; mappings to deleted ones are
// kept with the Deleted flag set so the resolver can skip them while the
// operator still sees them.
func BuildAttributeMap(mappings []models.AttributeMapping, valueMappings []models.ValueMapping) AttributeMap {
	attributeMap := make(AttributeMap)
	nameByMappingID := make(map[uint]string, len(mappings))

	for _, mapping := range mappings {
		if mapping.FeedAttribute == nil || mapping.MarketAttribute == nil {
			continue
		}
		market := mapping.MarketAttribute
		if market.Disabled {
			continue
		}

		name := NormalizeAttributeName(mapping.FeedAttribute.Name)
		entry := AttributeMapEntry{
			SourceID:       market.SourceID,
			DataType:       market.DataType,
			MappingID:      mapping.ID,
			IsRichContent:  market.IsRichContent,
			IgnoreDataType: mapping.IgnoreDataType,
			Deleted:        market.Deleted,
		}
		if market.DictionaryID != nil {
			entry.DictionaryID = *market.DictionaryID
			entry.Values = make(map[string][]ValueMapEntry)
		}
		if mapping.FromUnitID != nil {
			entry.FromUnitID = *mapping.FromUnitID
		}
		if mapping.ToUnitID != nil {
			entry.ToUnitID = *mapping.ToUnitID
		}

		if attributeMap[name] == nil {
			attributeMap[name] = make(map[uint]AttributeMapEntry)
		}
		attributeMap[name][mapping.ID] = entry
		nameByMappingID[mapping.ID] = name
	}

	for _, valueMapping := range valueMappings {
		if valueMapping.Deleted || valueMapping.FeedValue == nil {
			continue
		}
		name, ok := nameByMappingID[valueMapping.AttributeMappingID]
		if !ok {
			continue
		}
		entry := attributeMap[name][valueMapping.AttributeMappingID]
		if entry.Values == nil {
			// non-dictionary attribute, value rows carry no meaning here
			continue
		}

		key := NormalizeValue(valueMapping.FeedValue.Value)
		var mapped ValueMapEntry
		if valueMapping.MarketValue != nil {
			mapped = ValueMapEntry{
				Value:             valueMapping.MarketValue.Value,
				DictionaryValueID: valueMapping.MarketValue.SourceID,
				Deleted:           valueMapping.MarketValue.Deleted,
			}
		} else {
			mapped = ValueMapEntry{Value: valueMapping.FeedValue.Value}
		}
		entry.Values[key] = append(entry.Values[key], mapped)
	}

	return attributeMap
}

// attributeMapSource is the slice of the mapping repository the service needs
type attributeMapSource interface {
	GetCategoryMapping(ctx context.Context, id uint) (*models.CategoryMapping, error)
	ListAttributeMappings(ctx context.Context, categoryMappingID uint) ([]models.AttributeMapping, error)
	ListValueMappingsForCategory(ctx context.Context, categoryMappingID uint) ([]models.ValueMapping, error)
}

const attributeMapCacheTTL = 10 * time.Minute

// AttributeMapService builds attribute maps and caches them per category
// mapping. Redis is optional; without it every call rebuilds from the
// database.
type AttributeMapService struct {
	mappings attributeMapSource
	redis    *redis.Client
	logger   *logrus.Entry
}

// NewAttributeMapService creates a new attribute map service
func NewAttributeMapService(mappings attributeMapSource, redisClient *redis.Client, logger *logrus.Logger) *AttributeMapService {
	return &AttributeMapService{
		mappings: mappings,
		redis:    redisClient,
		logger:   logger.WithField("component", "attribute_map"),
	}
}

func attributeMapCacheKey(categoryMappingID uint) string {
	return fmt.Sprintf("feedmapper:attrmap:%d", categoryMappingID)
}

// GetAttributeMap returns the attribute map of a category mapping, from cache
// when possible
func (s *AttributeMapService) GetAttributeMap(ctx context.Context, categoryMappingID uint) (AttributeMap, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, attributeMapCacheKey(categoryMappingID)).Result()
		if err == nil {
			var attributeMap AttributeMap
			if err := json.Unmarshal([]byte(cached), &attributeMap); err == nil {
				return attributeMap, nil
			}
		} else if err != redis.Nil {
			s.logger.WithError(err).Warn("attribute map cache read failed")
		}
	}

	if _, err := s.mappings.GetCategoryMapping(ctx, categoryMappingID); err != nil {
		return nil, err
	}

	attributeMappings, err := s.mappings.ListAttributeMappings(ctx, categoryMappingID)
	if err != nil {
		return nil, err
	}
	valueMappings, err := s.mappings.ListValueMappingsForCategory(ctx, categoryMappingID)
	if err != nil {
		return nil, err
	}

	attributeMap := BuildAttributeMap(attributeMappings, valueMappings)

	if s.redis != nil {
		payload, err := json.Marshal(attributeMap)
		if err == nil {
			if err := s.redis.Set(ctx, attributeMapCacheKey(categoryMappingID), payload, attributeMapCacheTTL).Err(); err != nil {
				s.logger.WithError(err).Warn("attribute map cache write failed")
			}
		}
	}

	return attributeMap, nil
}

// Invalidate drops the cached attribute map of a category mapping. Called
// after any mapping write under that category.
func (s *AttributeMapService) Invalidate(ctx context.Context, categoryMappingID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, attributeMapCacheKey(categoryMappingID)).Err(); err != nil {
		s.logger.WithError(err).Warn("attribute map cache invalidation failed")
	}
}
