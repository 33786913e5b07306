package services

import (
	"context"

	"feed-mapper-service/internal/models"

	"github.com/sirupsen/logrus"
)

// automapMappingStore is the slice of the mapping repository the auto-mapper needs
type automapMappingStore interface {
	GetCategoryMapping(ctx context.Context, id uint) (*models.CategoryMapping, error)
	GetAttributeMapping(ctx context.Context, id uint) (*models.AttributeMapping, error)
	ListAttributeMappings(ctx context.Context, categoryMappingID uint) ([]models.AttributeMapping, error)
	ListAttributeMappingsByFeed(ctx context.Context, feedID uint) ([]models.AttributeMapping, error)
	ListMappedFeedValueIDs(ctx context.Context, attributeMappingID uint) ([]uint, error)
	CreateAttributeMapping(ctx context.Context, mapping *models.AttributeMapping) error
	CreateValueMapping(ctx context.Context, mapping *models.ValueMapping) error
	CreateValueMappings(ctx context.Context, mappings []models.ValueMapping) error
}

// automapFeedStore is the slice of the feed repository the auto-mapper needs
type automapFeedStore interface {
	ListValues(ctx context.Context, attributeID uint) ([]models.FeedAttributeValue, error)
	ListAttributesByName(ctx context.Context, categoryID uint, name string) ([]models.FeedAttribute, error)
}

// automapMarketStore is the slice of the market repository the auto-mapper needs
type automapMarketStore interface {
	ListDictionaryValues(ctx context.Context, attributeID uint) ([]models.MarketAttributeValue, error)
	ListNameMappableAttributes(ctx context.Context, categoryID uint) ([]models.MarketAttribute, error)
	EnsureAttribute(ctx context.Context, attribute *models.MarketAttribute) error
}

// cacheInvalidator drops a cached attribute map after mapping writes
type cacheInvalidator interface {
	Invalidate(ctx context.Context, categoryMappingID uint)
}

// AutomapService creates value and attribute mappings automatically where
// feed and marketplace vocabularies coincide
type AutomapService struct {
	mappings automapMappingStore
	feeds    automapFeedStore
	markets  automapMarketStore
	cache    cacheInvalidator
	logger   *logrus.Entry
}

// NewAutomapService creates a new automap service
func NewAutomapService(
	mappings automapMappingStore,
	feeds automapFeedStore,
	markets automapMarketStore,
	cache cacheInvalidator,
	logger *logrus.Logger,
) *AutomapService {
	return &AutomapService{
		mappings: mappings,
		feeds:    feeds,
		markets:  markets,
		cache:    cache,
		logger:   logger.WithField("component", "automap"),
	}
}

// MapEqualValues maps the unmapped feed values of one attribute mapping onto
// equally-named marketplace dictionary values. Feed values without an equal
// match fall back to the attribute's default dictionary value when one is
// configured. Returns the number of value mappings created.
//
// A mapping whose marketplace attribute has not opted in, or has no
// dictionary, is skipped without error.
func (s *AutomapService) MapEqualValues(ctx context.Context, attributeMappingID uint) (int, error) {
	mapping, err := s.mappings.GetAttributeMapping(ctx, attributeMappingID)
	if err != nil {
		return 0, err
	}
	market := mapping.MarketAttribute
	if market == nil || !market.MapEqualValues || market.DictionaryID == nil {
		return 0, nil
	}

	unmappedValues, err := s.listUnmappedFeedValues(ctx, mapping)
	if err != nil {
		return 0, err
	}

	marketValues, err := s.markets.ListDictionaryValues(ctx, market.ID)
	if err != nil {
		return 0, err
	}
	marketValueIDs := make(map[string]uint, len(marketValues))
	for _, value := range marketValues {
		if value.Deleted {
			continue
		}
		marketValueIDs[NormalizeValue(value.Value)] = value.ID
	}

	created := 0
	for _, feedValue := range unmappedValues {
		marketValueID, ok := marketValueIDs[NormalizeValue(feedValue.Value)]
		if !ok {
			if market.DefaultValueID == nil {
				continue
			}
			marketValueID = *market.DefaultValueID
		}
		targetID := marketValueID
		err := s.mappings.CreateValueMapping(ctx, &models.ValueMapping{
			AttributeMappingID: mapping.ID,
			FeedValueID:        feedValue.ID,
			MarketValueID:      &targetID,
		})
		if err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		s.cache.Invalidate(ctx, mapping.CategoryMappingID)
		s.logger.WithFields(logrus.Fields{
			"attributeMappingId": mapping.ID,
			"created":            created,
		}).Info("Equal value mappings created")
	}

	return created, nil
}

// MapEqualValuesForFeed runs equal-value matching across every eligible
// attribute mapping of a feed in one pass and writes the result in a single
// transaction. Unlike the single-mapping scope there is no default-value
// fallback: a bulk run must not guess.
func (s *AutomapService) MapEqualValuesForFeed(ctx context.Context, feedID uint) (int, error) {
	attributeMappings, err := s.mappings.ListAttributeMappingsByFeed(ctx, feedID)
	if err != nil {
		return 0, err
	}

	var toCreate []models.ValueMapping
	touchedCategories := make(map[uint]struct{})
	marketValueCache := make(map[uint]map[string]uint)

	for i := range attributeMappings {
		mapping := &attributeMappings[i]
		market := mapping.MarketAttribute
		if market == nil || !market.MapEqualValues || market.DictionaryID == nil {
			continue
		}

		unmappedValues, err := s.listUnmappedFeedValues(ctx, mapping)
		if err != nil {
			return 0, err
		}
		if len(unmappedValues) == 0 {
			continue
		}

		marketValueIDs, ok := marketValueCache[market.ID]
		if !ok {
			marketValues, err := s.markets.ListDictionaryValues(ctx, market.ID)
			if err != nil {
				return 0, err
			}
			marketValueIDs = make(map[string]uint, len(marketValues))
			for _, value := range marketValues {
				if value.Deleted {
					continue
				}
				marketValueIDs[NormalizeValue(value.Value)] = value.ID
			}
			marketValueCache[market.ID] = marketValueIDs
		}
		if len(marketValueIDs) == 0 {
			continue
		}

		for _, feedValue := range unmappedValues {
			marketValueID, ok := marketValueIDs[NormalizeValue(feedValue.Value)]
			if !ok {
				continue
			}
			targetID := marketValueID
			toCreate = append(toCreate, models.ValueMapping{
				AttributeMappingID: mapping.ID,
				FeedValueID:        feedValue.ID,
				MarketValueID:      &targetID,
			})
			touchedCategories[mapping.CategoryMappingID] = struct{}{}
		}
	}

	if err := s.mappings.CreateValueMappings(ctx, toCreate); err != nil {
		return 0, err
	}

	for categoryMappingID := range touchedCategories {
		s.cache.Invalidate(ctx, categoryMappingID)
	}

	if len(toCreate) > 0 {
		s.logger.WithFields(logrus.Fields{
			"feedId":  feedID,
			"created": len(toCreate),
		}).Info("Equal value mappings created for feed")
	}

	return len(toCreate), nil
}

// MapAttributesByName creates attribute mappings for marketplace attributes
// that declare a feed attribute name to match, then runs the equal-value
// mapper on each created mapping. The rich-content attribute is ensured on
// the category first so it participates in matching.
func (s *AutomapService) MapAttributesByName(ctx context.Context, categoryMappingID uint) (int, error) {
	categoryMapping, err := s.mappings.GetCategoryMapping(ctx, categoryMappingID)
	if err != nil {
		return 0, err
	}

	if err := s.ensureRichContentAttribute(ctx, categoryMapping.MarketCategoryID); err != nil {
		return 0, err
	}

	existing, err := s.mappings.ListAttributeMappings(ctx, categoryMappingID)
	if err != nil {
		return 0, err
	}
	mappedMarketAttributes := make(map[uint]struct{}, len(existing))
	for _, mapping := range existing {
		mappedMarketAttributes[mapping.MarketAttributeID] = struct{}{}
	}

	candidates, err := s.markets.ListNameMappableAttributes(ctx, categoryMapping.MarketCategoryID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, candidate := range candidates {
		if _, mapped := mappedMarketAttributes[candidate.ID]; mapped {
			continue
		}

		feedAttributes, err := s.feeds.ListAttributesByName(ctx, categoryMapping.FeedCategoryID, candidate.MapFeedAttributeName)
		if err != nil {
			return created, err
		}

		for _, feedAttribute := range feedAttributes {
			mapping := models.AttributeMapping{
				CategoryMappingID: categoryMappingID,
				FeedAttributeID:   feedAttribute.ID,
				MarketAttributeID: candidate.ID,
			}
			if err := s.mappings.CreateAttributeMapping(ctx, &mapping); err != nil {
				return created, err
			}
			if mapping.ID == 0 {
				// conflict no-op, the mapping already existed
				continue
			}
			created++

			if _, err := s.MapEqualValues(ctx, mapping.ID); err != nil {
				return created, err
			}
		}
	}

	if created > 0 {
		s.cache.Invalidate(ctx, categoryMappingID)
		s.logger.WithFields(logrus.Fields{
			"categoryMappingId": categoryMappingID,
			"created":           created,
		}).Info("Attribute mappings created by name")
	}

	return created, nil
}

func (s *AutomapService) listUnmappedFeedValues(ctx context.Context, mapping *models.AttributeMapping) ([]models.FeedAttributeValue, error) {
	mappedIDs, err := s.mappings.ListMappedFeedValueIDs(ctx, mapping.ID)
	if err != nil {
		return nil, err
	}
	mapped := make(map[uint]struct{}, len(mappedIDs))
	for _, id := range mappedIDs {
		mapped[id] = struct{}{}
	}

	feedValues, err := s.feeds.ListValues(ctx, mapping.FeedAttributeID)
	if err != nil {
		return nil, err
	}

	unmapped := feedValues[:0:0]
	for _, value := range feedValues {
		if _, ok := mapped[value.ID]; ok {
			continue
		}
		unmapped = append(unmapped, value)
	}
	return unmapped, nil
}

// ensureRichContentAttribute guarantees the rich-content attribute exists on
// a mapped marketplace category before name matching runs
func (s *AutomapService) ensureRichContentAttribute(ctx context.Context, marketCategoryID uint) error {
	return s.markets.EnsureAttribute(ctx, &models.MarketAttribute{
		CategoryID:    marketCategoryID,
		SourceID:      richContentAttributeSourceID,
		Name:          richContentAttributeName,
		DataType:      models.DataTypeString,
		IsRichContent: true,
	})
}
