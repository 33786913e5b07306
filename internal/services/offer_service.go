package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"feed-mapper-service/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// offerMappingStore is the slice of the mapping repository the pipeline needs
type offerMappingStore interface {
	GetCategoryMapping(ctx context.Context, id uint) (*models.CategoryMapping, error)
	ListCategoryMappingsByFeed(ctx context.Context, feedID uint) ([]models.CategoryMapping, error)
	UpsertSyncState(ctx context.Context, state *models.MappingSyncState) error
}

// offerMarketStore is the slice of the market repository the pipeline needs
type offerMarketStore interface {
	ListAttributes(ctx context.Context, categoryID uint) ([]models.MarketAttribute, error)
	ListDictionaryValues(ctx context.Context, attributeID uint) ([]models.MarketAttributeValue, error)
}

// attributeMapProvider hands out (possibly cached) attribute maps
type attributeMapProvider interface {
	GetAttributeMap(ctx context.Context, categoryMappingID uint) (AttributeMap, error)
}

// unitIndexProvider hands out the unit conversion index
type unitIndexProvider interface {
	GetIndex(ctx context.Context) (*UnitIndex, error)
}

// jobStore is the slice of the job repository the pipeline needs
type jobStore interface {
	Create(ctx context.Context, job *models.TranslationJob) error
	MarkStarted(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, progress *models.JobProgress) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

// translationEvents publishes translation lifecycle events
type translationEvents interface {
	PublishTranslationCompleted(ctx context.Context, feedID uint, jobID string, ready, rejected int) error
}

// OfferService runs the offer builder over batches of feed offers
type OfferService struct {
	mappings offerMappingStore
	markets  offerMarketStore
	attrMaps attributeMapProvider
	units    unitIndexProvider
	jobs     jobStore
	events   translationEvents
	sem      *FeedSemaphore
	workers  int
	logger   *logrus.Entry
}

// NewOfferService creates a new offer service
func NewOfferService(
	mappings offerMappingStore,
	markets offerMarketStore,
	attrMaps attributeMapProvider,
	units unitIndexProvider,
	jobs jobStore,
	events translationEvents,
	config *JobConcurrencyConfig,
	logger *logrus.Logger,
) *OfferService {
	if config == nil {
		config = DefaultConcurrencyConfig()
	}
	return &OfferService{
		mappings: mappings,
		markets:  markets,
		attrMaps: attrMaps,
		units:    units,
		jobs:     jobs,
		events:   events,
		sem:      NewFeedSemaphore(config),
		workers:  config.OfferWorkers,
		logger:   logger.WithField("component", "offers"),
	}
}

// BuildSnapshot assembles the read-only structures the builder shares across
// all offers of one category mapping
func (s *OfferService) BuildSnapshot(ctx context.Context, categoryMappingID uint) (*BuilderSnapshot, error) {
	categoryMapping, err := s.mappings.GetCategoryMapping(ctx, categoryMappingID)
	if err != nil {
		return nil, err
	}

	attributeMap, err := s.attrMaps.GetAttributeMap(ctx, categoryMappingID)
	if err != nil {
		return nil, err
	}
	unitIndex, err := s.units.GetIndex(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &BuilderSnapshot{
		CategoryMappingID: categoryMappingID,
		AttributeMap:      attributeMap,
		UnitIndex:         unitIndex,
		MarketAttributes:  make(map[string]MarketAttributeInfo),
		CustomsCodeValues: make(map[string]map[string]CustomsCodeValue),
	}
	if categoryMapping.MarketCategory != nil {
		snapshot.CategorySourceID = categoryMapping.MarketCategory.SourceID
		snapshot.CategoryDeleted = categoryMapping.MarketCategory.Deleted
	}

	marketAttributes, err := s.markets.ListAttributes(ctx, categoryMapping.MarketCategoryID)
	if err != nil {
		return nil, err
	}
	for _, attribute := range marketAttributes {
		if attribute.Deleted {
			continue
		}
		info := MarketAttributeInfo{
			Required: attribute.Required,
			Disabled: attribute.Disabled,
			Name:     attribute.Name,
		}
		if attribute.DictionaryID != nil {
			info.DictionaryID = *attribute.DictionaryID
		}
		snapshot.MarketAttributes[attribute.SourceID] = info

		if info.DictionaryID != 0 && strings.Contains(attribute.Name, customsCodeNameSubstring) {
			valuesByCode, err := s.loadCustomsCodeValues(ctx, attribute.ID)
			if err != nil {
				return nil, err
			}
			snapshot.CustomsCodeValues[attribute.SourceID] = valuesByCode
		}
	}

	snapshot.normalizeModelYearMappings()
	return snapshot, nil
}

func (s *OfferService) loadCustomsCodeValues(ctx context.Context, attributeID uint) (map[string]CustomsCodeValue, error) {
	values, err := s.markets.ListDictionaryValues(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	valuesByCode := make(map[string]CustomsCodeValue, len(values))
	for _, value := range values {
		if value.Deleted {
			continue
		}
		code := extractCustomsCode(value.Value)
		if code == "" {
			continue
		}
		valuesByCode[code] = CustomsCodeValue{
			Value:             value.Value,
			DictionaryValueID: value.SourceID,
		}
	}
	return valuesByCode, nil
}

// ResolveOffers builds marketplace payloads for a batch of offers. Offers are
// grouped by feed category; a category without a mapping rejects its offers
// with an unmapped category error. Results keep the input order.
func (s *OfferService) ResolveOffers(ctx context.Context, feedID uint, offers []models.Offer) ([]models.BuiltOffer, error) {
	categoryMappings, err := s.mappings.ListCategoryMappingsByFeed(ctx, feedID)
	if err != nil {
		return nil, err
	}
	mappingByFeedSource := make(map[string]*models.CategoryMapping, len(categoryMappings))
	for i := range categoryMappings {
		mapping := &categoryMappings[i]
		if mapping.FeedCategory != nil {
			mappingByFeedSource[mapping.FeedCategory.SourceID] = mapping
		}
	}

	snapshots := make(map[uint]*BuilderSnapshot)
	results := make([]models.BuiltOffer, len(offers))

	type task struct {
		index    int
		snapshot *BuilderSnapshot
	}
	tasks := make([]task, 0, len(offers))

	for i := range offers {
		offer := &offers[i]
		mapping, ok := mappingByFeedSource[offer.CategoryID]
		if !ok || mapping.Deleted {
			results[i] = models.BuiltOffer{
				OfferID:   offer.OfferID,
				Depth:     "0",
				Width:     "0",
				Height:    "0",
				TagErrors: map[string]string{"category": "unmapped"},
			}
			continue
		}
		snapshot, ok := snapshots[mapping.ID]
		if !ok {
			snapshot, err = s.BuildSnapshot(ctx, mapping.ID)
			if err != nil {
				return nil, err
			}
			snapshots[mapping.ID] = snapshot
		}
		tasks = append(tasks, task{index: i, snapshot: snapshot})
	}

	workers := s.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	if workers > 0 {
		taskCh := make(chan task)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for t := range taskCh {
					results[t.index] = *BuildOffer(t.snapshot, &offers[t.index])
				}
			}()
		}
		for _, t := range tasks {
			taskCh <- t
		}
		close(taskCh)
		wg.Wait()
	}

	return results, nil
}

// RunTranslationJob resolves a batch of offers under job bookkeeping: one
// slot per feed, progress counters, sync state and a completion event
func (s *OfferService) RunTranslationJob(ctx context.Context, feedID, marketplaceID uint, offers []models.Offer, trigger models.JobTrigger) (*models.TranslationJob, []models.BuiltOffer, error) {
	job := &models.TranslationJob{
		FeedID:        feedID,
		MarketplaceID: marketplaceID,
		TriggeredBy:   trigger,
	}
	job.SetProgress(&models.JobProgress{TotalOffers: len(offers)})
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, nil, err
	}

	release, err := s.sem.Acquire(ctx, feedID)
	if err != nil {
		s.failJob(ctx, job, feedID, marketplaceID, err)
		return job, nil, err
	}
	defer release()

	if err := s.jobs.MarkStarted(ctx, job.ID); err != nil {
		return job, nil, err
	}

	results, err := s.ResolveOffers(ctx, feedID, offers)
	if err != nil {
		s.failJob(ctx, job, feedID, marketplaceID, err)
		return job, nil, err
	}

	progress := &models.JobProgress{TotalOffers: len(offers), BuiltOffers: len(results)}
	for _, result := range results {
		if result.Ready {
			progress.ReadyOffers++
		} else {
			progress.RejectedOffers++
		}
	}

	if err := s.jobs.MarkCompleted(ctx, job.ID, progress); err != nil {
		return job, results, err
	}

	now := time.Now()
	if err := s.mappings.UpsertSyncState(ctx, &models.MappingSyncState{
		FeedID:        feedID,
		MarketplaceID: marketplaceID,
		LastSyncAt:    &now,
		LastError:     "",
	}); err != nil {
		s.logger.WithError(err).Warn("sync state update failed")
	}

	if s.events != nil {
		if err := s.events.PublishTranslationCompleted(ctx, feedID, job.ID.String(), progress.ReadyOffers, progress.RejectedOffers); err != nil {
			s.logger.WithError(err).Warn("translation completed event publish failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"jobId":    job.ID,
		"feedId":   feedID,
		"ready":    progress.ReadyOffers,
		"rejected": progress.RejectedOffers,
	}).Info("Translation job completed")

	return job, results, nil
}

func (s *OfferService) failJob(ctx context.Context, job *models.TranslationJob, feedID, marketplaceID uint, cause error) {
	if err := s.jobs.MarkFailed(ctx, job.ID, cause.Error()); err != nil {
		s.logger.WithError(err).Warn("job failure update failed")
	}
	if err := s.mappings.UpsertSyncState(ctx, &models.MappingSyncState{
		FeedID:        feedID,
		MarketplaceID: marketplaceID,
		LastError:     cause.Error(),
	}); err != nil {
		s.logger.WithError(err).Warn("sync state update failed")
	}
}
