package events

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"
)

// Mapping event types
const (
	ValueMappingsCreated     = "mapping.values.created"
	AttributeMappingsCreated = "mapping.attributes.created"
	TranslationCompleted     = "mapping.translation.completed"
)

// MappingEvent represents a mapping-graph or translation event
type MappingEvent struct {
	events.BaseEvent
	FeedID            string                 `json:"feedId,omitempty"`
	CategoryMappingID string                 `json:"categoryMappingId,omitempty"`
	CreatedCount      int                    `json:"createdCount,omitempty"`
	JobID             string                 `json:"jobId,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

func (e *MappingEvent) GetSubject() string {
	return e.EventType
}

func (e *MappingEvent) GetStream() string {
	return "MAPPING_EVENTS"
}

// Publisher wraps the shared events publisher for mapping-specific events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new mapping events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "feed-mapper-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := publisher.EnsureStream(ctx, "MAPPING_EVENTS", []string{"mapping.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure MAPPING_EVENTS stream")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishValueMappingsCreated publishes a value mappings created event
func (p *Publisher) PublishValueMappingsCreated(ctx context.Context, feedID, categoryMappingID uint, created int) error {
	event := &MappingEvent{
		BaseEvent: events.BaseEvent{
			EventType: ValueMappingsCreated,
			SourceID:  strconv.FormatUint(uint64(categoryMappingID), 10),
			Timestamp: time.Now().UTC(),
		},
		FeedID:            formatID(feedID),
		CategoryMappingID: formatID(categoryMappingID),
		CreatedCount:      created,
	}

	return p.publisher.Publish(ctx, event)
}

// PublishAttributeMappingsCreated publishes an attribute mappings created event
func (p *Publisher) PublishAttributeMappingsCreated(ctx context.Context, categoryMappingID uint, created int) error {
	event := &MappingEvent{
		BaseEvent: events.BaseEvent{
			EventType: AttributeMappingsCreated,
			SourceID:  strconv.FormatUint(uint64(categoryMappingID), 10),
			Timestamp: time.Now().UTC(),
		},
		CategoryMappingID: formatID(categoryMappingID),
		CreatedCount:      created,
	}

	return p.publisher.Publish(ctx, event)
}

// PublishTranslationCompleted publishes a translation job completed event
func (p *Publisher) PublishTranslationCompleted(ctx context.Context, feedID uint, jobID string, ready, rejected int) error {
	event := &MappingEvent{
		BaseEvent: events.BaseEvent{
			EventType: TranslationCompleted,
			SourceID:  jobID,
			Timestamp: time.Now().UTC(),
		},
		FeedID: formatID(feedID),
		JobID:  jobID,
		Metadata: map[string]interface{}{
			"readyOffers":    ready,
			"rejectedOffers": rejected,
		},
	}

	return p.publisher.Publish(ctx, event)
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	p.publisher.Close()
}

func formatID(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}
