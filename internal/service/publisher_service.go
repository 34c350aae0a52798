package service

import (
	"context"
	"encoding/json"

	"ai-paperwriter-be/internal/dto"
	"ai-paperwriter-be/internal/pkg/logger"
	natspkg "ai-paperwriter-be/pkg/nats"
	"ai-paperwriter-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IPublisherService interface {
	// TriggerIngest enqueues an in-process ingestion job for a source
	// and announces it on the event bus.
	TriggerIngest(ctx context.Context, sourceId uuid.UUID) error
	// PublishEvent pushes a domain event to NATS. A missing NATS
	// connection downgrades to a log line; events are best effort.
	PublishEvent(ctx context.Context, event events.Event) error
}

type publisherService struct {
	pubSub      *gochannel.GoChannel
	ingestTopic string
	natsPub     *natspkg.Publisher
	log         logger.ILogger
}

func NewPublisherService(
	pubSub *gochannel.GoChannel,
	ingestTopic string,
	natsPub *natspkg.Publisher,
	log logger.ILogger,
) IPublisherService {
	return &publisherService{
		pubSub:      pubSub,
		ingestTopic: ingestTopic,
		natsPub:     natsPub,
		log:         log,
	}
}

func (ps *publisherService) TriggerIngest(ctx context.Context, sourceId uuid.UUID) error {
	payload, err := json.Marshal(dto.IngestSourceMessage{SourceId: sourceId})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.ingestTopic, msg); err != nil {
		return err
	}

	if err := ps.PublishEvent(ctx, events.NewIngestRequestedEvent(sourceId)); err != nil {
		ps.log.Warn("publisher", "failed to announce ingest request", map[string]interface{}{
			"source_id": sourceId.String(),
			"error":     err.Error(),
		})
	}
	return nil
}

func (ps *publisherService) PublishEvent(ctx context.Context, event events.Event) error {
	if ps.natsPub == nil {
		ps.log.Debug("publisher", "nats disabled, dropping event", map[string]interface{}{
			"event_type": event.EventType(),
		})
		return nil
	}
	return ps.natsPub.Publish(ctx, event)
}
