// Package natsutil publishes ingestion CloudEvents to NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/fleetpulse/pkg/logger"
	"github.com/carverauto/fleetpulse/pkg/models"
)

const (
	eventSource         = "fleetpulse/core"
	collectionEventType = "com.carverauto.fleetpulse.device.collection"
	collectionSubject   = "events.device.collection"
)

// EventPublisher publishes CloudEvents to a NATS JetStream stream. It is the
// optional fan-out channel; the database remains the record of truth, so a
// publish failure never fails an ingestion.
type EventPublisher struct {
	js     jetstream.JetStream
	stream string
	logger logger.Logger
}

// NewEventPublisher creates an EventPublisher for the specified stream.
func NewEventPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		js:     js,
		stream: streamName,
		logger: log,
	}
}

// PublishCollectionEvent publishes a "collection completed" CloudEvent.
func (p *EventPublisher) PublishCollectionEvent(ctx context.Context, data models.CollectionEventData) error {
	event := newCollectionEvent(data)

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal collection event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish collection event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("sequence", ack.Sequence).
		Msg("Published collection event")

	return nil
}

func newCollectionEvent(data models.CollectionEventData) models.CloudEvent {
	return models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            collectionEventType,
		DataContentType: "application/json",
		Subject:         collectionSubject,
		Time:            &data.Timestamp,
		Data:            data,
	}
}

// Connect establishes a NATS connection, ensures the events stream exists,
// and returns a publisher bound to it. The caller owns the returned
// connection and closes it on shutdown.
func Connect(ctx context.Context, cfg *models.NATSConfig, log logger.Logger, extraOpts ...nats.Option) (*EventPublisher, *nats.Conn, error) {
	opts := append([]nats.Option{
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}, extraOpts...)

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := newJetStream(nc, cfg.Domain)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	if err := ensureStream(ctx, js, cfg.StreamName); err != nil {
		nc.Close()
		return nil, nil, err
	}

	return NewEventPublisher(js, cfg.StreamName, log), nc, nil
}

func newJetStream(nc *nats.Conn, domain string) (jetstream.JetStream, error) {
	if domain != "" {
		js, err := jetstream.NewWithDomain(nc, domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", domain, err)
		}

		return js, nil
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return js, nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, streamName string) error {
	_, err := js.Stream(ctx, streamName)
	if err == nil {
		return nil
	}

	streamConfig := jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"events.device.*"},
	}

	if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
		return fmt.Errorf("failed to create or get stream %s: %w", streamName, err)
	}

	return nil
}
