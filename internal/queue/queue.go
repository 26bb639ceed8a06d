package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/config"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/metrics"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/utils"
	"github.com/dnalabs-io/dna-leaderboard-indexer/pkg"
)

var knownActivityTypes = []types.ActivityType{
	types.ActivitySwap,
	types.ActivityPositionOpen,
	types.ActivityPositionClose,
	types.ActivityFeeCollection,
}

// QueueManager owns the RabbitMQ connection the activity source delivers
// decoded on-chain events through. Delivery order across addresses is
// best-effort only; nothing downstream may rely on it.
type QueueManager struct {
	cfg     *config.QueueConfig
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	conn, err := amqp.Dial(cfg.AmqpURI())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open queue channel: %w", err)
	}

	if err := channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set queue prefetch: %w", err)
	}

	if _, err := channel.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.QueueName, err)
	}

	return &QueueManager{
		cfg:     cfg,
		conn:    conn,
		channel: channel,
	}, nil
}

// ConsumeActivityEvents starts consuming deliveries and returns a channel of
// decoded activity events. Each delivery gets exactly one processing attempt:
// it is acked on receipt and malformed payloads are dropped and counted, not
// requeued. Retry policy, if any, belongs to the producer.
func (qm *QueueManager) ConsumeActivityEvents(ctx context.Context) (<-chan types.ActivityEvent, error) {
	deliveries, err := qm.channel.Consume(
		qm.cfg.QueueName,
		"dna-indexer-"+pkg.RandString(8),
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming queue %s: %w", qm.cfg.QueueName, err)
	}

	events := make(chan types.ActivityEvent)
	go func() {
		defer close(events)
		for {
			select {
			case delivery, ok := <-deliveries:
				if !ok {
					log.Warn().Msg("Queue delivery channel closed")
					return
				}
				event, err := decodeActivityEvent(delivery.Body)
				if err != nil {
					metrics.RecordRejectedQueueDelivery()
					log.Warn().Err(err).Msg("Dropping malformed activity delivery")
					if err := delivery.Nack(false, false); err != nil {
						log.Error().Err(err).Msg("Failed to nack malformed delivery")
					}
					continue
				}
				if err := delivery.Ack(false); err != nil {
					log.Error().Err(err).Msg("Failed to ack activity delivery")
				}

				select {
				case events <- *event:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func decodeActivityEvent(body []byte) (*types.ActivityEvent, error) {
	var event types.ActivityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode activity event: %w", err)
	}
	if event.Address == "" {
		return nil, fmt.Errorf("activity event missing address")
	}
	if !utils.Contains(knownActivityTypes, event.ActivityType) {
		return nil, fmt.Errorf("unknown activity type: %s", event.ActivityType)
	}
	if event.Timestamp <= 0 {
		return nil, fmt.Errorf("activity event missing timestamp")
	}
	return &event, nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")
	if err := qm.channel.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close queue channel")
	}
	if err := qm.conn.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close queue connection")
	}
}
