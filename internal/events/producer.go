package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/velora/commerce/internal/common/constants"
	"github.com/velora/commerce/internal/config"
	"github.com/velora/commerce/internal/log"
)

// Producer publishes storefront events to kafka. Partition key is the order
// id so every event of one order keeps its ordering.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg config.Kafka) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *Producer) PublishOrderPlaced(c context.Context, payload OrderPlacedPayload) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Producer PublishOrderPlaced").
		Str(log.KeyOrderID, payload.OrderID.String()).
		Logger()

	envelope := Envelope{
		EventID:    uuid.NewString(),
		EventType:  EventOrderPlaced,
		OccurredAt: time.Now(),
		Producer:   constants.AppStorefront,
		RequestID:  log.RequestIDFromContext(c),
		Payload:    payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed marshaling event with error=%w", err)
	}

	err = p.writer.WriteMessages(c, kafka.Message{
		Key:   []byte(payload.OrderID.String()),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed publishing event with error=%w", err)
	}
	logger.Info().Str(log.KeyTopic, p.writer.Topic).Msg("published order placed event")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
