package services

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/linesmerrill/relief-api/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaChannel publishes each notification as a JSON message keyed by the
// recipient, so one user's notifications stay ordered within a partition.
type KafkaChannel struct {
	writer messageWriter
}

// NewKafkaChannel returns a channel writing to topic on brokers
func NewKafkaChannel(brokers []string, topic string) *KafkaChannel {
	return &KafkaChannel{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// Name of the channel
func (k *KafkaChannel) Name() string { return "kafka" }

// Deliver writes the notifications in one batch.
func (k *KafkaChannel) Deliver(ctx context.Context, notifications []models.Notification) error {
	msgs := make([]kafka.Message, 0, len(notifications))
	for _, n := range notifications {
		value, err := json.Marshal(n)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(n.UserID),
			Value: value,
			Time:  n.CreatedAt,
		})
	}
	return k.writer.WriteMessages(ctx, msgs...)
}

// Close flushes pending writes and releases the connection.
func (k *KafkaChannel) Close() error {
	return k.writer.Close()
}
