// Package queue provides the message-queue transport for digest delivery:
// payloads are published to Kafka topics, with a dead-letter topic as the
// fallback for payloads that could not be delivered.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"linktracker/internal/domain/entity"
)

// KafkaConfig contains configuration for the Kafka notification transport.
type KafkaConfig struct {
	// Brokers is the list of bootstrap server addresses
	Brokers []string

	// UpdatesTopic receives plain-update payloads
	UpdatesTopic string

	// DigestTopic receives rendered digest payloads
	DigestTopic string

	// DeadLetterTopic receives envelopes for payloads that failed to publish
	DeadLetterTopic string
}

// deadLetterEnvelope wraps an undeliverable payload for later inspection.
type deadLetterEnvelope struct {
	OriginalTopic string          `json:"original_topic"`
	Error         string          `json:"error"`
	Payload       json.RawMessage `json:"payload"`
	Timestamp     int64           `json:"timestamp"`
}

// KafkaTransport publishes digest payloads to Kafka. Publish failures are
// dead-lettered rather than retried, so a broker problem leaves an observable
// trail without blocking the scan loop.
type KafkaTransport struct {
	producer sarama.SyncProducer
	config   KafkaConfig
}

// NewKafkaTransport wraps an existing producer. The producer must be
// configured with Return.Successes = true, as the sync producer requires.
func NewKafkaTransport(producer sarama.SyncProducer, config KafkaConfig) *KafkaTransport {
	return &KafkaTransport{
		producer: producer,
		config:   config,
	}
}

// NewSyncProducer creates a sarama producer suitable for the transport.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.ClientID = "link-scanner-producer"

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// Name implements the transport contract.
func (t *KafkaTransport) Name() string { return "kafka" }

// PublishUpdate publishes a plain-update payload to the updates topic.
func (t *KafkaTransport) PublishUpdate(ctx context.Context, digest *entity.DigestUpdate) error {
	return t.produce(ctx, t.config.UpdatesTopic, digest)
}

// PublishDigest publishes a rendered digest payload to the digest topic.
func (t *KafkaTransport) PublishDigest(ctx context.Context, digest *entity.DigestUpdate) error {
	return t.produce(ctx, t.config.DigestTopic, digest)
}

// Close shuts down the underlying producer.
func (t *KafkaTransport) Close() error {
	return t.producer.Close()
}

func (t *KafkaTransport) produce(ctx context.Context, topic string, digest *entity.DigestUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("marshal digest payload: %w", err)
	}

	_, _, err = t.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     topic,
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	})
	if err == nil {
		slog.Info("digest published",
			slog.String("topic", topic),
			slog.Int64("chat_id", digest.TgChatID))
		return nil
	}

	slog.Error("kafka publish failed, dead-lettering",
		slog.String("topic", topic),
		slog.Int64("chat_id", digest.TgChatID),
		slog.Any("error", err))
	t.sendToDeadLetter(topic, payload, err)
	return fmt.Errorf("publish to %s: %w", topic, err)
}

// sendToDeadLetter publishes a failure envelope to the dead-letter topic.
// A failure here is logged and dropped: there is nowhere further to fall.
func (t *KafkaTransport) sendToDeadLetter(originalTopic string, payload []byte, publishErr error) {
	envelope := deadLetterEnvelope{
		OriginalTopic: originalTopic,
		Error:         publishErr.Error(),
		Payload:       payload,
		Timestamp:     time.Now().Unix(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		slog.Error("marshal dead-letter envelope failed", slog.Any("error", err))
		return
	}

	_, _, err = t.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     t.config.DeadLetterTopic,
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	})
	if err != nil {
		slog.Error("dead-letter publish failed",
			slog.String("topic", t.config.DeadLetterTopic),
			slog.Any("error", err))
		return
	}

	slog.Info("payload dead-lettered",
		slog.String("original_topic", originalTopic),
		slog.String("dlq_topic", t.config.DeadLetterTopic))
}
