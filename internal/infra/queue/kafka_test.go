package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"linktracker/internal/domain/entity"
)

func testKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:         []string{"localhost:9092"},
		UpdatesTopic:    "topic_updates",
		DigestTopic:     "topic_digest",
		DeadLetterTopic: "bot_dlq",
	}
}

func TestKafkaTransport_PublishDigest(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	transport := NewKafkaTransport(producer, testKafkaConfig())

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "topic_digest" {
			return fmt.Errorf("topic = %q, want %q", msg.Topic, "topic_digest")
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var payload entity.DigestUpdate
		if err := json.Unmarshal(value, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		if payload.TgChatID != 42 {
			return fmt.Errorf("tg_chat_id = %d, want 42", payload.TgChatID)
		}
		return nil
	})

	digest := entity.NewDigestUpdate(42, []string{"rendered digest text"})
	if err := transport.PublishDigest(context.Background(), digest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKafkaTransport_PublishUpdate_UsesUpdatesTopic(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	transport := NewKafkaTransport(producer, testKafkaConfig())

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "topic_updates" {
			return fmt.Errorf("topic = %q, want %q", msg.Topic, "topic_updates")
		}
		return nil
	})

	digest := entity.NewDigestUpdate(7, []string{"first", "second"})
	if err := transport.PublishUpdate(context.Background(), digest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKafkaTransport_DeadLettersFailedPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	transport := NewKafkaTransport(producer, testKafkaConfig())

	publishErr := errors.New("broker unreachable")
	producer.ExpectSendMessageAndFail(publishErr)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "bot_dlq" {
			return fmt.Errorf("topic = %q, want %q", msg.Topic, "bot_dlq")
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var envelope deadLetterEnvelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return fmt.Errorf("unmarshal envelope: %w", err)
		}
		if envelope.OriginalTopic != "topic_digest" {
			return fmt.Errorf("original_topic = %q, want %q", envelope.OriginalTopic, "topic_digest")
		}
		if envelope.Error != publishErr.Error() {
			return fmt.Errorf("error = %q, want %q", envelope.Error, publishErr.Error())
		}
		var payload entity.DigestUpdate
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal original payload: %w", err)
		}
		if payload.TgChatID != 5 {
			return fmt.Errorf("payload tg_chat_id = %d, want 5", payload.TgChatID)
		}
		if envelope.Timestamp == 0 {
			return errors.New("envelope timestamp not set")
		}
		return nil
	})

	digest := entity.NewDigestUpdate(5, []string{"rendered digest text"})
	err := transport.PublishDigest(context.Background(), digest)
	if !errors.Is(err, publishErr) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}

func TestKafkaTransport_DeadLetterFailureIsSwallowed(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	transport := NewKafkaTransport(producer, testKafkaConfig())

	publishErr := errors.New("broker unreachable")
	producer.ExpectSendMessageAndFail(publishErr)
	producer.ExpectSendMessageAndFail(errors.New("dlq also down"))

	digest := entity.NewDigestUpdate(5, []string{"rendered digest text"})
	err := transport.PublishDigest(context.Background(), digest)
	if !errors.Is(err, publishErr) {
		t.Fatalf("expected the original publish error, got %v", err)
	}
}

func TestKafkaTransport_CanceledContextSkipsPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	transport := NewKafkaTransport(producer, testKafkaConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	digest := entity.NewDigestUpdate(5, []string{"rendered digest text"})
	if err := transport.PublishDigest(ctx, digest); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
