// Package notify provides the use case for delivering update digests to
// Telegram chats. It renders update events into digest text and hands the
// payload to a configured transport (HTTP callback or message queue).
// Delivery is best effort: transport failures are logged and absorbed so the
// scan loop is never blocked by a downstream outage.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"linktracker/internal/domain/entity"
)

// Transport delivers one DigestUpdate payload to the downstream bot service.
//
// Thread Safety:
//   - All methods must be safe for concurrent use by multiple goroutines
//
// Error contract: implementations handle their own fallback (the queue
// transport dead-letters failed payloads); a returned error means the payload
// was not delivered and the caller may only log it.
type Transport interface {
	// Name returns the transport identifier used for logging and metrics.
	Name() string

	// PublishUpdate delivers a payload built from plain update strings.
	PublishUpdate(ctx context.Context, digest *entity.DigestUpdate) error

	// PublishDigest delivers a payload built from rendered update events.
	PublishDigest(ctx context.Context, digest *entity.DigestUpdate) error
}

// Service delivers collected updates to one chat per call.
type Service interface {
	// SendUpdate wraps plain strings into a digest payload and delivers it.
	// An empty list is a no-op: the transport is never invoked.
	SendUpdate(ctx context.Context, chatID int64, updates []string) error

	// SendDigest renders update events into digest text and delivers it.
	// An empty list is a no-op: the transport is never invoked.
	SendDigest(ctx context.Context, chatID int64, events []*entity.UpdateEvent) error
}

type service struct {
	transport Transport
}

// NewService creates a notification service backed by the given transport.
func NewService(transport Transport) Service {
	return &service{transport: transport}
}

func (s *service) SendUpdate(ctx context.Context, chatID int64, updates []string) error {
	if len(updates) == 0 {
		return nil
	}
	if err := entity.ValidateChatID(chatID); err != nil {
		return fmt.Errorf("SendUpdate: %w", err)
	}

	s.deliver(ctx, entity.NewDigestUpdate(chatID, updates), s.transport.PublishUpdate, len(updates))
	return nil
}

func (s *service) SendDigest(ctx context.Context, chatID int64, events []*entity.UpdateEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := entity.ValidateChatID(chatID); err != nil {
		return fmt.Errorf("SendDigest: %w", err)
	}

	digest := entity.NewDigestUpdate(chatID, RenderDigest(events))
	s.deliver(ctx, digest, s.transport.PublishDigest, len(events))
	return nil
}

// deliver invokes one transport publish and records the outcome. Errors are
// logged, counted and dropped.
func (s *service) deliver(ctx context.Context, digest *entity.DigestUpdate, publish func(context.Context, *entity.DigestUpdate) error, eventCount int) {
	start := time.Now()
	err := publish(ctx, digest)
	duration := time.Since(start)

	deliveryDuration.WithLabelValues(s.transport.Name()).Observe(duration.Seconds())
	digestEventsPerDelivery.WithLabelValues(s.transport.Name()).Observe(float64(eventCount))

	if err != nil {
		deliverySentTotal.WithLabelValues(s.transport.Name(), "failure").Inc()
		slog.Error("digest delivery failed",
			slog.String("transport", s.transport.Name()),
			slog.Int64("chat_id", digest.TgChatID),
			slog.Int("events", eventCount),
			slog.Any("error", err))
		return
	}

	deliverySentTotal.WithLabelValues(s.transport.Name(), "success").Inc()
	slog.Info("digest delivered",
		slog.String("transport", s.transport.Name()),
		slog.Int64("chat_id", digest.TgChatID),
		slog.Int("events", eventCount),
		slog.Duration("duration", duration))
}
