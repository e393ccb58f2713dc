// Package scan provides the update-scanning orchestrator: a background loop
// that wakes at the configured digest time, paginates all registered chats,
// fans out per-link freshness checks and hands collected updates to the
// notification service.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"linktracker/internal/domain/entity"
	"linktracker/internal/infra/clients"
	"linktracker/internal/observability/logging"
	"linktracker/internal/observability/metrics"
	"linktracker/internal/repository"
	"linktracker/internal/usecase/notify"
)

// ClientRegistry resolves a tracked URL to the service client responsible for it.
type ClientRegistry interface {
	Resolve(rawURL string) (clients.Client, *url.URL, error)
}

// Config holds the scheduling and fan-out parameters of the scan loop.
type Config struct {
	// DigestHour and DigestMinute select the UTC time of day a scan pass starts.
	DigestHour   int
	DigestMinute int

	// PollInterval is how long the loop sleeps between clock checks.
	PollInterval time.Duration

	// ChatPageSize is the page size for chat enumeration.
	ChatPageSize int

	// LinkParallelism bounds concurrent link checks within one chat.
	LinkParallelism int
}

// DefaultConfig returns production defaults: daily digest at 10:00 UTC,
// a 60 second poll interval and moderate fan-out.
func DefaultConfig() Config {
	return Config{
		DigestHour:      10,
		DigestMinute:    0,
		PollInterval:    60 * time.Second,
		ChatPageSize:    100,
		LinkParallelism: 10,
	}
}

// Stats contains counters for one scan pass.
type Stats struct {
	Chats       int
	FailedChats int
	Updates     int
	Duration    time.Duration
}

// Service is the scan orchestrator.
type Service struct {
	ChatRepo repository.ChatRepository
	LinkRepo repository.LinkRepository
	Registry ClientRegistry
	Notifier notify.Service
	Config   Config

	// Now is the clock used for tick matching; tests override it.
	Now func() time.Time

	scanning atomic.Bool
}

// NewService creates a scan service with the provided dependencies.
func NewService(
	chatRepo repository.ChatRepository,
	linkRepo repository.LinkRepository,
	registry ClientRegistry,
	notifier notify.Service,
	config Config,
) *Service {
	return &Service{
		ChatRepo: chatRepo,
		LinkRepo: linkRepo,
		Registry: registry,
		Notifier: notifier,
		Config:   config,
		Now:      time.Now,
	}
}

// Run executes the scan loop until the context is canceled. Each wall-clock
// match of the configured digest hour:minute triggers one full pass; a pass
// still in flight when the next tick matches makes the new tick a no-op.
func (s *Service) Run(ctx context.Context) error {
	slog.Info("scan loop started",
		slog.Int("digest_hour", s.Config.DigestHour),
		slog.Int("digest_minute", s.Config.DigestMinute),
		slog.Duration("poll_interval", s.Config.PollInterval))

	for {
		if s.shouldScan(s.Now()) {
			s.runTick(ctx)
		}

		select {
		case <-ctx.Done():
			slog.Info("scan loop stopped")
			return ctx.Err()
		case <-time.After(s.Config.PollInterval):
		}
	}
}

func (s *Service) shouldScan(now time.Time) bool {
	now = now.UTC()
	return now.Hour() == s.Config.DigestHour && now.Minute() == s.Config.DigestMinute
}

// runTick executes one guarded scan pass. Panics are contained here so a bad
// tick cannot take down the loop.
func (s *Service) runTick(ctx context.Context) {
	if !s.scanning.CompareAndSwap(false, true) {
		slog.Warn("scan already in progress, skipping tick")
		return
	}
	defer s.scanning.Store(false)

	ctx = logging.WithScanID(ctx, logging.NewScanID())
	logger := logging.WithScanContext(ctx, slog.Default())
	ctx = logging.WithLogger(ctx, logger)
	logger.Info("scan pass started")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("scan pass panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			metrics.RecordScanPass("panic", 0)
		}
	}()

	stats, err := s.ScanOnce(ctx)
	if err != nil {
		logger.Error("scan pass failed", slog.Any("error", err))
		metrics.RecordScanPass("failure", stats.Duration)
		return
	}
	metrics.RecordScanPass("success", stats.Duration)
}

// ScanOnce runs a single full pagination pass over all registered chats.
// A failure while processing one chat is contained to that chat; only a chat
// page read failure aborts the pass.
func (s *Service) ScanOnce(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}
	defer func() { stats.Duration = time.Since(start) }()

	for offset := 0; ; {
		chatIDs, err := s.ChatRepo.GetChats(ctx, s.Config.ChatPageSize, offset)
		if err != nil {
			return stats, fmt.Errorf("ScanOnce: chats page at offset %d: %w", offset, err)
		}
		if len(chatIDs) == 0 {
			break
		}

		for _, chatID := range chatIDs {
			s.processChat(ctx, chatID, stats)
		}

		// a short page is the last page
		if len(chatIDs) < s.Config.ChatPageSize {
			break
		}
		offset += len(chatIDs)
	}

	logging.FromContext(ctx).Info("scan pass completed",
		slog.Int("chats", stats.Chats),
		slog.Int("failed_chats", stats.FailedChats),
		slog.Int("updates", stats.Updates),
		slog.Duration("duration", time.Since(start)))
	return stats, nil
}

// processChat collects one chat's updates and hands them to the notifier.
// Any failure is absorbed: the chat simply receives no digest this cycle.
func (s *Service) processChat(ctx context.Context, chatID int64, stats *Stats) {
	stats.Chats++
	logger := logging.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			stats.FailedChats++
			logger.Error("chat scan panicked",
				slog.Int64("chat_id", chatID),
				slog.Any("panic", r))
		}
	}()

	events, err := s.CollectUpdates(ctx, chatID)
	if err != nil {
		stats.FailedChats++
		logger.Error("chat scan failed",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err))
		return
	}
	if len(events) == 0 {
		return
	}
	stats.Updates += len(events)

	if err := s.Notifier.SendDigest(ctx, chatID, events); err != nil {
		logger.Error("digest handoff rejected",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err))
	}
}

// CollectUpdates checks all of one chat's tracked links concurrently and
// returns the detected updates in link submission order. One link's failure
// never cancels its siblings.
func (s *Service) CollectUpdates(ctx context.Context, chatID int64) ([]*entity.UpdateEvent, error) {
	links, err := s.LinkRepo.GetLinks(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("CollectUpdates: links for chat %d: %w", chatID, err)
	}
	logger := logging.FromContext(ctx)
	if len(links) == 0 {
		logger.Info("chat tracks no links", slog.Int64("chat_id", chatID))
		return nil, nil
	}

	sem := make(chan struct{}, s.Config.LinkParallelism)
	results := make([]*entity.UpdateEvent, len(links))

	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link *entity.Link) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("link check panicked",
						slog.Int64("link_id", link.ID),
						slog.String("url", link.URL),
						slog.Any("panic", r))
				}
			}()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.checkLink(ctx, link)
		}(i, link)
	}
	wg.Wait()

	events := make([]*entity.UpdateEvent, 0, len(links))
	for _, event := range results {
		if event != nil {
			events = append(events, event)
		}
	}
	return events, nil
}

// checkLink resolves and runs one freshness check, stamping the link's
// last-updated timestamp on success. All failures reduce to "no update".
func (s *Service) checkLink(ctx context.Context, link *entity.Link) *entity.UpdateEvent {
	logger := logging.FromContext(ctx)

	client, u, err := s.Registry.Resolve(link.URL)
	if err != nil {
		if errors.Is(err, clients.ErrUnsupportedService) {
			logger.Warn("link host not supported, skipping",
				slog.Int64("link_id", link.ID),
				slog.String("url", link.URL))
			metrics.RecordLinkCheck("unknown", "unsupported")
			return nil
		}
		logger.Warn("link URL did not parse, skipping",
			slog.Int64("link_id", link.ID),
			slog.String("url", link.URL),
			slog.Any("error", err))
		metrics.RecordLinkCheck("unknown", "invalid_url")
		return nil
	}
	host := u.Hostname()

	event, err := client.CheckUpdates(ctx, u, link.LastUpdated)
	if err != nil {
		logger.Warn("link check failed",
			slog.Int64("link_id", link.ID),
			slog.String("url", link.URL),
			slog.Any("error", err))
		metrics.RecordLinkCheck(host, "error")
		return nil
	}
	if event == nil {
		metrics.RecordLinkCheck(host, "no_update")
		return nil
	}

	if err := s.LinkRepo.SetLastUpdated(ctx, link.ID, event.CreatedAt); err != nil {
		// deliver anyway: a repeated notification next cycle beats a lost one
		logger.Error("failed to stamp last-updated",
			slog.Int64("link_id", link.ID),
			slog.Time("created_at", event.CreatedAt),
			slog.Any("error", err))
	}
	metrics.RecordLinkCheck(host, "update")
	return event
}
