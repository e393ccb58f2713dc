// Package worker holds the operational shell of the scanner process:
// environment configuration with fail-open fallbacks and the health check
// server used by container probes.
package worker

import (
	"log/slog"
	"time"

	"linktracker/internal/pkg/config"
	"linktracker/internal/usecase/scan"
)

// TransportHTTP and TransportKafka are the supported notification transports.
const (
	TransportHTTP  = "HTTP"
	TransportKafka = "KAFKA"
)

// ScannerConfig holds the operational configuration of the scanner process.
// All fields have safe defaults; invalid environment values fall back rather
// than aborting startup.
type ScannerConfig struct {
	// DigestHour and DigestMinute are the UTC time of day a scan pass starts.
	DigestHour   int
	DigestMinute int

	// PollInterval is the sleep between scan-loop clock checks.
	PollInterval time.Duration

	// ChatPageSize is the page size for chat enumeration.
	ChatPageSize int

	// LinkParallelism bounds concurrent link checks within one chat.
	LinkParallelism int

	// ClientTimeout is the per-request timeout for tracked-service calls.
	ClientTimeout time.Duration

	// Transport selects the notification transport (HTTP or KAFKA).
	Transport string

	// HealthPort is the port of the health check server.
	HealthPort int
}

// DefaultConfig returns production defaults: daily digest at 10:00 UTC,
// 60 second polling, pages of 100 chats and the HTTP transport.
func DefaultConfig() ScannerConfig {
	return ScannerConfig{
		DigestHour:      10,
		DigestMinute:    0,
		PollInterval:    60 * time.Second,
		ChatPageSize:    100,
		LinkParallelism: 10,
		ClientTimeout:   10 * time.Second,
		Transport:       TransportHTTP,
		HealthPort:      9091,
	}
}

// ScanConfig converts the operational config into the scan loop's config.
func (c ScannerConfig) ScanConfig() scan.Config {
	return scan.Config{
		DigestHour:      c.DigestHour,
		DigestMinute:    c.DigestMinute,
		PollInterval:    c.PollInterval,
		ChatPageSize:    c.ChatPageSize,
		LinkParallelism: c.LinkParallelism,
	}
}

// LoadConfigFromEnv loads the scanner configuration from environment
// variables with a fail-open strategy: an invalid value logs a warning,
// is counted in metrics and falls back to its default.
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.ConfigMetrics) *ScannerConfig {
	cfg := DefaultConfig()
	fallbackApplied := false

	applyFallback := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvInt("DIGEST_HOUR", cfg.DigestHour, config.ValidateHourOfDay)
	cfg.DigestHour = result.Value.(int)
	applyFallback("digest_hour", result)

	result = config.LoadEnvInt("DIGEST_MINUTE", cfg.DigestMinute, config.ValidateMinuteOfHour)
	cfg.DigestMinute = result.Value.(int)
	applyFallback("digest_minute", result)

	result = config.LoadEnvDuration("SCAN_POLL_INTERVAL", cfg.PollInterval, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, time.Hour)
	})
	cfg.PollInterval = result.Value.(time.Duration)
	applyFallback("scan_poll_interval", result)

	result = config.LoadEnvInt("CHAT_PAGE_SIZE", cfg.ChatPageSize, func(v int) error {
		return config.ValidateIntRange(v, 1, 10000)
	})
	cfg.ChatPageSize = result.Value.(int)
	applyFallback("chat_page_size", result)

	result = config.LoadEnvInt("LINK_PARALLELISM", cfg.LinkParallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 100)
	})
	cfg.LinkParallelism = result.Value.(int)
	applyFallback("link_parallelism", result)

	result = config.LoadEnvDuration("CLIENT_TIMEOUT", cfg.ClientTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 5*time.Minute)
	})
	cfg.ClientTimeout = result.Value.(time.Duration)
	applyFallback("client_timeout", result)

	result = config.LoadEnvWithFallback("MESSAGE_TRANSPORT", cfg.Transport, ValidateTransport)
	cfg.Transport = result.Value.(string)
	applyFallback("message_transport", result)

	result = config.LoadEnvInt("HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	applyFallback("health_port", result)

	metrics.RecordLoadTimestamp()
	metrics.SetFallbackActive(fallbackApplied)

	return &cfg
}

// ValidateTransport checks the notification transport selector.
func ValidateTransport(transport string) error {
	switch transport {
	case TransportHTTP, TransportKafka:
		return nil
	default:
		return &unknownTransportError{transport: transport}
	}
}

type unknownTransportError struct{ transport string }

func (e *unknownTransportError) Error() string {
	return "unknown transport " + e.transport + " (want HTTP or KAFKA)"
}
