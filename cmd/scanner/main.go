package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"linktracker/internal/config"
	pgRepo "linktracker/internal/infra/adapter/persistence/postgres"
	sqliteRepo "linktracker/internal/infra/adapter/persistence/sqlite"
	"linktracker/internal/infra/clients"
	"linktracker/internal/infra/db"
	"linktracker/internal/infra/notifier"
	"linktracker/internal/infra/queue"
	workerPkg "linktracker/internal/infra/worker"
	"linktracker/internal/observability/logging"
	pkgconfig "linktracker/internal/pkg/config"
	"linktracker/internal/repository"
	"linktracker/internal/usecase/notify"
	"linktracker/internal/usecase/scan"
)

func main() {
	logger := initLogger()

	database, backend := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate(ctx, database, backend); err != nil {
		logger.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready", slog.String("backend", backend))

	// Load scanner configuration (fail-open strategy)
	configMetrics := pkgconfig.NewConfigMetrics("scanner")
	scannerConfig := workerPkg.LoadConfigFromEnv(logger, configMetrics)
	logger.Info("scanner configuration loaded",
		slog.Int("digest_hour", scannerConfig.DigestHour),
		slog.Int("digest_minute", scannerConfig.DigestMinute),
		slog.Duration("poll_interval", scannerConfig.PollInterval),
		slog.String("transport", scannerConfig.Transport),
		slog.Int("health_port", scannerConfig.HealthPort))

	chatRepo, linkRepo := buildRepositories(database, backend)
	registry := clients.NewRegistry(loadClientSettings(scannerConfig.ClientTimeout))

	transport, transportCleanup, err := setupTransport(logger, scannerConfig.Transport)
	if err != nil {
		logger.Error("failed to set up notification transport", slog.Any("error", err))
		os.Exit(1)
	}
	defer transportCleanup()

	notifyService := notify.NewService(transport)
	scanService := scan.NewService(chatRepo, linkRepo, registry, notifyService, scannerConfig.ScanConfig())

	startMetricsServer(ctx, logger)
	db.StartPoolStatsReporter(ctx, database, 15*time.Second)

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", scannerConfig.HealthPort), logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := healthServer.Start(groupCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		healthServer.SetReady(true)
		return scanService.Run(groupCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scanner stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("scanner stopped")
}

// initLogger initializes the process-wide structured logger. LOG_FORMAT=text
// switches to the human-readable handler for local runs.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	if os.Getenv("LOG_FORMAT") == "text" {
		logger = logging.NewTextLogger()
	}
	slog.SetDefault(logger)
	return logger
}

// migrate applies the schema for the selected backend. Both backends are
// self-contained; no external migration step is required.
func migrate(ctx context.Context, database *sql.DB, backend string) error {
	if backend == db.BackendSQLite {
		return sqliteRepo.Migrate(ctx, database)
	}
	return db.MigrateUp(database)
}

// buildRepositories wires the persistence adapters for the selected backend.
func buildRepositories(database *sql.DB, backend string) (repository.ChatRepository, repository.LinkRepository) {
	if backend == db.BackendSQLite {
		return sqliteRepo.NewChatRepo(database), sqliteRepo.NewLinkRepo(database)
	}
	return pgRepo.NewChatRepo(database), pgRepo.NewLinkRepo(database)
}

// loadClientSettings builds tracked-service client settings from defaults
// plus optional environment overrides for API credentials.
func loadClientSettings(timeout time.Duration) clients.Settings {
	settings := clients.DefaultSettings()
	settings.Timeout = timeout

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		settings.GitHubToken = token
	}
	if key := os.Getenv("STACKOVERFLOW_API_KEY"); key != "" {
		settings.StackOverflowAPIKey = key
	}
	return settings
}

// setupTransport builds the notification transport selected by configuration.
// Endpoint details come from the YAML file at TRANSPORT_CONFIG_PATH when it
// exists, with BOT_API_URL and KAFKA_BROKERS environment overrides on top.
func setupTransport(logger *slog.Logger, transport string) (notify.Transport, func(), error) {
	transportConfig, err := loadTransportConfig(logger)
	if err != nil {
		return nil, nil, err
	}

	switch transport {
	case workerPkg.TransportKafka:
		if err := transportConfig.ValidateForKafka(); err != nil {
			return nil, nil, err
		}
		producer, err := queue.NewSyncProducer(transportConfig.Kafka.Brokers)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		kafkaTransport := queue.NewKafkaTransport(producer, queue.KafkaConfig{
			Brokers:         transportConfig.Kafka.Brokers,
			UpdatesTopic:    transportConfig.Kafka.TopicUpdates,
			DigestTopic:     transportConfig.Kafka.TopicDigest,
			DeadLetterTopic: transportConfig.Kafka.TopicDLQ,
		})
		logger.Info("kafka transport initialized",
			slog.Any("brokers", transportConfig.Kafka.Brokers),
			slog.String("digest_topic", transportConfig.Kafka.TopicDigest),
			slog.String("dlq_topic", transportConfig.Kafka.TopicDLQ))
		cleanup := func() {
			if err := kafkaTransport.Close(); err != nil {
				logger.Error("failed to close kafka transport", slog.Any("error", err))
			}
		}
		return kafkaTransport, cleanup, nil

	default:
		if err := transportConfig.ValidateForHTTP(); err != nil {
			return nil, nil, err
		}
		httpTransport := notifier.NewHTTPTransport(notifier.HTTPConfig{
			BaseURL: strings.TrimRight(transportConfig.HTTP.BotAPIURL, "/"),
			Timeout: 30 * time.Second,
		})
		logger.Info("http transport initialized",
			slog.String("bot_api_url", transportConfig.HTTP.BotAPIURL))
		return httpTransport, func() {}, nil
	}
}

// loadTransportConfig reads the optional YAML file and applies environment
// overrides. A missing file is not an error; overrides alone can carry a
// deployment.
func loadTransportConfig(logger *slog.Logger) (*config.TransportConfig, error) {
	path := os.Getenv("TRANSPORT_CONFIG_PATH")
	if path == "" {
		path = "config/transport.yaml"
	}

	transportConfig := config.DefaultTransportConfig()
	if _, err := os.Stat(path); err == nil {
		transportConfig, err = config.LoadTransportConfig(path)
		if err != nil {
			return nil, err
		}
		logger.Info("transport configuration loaded", slog.String("path", path))
	} else {
		logger.Info("transport configuration file absent, using environment overrides",
			slog.String("path", path))
	}

	if botAPIURL := os.Getenv("BOT_API_URL"); botAPIURL != "" {
		transportConfig.HTTP.BotAPIURL = botAPIURL
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		transportConfig.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return transportConfig, nil
}
