package db

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"linktracker/internal/observability/metrics"
)

// Supported values for the DB_BACKEND environment variable.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open creates and configures a database connection pool for the backend
// selected by DB_BACKEND. It reads DATABASE_URL from the environment and
// returns the pool together with the resolved backend name.
func Open() (*sql.DB, string) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	backend := backendFromEnv()
	driver := "pgx"
	if backend == BackendSQLite {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Fatal(err)
	}

	if backend == BackendSQLite {
		// A single connection keeps PRAGMA state (foreign_keys) consistent
		// and avoids SQLITE_BUSY under concurrent writes.
		db.SetMaxOpenConns(1)
		slog.Info("database connection pool configured",
			slog.String("backend", backend),
			slog.Int("max_open_conns", 1))
	} else {
		cfg := getConnectionConfigFromEnv()
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
		slog.Info("database connection pool configured",
			slog.String("backend", backend),
			slog.Int("max_open_conns", cfg.MaxOpenConns),
			slog.Int("max_idle_conns", cfg.MaxIdleConns),
			slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
			slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	slog.Info("database connection established successfully")
	return db, backend
}

// StartPoolStatsReporter periodically exports connection pool statistics as
// Prometheus gauges until ctx is canceled.
func StartPoolStatsReporter(ctx context.Context, db *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := db.Stats()
				metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
			}
		}
	}()
}

// backendFromEnv resolves DB_BACKEND, defaulting to postgres. Unknown values
// fall back to postgres with a warning rather than aborting startup.
func backendFromEnv() string {
	switch backend := strings.ToLower(os.Getenv("DB_BACKEND")); backend {
	case "", BackendPostgres:
		return BackendPostgres
	case BackendSQLite:
		return BackendSQLite
	default:
		slog.Warn("unknown DB_BACKEND, falling back to postgres",
			slog.String("value", backend))
		return BackendPostgres
	}
}

// getConnectionConfigFromEnv reads connection pool configuration from
// environment variables, falling back to defaults on missing or invalid values.
func getConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()

	if maxOpen := os.Getenv("DB_MAX_OPEN_CONNS"); maxOpen != "" {
		if val, err := strconv.Atoi(maxOpen); err == nil && val > 0 {
			cfg.MaxOpenConns = val
		}
	}

	if maxIdle := os.Getenv("DB_MAX_IDLE_CONNS"); maxIdle != "" {
		if val, err := strconv.Atoi(maxIdle); err == nil && val > 0 {
			cfg.MaxIdleConns = val
		}
	}

	if lifetime := os.Getenv("DB_CONN_MAX_LIFETIME"); lifetime != "" {
		if val, err := time.ParseDuration(lifetime); err == nil && val > 0 {
			cfg.ConnMaxLifetime = val
		}
	}

	if idleTime := os.Getenv("DB_CONN_MAX_IDLE_TIME"); idleTime != "" {
		if val, err := time.ParseDuration(idleTime); err == nil && val > 0 {
			cfg.ConnMaxIdleTime = val
		}
	}

	return cfg
}
