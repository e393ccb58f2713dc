package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
}

func TestBackendFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected string
	}{
		{name: "unset defaults to postgres", envValue: "", expected: BackendPostgres},
		{name: "explicit postgres", envValue: "postgres", expected: BackendPostgres},
		{name: "sqlite", envValue: "sqlite", expected: BackendSQLite},
		{name: "case insensitive", envValue: "SQLITE", expected: BackendSQLite},
		{name: "unknown falls back to postgres", envValue: "oracle", expected: BackendPostgres},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_BACKEND", tt.envValue)
			assert.Equal(t, tt.expected, backendFromEnv())
		})
	}
}

func TestGetConnectionConfigFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want ConnectionConfig
	}{
		{
			name: "no overrides use defaults",
			env:  map[string]string{},
			want: DefaultConnectionConfig(),
		},
		{
			name: "all custom values",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":     "100",
				"DB_MAX_IDLE_CONNS":     "50",
				"DB_CONN_MAX_LIFETIME":  "2h",
				"DB_CONN_MAX_IDLE_TIME": "45m",
			},
			want: ConnectionConfig{
				MaxOpenConns:    100,
				MaxIdleConns:    50,
				ConnMaxLifetime: 2 * time.Hour,
				ConnMaxIdleTime: 45 * time.Minute,
			},
		},
		{
			name: "invalid values keep defaults",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":     "not-a-number",
				"DB_MAX_IDLE_CONNS":     "-5",
				"DB_CONN_MAX_LIFETIME":  "0s",
				"DB_CONN_MAX_IDLE_TIME": "later",
			},
			want: DefaultConnectionConfig(),
		},
		{
			name: "partial overrides",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":    "75",
				"DB_CONN_MAX_LIFETIME": "3h",
			},
			want: ConnectionConfig{
				MaxOpenConns:    75,
				MaxIdleConns:    10,
				ConnMaxLifetime: 3 * time.Hour,
				ConnMaxIdleTime: 30 * time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
				"DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
			} {
				t.Setenv(key, tt.env[key])
			}

			assert.Equal(t, tt.want, getConnectionConfigFromEnv())
		})
	}
}
