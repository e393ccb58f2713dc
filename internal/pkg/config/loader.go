// Package config provides fail-open environment configuration loading.
// Invalid values never stop a process from starting: the loader falls back to
// a safe default and surfaces the problem through warnings and metrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult is the outcome of loading one configuration value.
// Value holds the loaded (or fallback) value; Warnings carries one message
// per fallback applied.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString reads a string environment variable, returning the default
// when unset. No validation is applied.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback reads a string environment variable and validates it.
// An unset variable returns the default silently; a value failing validation
// returns the default with a warning.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fmt.Sprintf("%s=%q rejected (%v), using default %q", envKey, value, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}
	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration reads a duration environment variable (Go duration syntax,
// e.g. "30s", "5m"). Parse or validation failures fall back to the default
// with a warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fmt.Sprintf("%s=%q is not a duration (%v), using default %v", envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fmt.Sprintf("%s=%v rejected (%v), using default %v", envKey, value, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}
	return ConfigLoadResult{Value: value}
}

// LoadEnvInt reads an integer environment variable. Parse or validation
// failures fall back to the default with a warning.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fmt.Sprintf("%s=%q is not an integer (%v), using default %d", envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fmt.Sprintf("%s=%d rejected (%v), using default %d", envKey, value, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}
	return ConfigLoadResult{Value: value}
}

