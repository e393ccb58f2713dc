package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvString(t *testing.T) {
	t.Run("unset returns default", func(t *testing.T) {
		assert.Equal(t, "fallback", LoadEnvString("UNSET_TEST_VAR", "fallback"))
	})

	t.Run("set returns value", func(t *testing.T) {
		t.Setenv("SET_TEST_VAR", "value")
		assert.Equal(t, "value", LoadEnvString("SET_TEST_VAR", "fallback"))
	})
}

func TestLoadEnvWithFallback(t *testing.T) {
	failValidator := func(string) error { return assert.AnError }

	t.Run("unset returns default without warning", func(t *testing.T) {
		result := LoadEnvWithFallback("UNSET_TEST_VAR", "default", failValidator)
		assert.Equal(t, "default", result.Value)
		assert.False(t, result.FallbackApplied)
		assert.Empty(t, result.Warnings)
	})

	t.Run("valid value passes through", func(t *testing.T) {
		t.Setenv("SET_TEST_VAR", "value")
		result := LoadEnvWithFallback("SET_TEST_VAR", "default", nil)
		assert.Equal(t, "value", result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("invalid value falls back with warning", func(t *testing.T) {
		t.Setenv("SET_TEST_VAR", "bad")
		result := LoadEnvWithFallback("SET_TEST_VAR", "default", failValidator)
		assert.Equal(t, "default", result.Value)
		assert.True(t, result.FallbackApplied)
		assert.Len(t, result.Warnings, 1)
	})
}

func TestLoadEnvDuration(t *testing.T) {
	t.Run("unset returns default", func(t *testing.T) {
		result := LoadEnvDuration("UNSET_TEST_VAR", time.Minute, nil)
		assert.Equal(t, time.Minute, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("valid duration is parsed", func(t *testing.T) {
		t.Setenv("DURATION_TEST_VAR", "90s")
		result := LoadEnvDuration("DURATION_TEST_VAR", time.Minute, ValidatePositiveDuration)
		assert.Equal(t, 90*time.Second, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("garbage falls back", func(t *testing.T) {
		t.Setenv("DURATION_TEST_VAR", "soon")
		result := LoadEnvDuration("DURATION_TEST_VAR", time.Minute, nil)
		assert.Equal(t, time.Minute, result.Value)
		assert.True(t, result.FallbackApplied)
	})

	t.Run("validator rejection falls back", func(t *testing.T) {
		t.Setenv("DURATION_TEST_VAR", "-5s")
		result := LoadEnvDuration("DURATION_TEST_VAR", time.Minute, ValidatePositiveDuration)
		assert.Equal(t, time.Minute, result.Value)
		assert.True(t, result.FallbackApplied)
	})
}

func TestLoadEnvInt(t *testing.T) {
	inRange := func(v int) error { return ValidateIntRange(v, 1, 100) }

	t.Run("valid integer is parsed", func(t *testing.T) {
		t.Setenv("INT_TEST_VAR", "42")
		result := LoadEnvInt("INT_TEST_VAR", 10, inRange)
		assert.Equal(t, 42, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("garbage falls back", func(t *testing.T) {
		t.Setenv("INT_TEST_VAR", "many")
		result := LoadEnvInt("INT_TEST_VAR", 10, inRange)
		assert.Equal(t, 10, result.Value)
		assert.True(t, result.FallbackApplied)
	})

	t.Run("out of range falls back", func(t *testing.T) {
		t.Setenv("INT_TEST_VAR", "5000")
		result := LoadEnvInt("INT_TEST_VAR", 10, inRange)
		assert.Equal(t, 10, result.Value)
		assert.True(t, result.FallbackApplied)
	})
}

