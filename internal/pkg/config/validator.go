package config

import (
	"fmt"
	"time"
)

// ValidateHourOfDay checks that value is a valid hour (0-23).
func ValidateHourOfDay(value int) error {
	if value < 0 || value > 23 {
		return fmt.Errorf("hour %d out of range [0, 23]", value)
	}
	return nil
}

// ValidateMinuteOfHour checks that value is a valid minute (0-59).
func ValidateMinuteOfHour(value int) error {
	if value < 0 || value > 59 {
		return fmt.Errorf("minute %d out of range [0, 59]", value)
	}
	return nil
}

// ValidateDuration checks that a duration lies within [min, max].
func ValidateDuration(duration, min, max time.Duration) error {
	if duration < min || duration > max {
		return fmt.Errorf("duration %v out of range [%v, %v]", duration, min, max)
	}
	return nil
}

// ValidatePositiveDuration checks that a duration is strictly positive.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration %v must be positive", duration)
	}
	return nil
}

// ValidateIntRange checks that value lies within [min, max].
func ValidateIntRange(value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("value %d out of range [%d, %d]", value, min, max)
	}
	return nil
}
