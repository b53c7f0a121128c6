package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRequired rejects an empty value.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidatePort rejects ports outside 1-65535.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidatePositive rejects zero and negative values.
func ValidatePositive(field string, value int) error {
	if value <= 0 {
		return &ValidationError{Field: field, Message: "must be greater than zero"}
	}
	return nil
}

// ValidateOneOf rejects values outside allowed.
func ValidateOneOf(field, value string, allowed ...string) error {
	if !slices.Contains(allowed, value) {
		return &ValidationError{
			Field:   field,
			Message: "must be one of: " + strings.Join(allowed, ", "),
		}
	}
	return nil
}

// ValidateLogLevel checks a logger level name.
func ValidateLogLevel(field, level string) error {
	return ValidateOneOf(field, level, "debug", "info", "warn", "warning", "error", "fatal")
}
