package config

import "fmt"

// ConfigurationError is returned when a run cannot start because a required
// setting is missing or invalid. It aborts before any network access.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Message)
}

// NewConfigurationError creates a ConfigurationError for the given key.
func NewConfigurationError(key, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: fmt.Sprintf(format, args...)}
}
