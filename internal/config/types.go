// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const (
	// LogLevelDebug enables per-file transform logging.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn only reports problems.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError only reports failures.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConcurrency is returned for a negative concurrency limit.
	ErrInvalidConcurrency = errors.New("invalid concurrency")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level the CLI logger emits.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the tool configuration.
	Config struct {
		// LogLevel sets the logger level (default: info)
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// Concurrency bounds parallel script transforms; 0 means one per CPU
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
		// Descriptor overrides the addon descriptor path, relative to the root
		Descriptor string `json:"descriptor" mapstructure:"descriptor"`
		// IdentityFile overrides the identity store path, relative to the root
		IdentityFile string `json:"identity_file" mapstructure:"identity_file"`
		// Staging overrides the staging directory, relative to the root
		Staging string `json:"staging" mapstructure:"staging"`
	}
)

// DefaultConfig returns the default configuration. Empty path overrides
// leave the build context defaults in place.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    LogLevelInfo,
		Concurrency: 0,
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Validate returns an error if the LogLevel is not one of the defined levels.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel so callers can use errors.Is for programmatic detection.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Validate returns an error if any field of the Config is invalid.
func (c *Config) Validate() error {
	var errs []error
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: %d must not be negative", ErrInvalidConcurrency, c.Concurrency))
	}
	for name, path := range map[string]string{
		"descriptor":    c.Descriptor,
		"identity_file": c.IdentityFile,
		"staging":       c.Staging,
	} {
		if path != "" && strings.TrimSpace(path) == "" {
			errs = append(errs, fmt.Errorf("%s: path must not be whitespace-only", name))
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Workers returns the effective transform concurrency.
func (c *Config) Workers() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return runtime.NumCPU()
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so both the
// sentinel and the field-level causes match errors.Is().
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
