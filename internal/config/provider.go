// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/vermillion-mc/vermillion/pkg/types"
)

// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
var ErrInvalidLoadOptions = errors.New("invalid load options")

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath types.FilesystemPath
		// RootDir is searched for vermillion.config.cue when ConfigFilePath is empty.
		RootDir types.FilesystemPath
	}

	// InvalidLoadOptionsError collects field-level validation errors.
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks non-empty fields. Both fields are optional.
func (o LoadOptions) Validate() error {
	var errs []error
	if o.ConfigFilePath != "" {
		if err := o.ConfigFilePath.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("config file: %w", err))
		}
	}
	if o.RootDir != "" {
		if err := o.RootDir.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("root dir: %w", err))
		}
	}
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidLoadOptions for errors.Is() compatibility.
func (e *InvalidLoadOptionsError) Unwrap() error { return ErrInvalidLoadOptions }
