// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/vermillion-mc/vermillion/internal/issue"
	"github.com/vermillion-mc/vermillion/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "vermillion"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "vermillion.config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every environment override (VERMILLION_LOG_LEVEL, ...).
	EnvPrefix = "VERMILLION"
)

//go:embed config_schema.cue
var configSchema string

// Load reads configuration with the default provider.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return NewProvider().Load(ctx, opts)
}

// Resolve returns the config file that Load would read for opts, or ""
// when none exists.
func Resolve(opts LoadOptions) string {
	if opts.ConfigFilePath != "" {
		return string(opts.ConfigFilePath)
	}
	path := filepath.Join(string(opts.RootDir), ConfigFileName+"."+ConfigFileExt)
	if fileExists(path) {
		return path
	}
	return ""
}

// loadWithOptions performs option-driven config loading.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("descriptor", defaults.Descriptor)
	v.SetDefault("identity_file", defaults.IdentityFile)
	v.SetDefault("staging", defaults.Staging)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := Resolve(opts)
	if opts.ConfigFilePath != "" && !fileExists(resolvedPath) {
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(resolvedPath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'vermillion config show' to see the default configuration").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %s", resolvedPath)).
			BuildError()
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema.
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Check VERMILLION_* environment variables for typos").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Note: This uses manual CUE parsing instead of cueutil.ParseAndDecode because
// the result is a map merged into Viper, and every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// vermillion configuration\n\n")
	fmt.Fprintf(&sb, "log_level: %q\n", cfg.LogLevel)
	fmt.Fprintf(&sb, "concurrency: %d\n", cfg.Concurrency)
	if cfg.Descriptor != "" {
		fmt.Fprintf(&sb, "descriptor: %q\n", cfg.Descriptor)
	}
	if cfg.IdentityFile != "" {
		fmt.Fprintf(&sb, "identity_file: %q\n", cfg.IdentityFile)
	}
	if cfg.Staging != "" {
		fmt.Fprintf(&sb, "staging: %q\n", cfg.Staging)
	}
	return sb.String()
}
