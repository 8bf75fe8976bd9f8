// SPDX-License-Identifier: MPL-2.0

// Package config handles tool configuration using Viper with CUE as the file format.
//
// Configuration is read from vermillion.config.cue at the project root, or from the
// file named by --config. Every field can also be set through VERMILLION_* environment
// variables. File contents are validated against an embedded CUE schema
// (config_schema.cue) before being merged into Viper.
package config
