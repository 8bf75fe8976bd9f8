// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the vermillion CLI commands.
//
// Invoked without a subcommand, vermillion runs a build, which is how a
// Regolith profile calls it as a filter.
package cmd
