// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error types for the build.
//
// ActionableError carries the failed operation, the file involved and
// suggestions for fixing it. Fatal build conditions additionally link to a
// markdown entry of the issue catalog, rendered with glamour when the CLI
// runs in verbose mode.
package issue
