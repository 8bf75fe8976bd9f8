// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the build packages
// (descriptor, manifest, buildctx). They carry validation but no domain
// behavior.
//
// This package is a leaf dependency: it imports only the standard library.
package types
