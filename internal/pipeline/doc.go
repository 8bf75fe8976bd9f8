// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs one export: identities, manifests, scripts and pack
// assembly, in that order.
package pipeline
