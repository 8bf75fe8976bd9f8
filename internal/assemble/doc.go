// SPDX-License-Identifier: MPL-2.0

// Package assemble writes the composed manifests and the shared assets into
// each included pack.
package assemble
