// SPDX-License-Identifier: MPL-2.0

// Package manifest composes the manifest documents of the behavior and
// resource packs.
//
// Documents are built fresh on every call from the identity record and the
// addon descriptor; no shared template is ever mutated. Every identifier
// comes from the identity record and every version field carries the same
// composed version string.
package manifest
