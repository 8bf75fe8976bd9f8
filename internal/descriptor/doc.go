// SPDX-License-Identifier: MPL-2.0

// Package descriptor loads the addon descriptor: the declarative input that
// names the add-on, versions it, selects which packs to produce and
// configures script export.
//
// The descriptor is usually JSON with comments (vermillion.addon.json) and is
// parsed as CUE; a TOML variant (vermillion.addon.toml) is decoded with
// go-toml and validated against the same schema.
package descriptor
