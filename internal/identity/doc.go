// SPDX-License-Identifier: MPL-2.0

// Package identity persists the stable identifiers of the output packs.
//
// Every addressable unit of the two packs (headers and modules) owns a slot.
// The first build generates one random UUID per slot and writes them to the
// identity file before anything else happens; every later build reads the
// same values back, so re-packaging never breaks references held by the game
// or by dependent packs. A record is never regenerated slot by slot: it is
// either read whole, or created whole when the file is absent, or discarded
// whole by an explicit Reset.
package identity
