// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// DefaultDescriptor is a complete addon descriptor exercising every field.
const DefaultDescriptor = `{
    // test descriptor
    "name": "Test Add-on",
    "description": "An add-on under test",
    "version": "1.2.0",
    "target": "beta",
    "engine": "1.20.0",
    "packs": { "behavior": true, "resource": true },
    "scripts": {
        "export": true,
        "entrypoints": ["./main"],
        "bundle": false,
        "minify": false,
        "external": [],
        "dependencies": { "@minecraft/server": "1.8.0" },
    },
}
`

// NewProject scaffolds a project root in a temp directory with the staging
// layout the pipeline expects and the given descriptor. It returns the root.
func NewProject(t testing.TB, descriptor string) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{
		".regolith/tmp/BP",
		".regolith/tmp/RP",
		".regolith/tmp/data",
	} {
		MustMkdirAll(t, filepath.Join(root, filepath.FromSlash(dir)))
	}
	MustWriteFile(t, filepath.Join(root, "src", "main", "resources", "vermillion.addon.json"), descriptor)
	return root
}
