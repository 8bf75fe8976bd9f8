// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustSetenvRestores(t *testing.T) {
	const key = "VERMILLION_TESTUTIL_KEY"
	restoreOuter := MustUnsetenv(t, key)
	defer restoreOuter()

	restore := MustSetenv(t, key, "value")
	if got := os.Getenv(key); got != "value" {
		t.Fatalf("Getenv() = %q, want %q", got, "value")
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Error("MustSetenv cleanup should unset a previously unset key")
	}
}

func TestNewProjectLayout(t *testing.T) {
	t.Parallel()

	root := NewProject(t, DefaultDescriptor)
	for _, dir := range []string{".regolith/tmp/BP", ".regolith/tmp/RP", ".regolith/tmp/data"} {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir)))
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
	if !FileExists(filepath.Join(root, "src", "main", "resources", "vermillion.addon.json")) {
		t.Error("expected descriptor file")
	}
	if FileExists(filepath.Join(root, ".regolith")) {
		t.Error("FileExists should be false for directories")
	}
}
