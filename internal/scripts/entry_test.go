// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"path/filepath"
	"testing"

	"github.com/vermillion-mc/vermillion/internal/testutil"
)

func TestSynthesizeEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{name: "empty root", want: EntryFile},
		{name: "author index.ts", existing: "index.ts", want: FallbackEntryFile},
		{name: "author index.js", existing: "index.js", want: FallbackEntryFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			if tt.existing != "" {
				testutil.MustWriteFile(t, filepath.Join(root, tt.existing), "authored")
			}

			name, err := SynthesizeEntry(root, []string{"./a", "./b/c"})
			if err != nil {
				t.Fatalf("SynthesizeEntry() error = %v", err)
			}
			if name != tt.want {
				t.Errorf("name = %q, want %q", name, tt.want)
			}
			if got := testutil.MustReadFile(t, filepath.Join(root, name)); got != "import \"./a\";\nimport \"./b/c\";\n" {
				t.Errorf("entry content = %q", got)
			}
			if tt.existing != "" {
				if got := testutil.MustReadFile(t, filepath.Join(root, tt.existing)); got != "authored" {
					t.Errorf("%s was overwritten: %q", tt.existing, got)
				}
			}
		})
	}
}

func TestSynthesizeEntryUnwritableRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "missing")
	if _, err := SynthesizeEntry(root, []string{"./a"}); err == nil {
		t.Error("SynthesizeEntry() should fail when the root does not exist")
	}
}
