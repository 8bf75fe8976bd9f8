// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EntryFile is the synthesized entry name when the author has none.
	EntryFile = "index.ts"
	// FallbackEntryFile is used when the author already owns index.ts or index.js.
	FallbackEntryFile = "___index___.ts"
)

// SynthesizeEntry writes an entry module importing each entrypoint, in order,
// into root and returns its file name. An author-owned index.ts or index.js
// is never overwritten.
func SynthesizeEntry(root string, entrypoints []string) (string, error) {
	name := EntryFile
	for _, existing := range []string{"index.ts", "index.js"} {
		if _, err := os.Stat(filepath.Join(root, existing)); err == nil {
			name = FallbackEntryFile
			break
		}
	}

	if err := os.WriteFile(filepath.Join(root, name), []byte(EntrySource(entrypoints)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write script entry %s: %w", name, err)
	}
	return name, nil
}

// EntrySource renders the entry module body.
func EntrySource(entrypoints []string) string {
	var sb strings.Builder
	for _, e := range entrypoints {
		fmt.Fprintf(&sb, "import %q;\n", e)
	}
	return sb.String()
}
