// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/vermillion-mc/vermillion/pkg/cueutil"
)

// ErrMalformedTSConfig is returned when tsconfig.json exists but cannot be read.
var ErrMalformedTSConfig = errors.New("malformed tsconfig")

//go:embed tsconfig_schema.cue
var tsconfigSchema []byte

type tsconfig struct {
	CompilerOptions struct {
		Paths map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// LoadTSConfig reads the path alias table from the tsconfig.json at path and
// anchors it at root, the script staging root. The tsconfig's own baseUrl is
// ignored: alias targets always name files inside the staged tree, so the
// rewritten imports stay inside the behavior pack. A missing file yields an
// empty table.
func LoadTSConfig(path, root string) (*PathAliases, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewPathAliases(root, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTSConfig, err)
	}

	result, err := cueutil.ParseAndDecode[tsconfig](tsconfigSchema, data, "#TSConfig", cueutil.WithFilename(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTSConfig, err)
	}

	return NewPathAliases(root, result.Value.CompilerOptions.Paths), nil
}
