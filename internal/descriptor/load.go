// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/vermillion-mc/vermillion/pkg/cueutil"
)

//go:embed addon_schema.cue
var addonSchema []byte

// Load reads and validates the descriptor at path. Files ending in .toml are
// decoded as TOML; anything else is parsed as CUE, which accepts JSON with
// comments.
func Load(path string) (*Addon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read addon descriptor: %w", err)
	}
	return Parse(path, data)
}

// Parse validates descriptor bytes. name selects the format and labels errors.
func Parse(name string, data []byte) (*Addon, error) {
	var (
		result *cueutil.ParseResult[Addon]
		err    error
	)

	if strings.EqualFold(filepath.Ext(name), ".toml") {
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, name, err)
		}
		result, err = cueutil.ParseValueAndDecode[Addon](addonSchema, raw, "#Addon", cueutil.WithFilename(name))
	} else {
		result, err = cueutil.ParseAndDecode[Addon](addonSchema, data, "#Addon", cueutil.WithFilename(name))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	addon := result.Value
	if err := addon.Validate(); err != nil {
		return nil, err
	}
	return addon, nil
}
