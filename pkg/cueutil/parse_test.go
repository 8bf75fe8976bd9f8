// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Pack: {
	name:         string
	count:        int
	enabled:      bool
	description?: string
	tags?: [...string]
}
`

type testPack struct {
	Name        string   `json:"name"`
	Count       int      `json:"count"`
	Enabled     bool     `json:"enabled"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("JSON with comments parses", func(t *testing.T) {
		t.Parallel()

		data := []byte(`// generated
{
	"name": "test", // inline
	"count": 42,
	"enabled": true,
	"tags": ["a", "b",],
}`)
		result, err := ParseAndDecode[testPack]([]byte(testSchema), data, "#Pack")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Name != "test" || result.Value.Count != 42 || !result.Value.Enabled {
			t.Errorf("unexpected value: %+v", result.Value)
		}
		if len(result.Value.Tags) != 2 {
			t.Errorf("expected 2 tags, got %d", len(result.Value.Tags))
		}
	})

	t.Run("invalid type returns validation error", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "test", count: "nope", enabled: true`)
		_, err := ParseAndDecode[testPack]([]byte(testSchema), data, "#Pack", WithFilename("pack.cue"))
		if err == nil {
			t.Fatal("expected error for invalid type")
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if !strings.Contains(err.Error(), "pack.cue") {
			t.Errorf("error should contain filename, got: %v", err)
		}
	})

	t.Run("missing required field returns error", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "test", enabled: true`)
		if _, err := ParseAndDecode[testPack]([]byte(testSchema), data, "#Pack"); err == nil {
			t.Error("expected error for missing required field")
		}
	})

	t.Run("non-concrete allowed with WithConcrete(false)", func(t *testing.T) {
		t.Parallel()

		schema := `#Opts: { level?: "info" | "debug" }`
		result, err := ParseAndDecodeString[map[string]any](schema, []byte(`{}`), "#Opts", WithConcrete(false))
		if err != nil {
			t.Fatalf("ParseAndDecodeString failed: %v", err)
		}
		if len(*result.Value) != 0 {
			t.Errorf("expected empty map, got %v", *result.Value)
		}
	})

	t.Run("oversized input rejected", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testPack]([]byte(testSchema), []byte(`name: "x"`), "#Pack", WithMaxFileSize(2))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("expected size error, got %v", err)
		}
	})

	t.Run("unknown schema path is internal error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testPack]([]byte(testSchema), []byte(`{}`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "internal error") {
			t.Errorf("expected internal error, got %v", err)
		}
	})
}

func TestParseValueAndDecode(t *testing.T) {
	t.Parallel()

	value := map[string]any{
		"name":    "from-toml",
		"count":   int64(3),
		"enabled": false,
	}
	result, err := ParseValueAndDecode[testPack]([]byte(testSchema), value, "#Pack")
	if err != nil {
		t.Fatalf("ParseValueAndDecode failed: %v", err)
	}
	if result.Value.Name != "from-toml" || result.Value.Count != 3 {
		t.Errorf("unexpected value: %+v", result.Value)
	}

	bad := map[string]any{"name": "x", "count": "three", "enabled": false}
	if _, err := ParseValueAndDecode[testPack]([]byte(testSchema), bad, "#Pack"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
