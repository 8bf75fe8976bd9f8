// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrValidation is the sentinel wrapped by every ValidationError, so callers
// can tell a malformed input file apart from an I/O failure.
var ErrValidation = errors.New("validation failed")

// ValidationError describes every CUE problem found in one input file.
type ValidationError struct {
	// FilePath is the file being validated.
	FilePath string

	// Issues holds one "<json-path>: <message>" line per CUE error.
	Issues []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s: %s", e.FilePath, e.Issues[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(e.Issues, "\n  "))
}

// Unwrap returns ErrValidation for errors.Is() compatibility.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// FormatError formats a CUE error with JSON path prefixes for clear error messages.
//
// Error format: <file-path>: <json-path>: <message>
//
// Examples:
//   - vermillion.addon.json: scripts.entrypoints[0]: conflicting values 1 and string
//   - uuids.json: BP.header: invalid value "abc"
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	issues := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		pathStr := formatPath(cueerrors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if pathStr != "" {
			issues = append(issues, pathStr+": "+msg)
		} else {
			issues = append(issues, msg)
		}
	}

	return &ValidationError{FilePath: filePath, Issues: issues}
}

// formatPath converts a CUE error path (["scripts", "entrypoints", "0"]) to
// JSON-path notation ("scripts.entrypoints[0]").
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			result.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

// CheckFileSize verifies that data does not exceed the specified maximum size.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
