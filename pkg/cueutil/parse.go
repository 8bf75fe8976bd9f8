// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult contains the result of a successful CUE parse operation.
type ParseResult[T any] struct {
	// Value is the decoded Go struct.
	Value *T

	// Unified is the unified CUE value, available for callers that need
	// to read fields the Go struct does not model.
	Unified cue.Value
}

// ParseAndDecode performs the 3-step CUE parsing flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// Parameters:
//   - schema: The embedded CUE schema bytes (from //go:embed)
//   - data: The user-provided file bytes (CUE or JSON, comments allowed)
//   - schemaPath: The path to the root definition (e.g., "#Addon")
//   - opts: Optional configuration
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaRoot, err := compileSchema(ctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}

	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), options.filename)
	}

	return unifyAndDecode[T](schemaRoot, userValue, options)
}

// ParseValueAndDecode runs steps 2 and 3 of the flow on an already decoded Go
// value (for example a map produced by a TOML decoder), so inputs that are
// not CUE-compatible text still go through the same schema.
func ParseValueAndDecode[T any](schema []byte, value any, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := applyOptions(opts)

	ctx := cuecontext.New()

	schemaRoot, err := compileSchema(ctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}

	userValue := ctx.Encode(value)
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), options.filename)
	}

	return unifyAndDecode[T](schemaRoot, userValue, options)
}

// ParseAndDecodeString is a convenience wrapper that accepts schema as string.
func ParseAndDecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	return ParseAndDecode[T]([]byte(schema), data, schemaPath, opts...)
}

func applyOptions(opts []Option) parseOptions {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.filename == "" {
		options.filename = "<input>"
	}
	return options
}

func compileSchema(ctx *cue.Context, schema []byte, schemaPath string) (cue.Value, error) {
	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}
	return schemaRoot, nil
}

func unifyAndDecode[T any](schemaRoot, userValue cue.Value, options parseOptions) (*ParseResult[T], error) {
	unified := schemaRoot.Unify(userValue)

	if options.concrete {
		if err := unified.Validate(cue.Concrete(true)); err != nil {
			return nil, FormatError(err, options.filename)
		}
	} else {
		if err := unified.Validate(); err != nil {
			return nil, FormatError(err, options.filename)
		}
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, options.filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}
