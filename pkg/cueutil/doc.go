// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Every structured input of the build (addon descriptor, identity store,
// tool config, tsconfig) goes through the same 3-step flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed addon_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Addon](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Addon",
//	    cueutil.WithFilename("vermillion.addon.json"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes CUE path for debugging
//	}
//	return result.Value, nil
//
// JSON with comments and trailing commas is valid CUE, which is why the
// JSON inputs of the pipeline are parsed here instead of with encoding/json.
package cueutil
