// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"context"
	"errors"
)

var (
	// ErrTransformFailed is returned by a Transformer for a file that did not compile.
	ErrTransformFailed = errors.New("script transform failed")
	// ErrBundleFailed is returned by a Bundler when the bundle could not be produced.
	ErrBundleFailed = errors.New("script bundle failed")
	// ErrDuplicateOutput marks a source skipped because another source with the
	// same stem already owns its compiled module path.
	ErrDuplicateOutput = errors.New("duplicate script output")
)

// HostModules are provided by the game at runtime and are never bundled.
var HostModules = []string{
	"@minecraft/server",
	"@minecraft/server-ui",
	"@minecraft/server-admin",
	"@minecraft/server-gametest",
	"@minecraft/server-net",
	"@minecraft/server-common",
	"@minecraft/server-editor",
	"@minecraft/debug-utilities",
}

type (
	// TransformRequest describes one source file to compile.
	TransformRequest struct {
		// Source is the absolute path of the .ts or .js file.
		Source string
		// Destination is the absolute path the compiled module will be written to.
		// It names the source map reference inside the output.
		Destination string
		// Aliases rewrites import specifiers; nil means no aliases.
		Aliases *PathAliases
		// Tsconfig is the project tsconfig.json, or "" when the project has none.
		Tsconfig string
	}

	// TransformOutput is a compiled module and its optional source map.
	TransformOutput struct {
		Code []byte
		Map  []byte
	}

	// BundleRequest describes the single bundling step.
	BundleRequest struct {
		// Entry is the compiled working entry in the pre-bundle directory.
		Entry string
		// Outfile is where the bundle is written.
		Outfile string
		// External lists module specifiers left as runtime imports.
		External []string
		Minify   bool
		// Tsconfig is the project tsconfig.json, or "".
		Tsconfig string
		// WorkingDir is the directory relative paths in diagnostics refer to.
		WorkingDir string
	}

	// Transformer compiles a single file. Implementations must be safe for
	// concurrent use.
	Transformer interface {
		Transform(ctx context.Context, req TransformRequest) (TransformOutput, error)
	}

	// Bundler merges the compiled tree into one module. Tree shaking is never
	// applied.
	Bundler interface {
		Bundle(ctx context.Context, req BundleRequest) error
	}
)
