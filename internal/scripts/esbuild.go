// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// decoratorTSConfig enables legacy decorators for projects without a tsconfig.
const decoratorTSConfig = `{"compilerOptions":{"experimentalDecorators":true}}`

type (
	esbuildTransformer struct{}
	esbuildBundler     struct{}
)

// NewTransformer returns the esbuild-backed Transformer.
func NewTransformer() Transformer { return esbuildTransformer{} }

// NewBundler returns the esbuild-backed Bundler.
func NewBundler() Bundler { return esbuildBundler{} }

// Transform compiles one file to an ES2020 module. Imports stay imports: bare
// specifiers are kept verbatim and relative or aliased ones are rewritten to
// the fully resolved .js file.
func (esbuildTransformer) Transform(ctx context.Context, req TransformRequest) (TransformOutput, error) {
	if err := ctx.Err(); err != nil {
		return TransformOutput{}, err
	}

	opts := baseOptions(req.Tsconfig)
	opts.EntryPoints = []string{req.Source}
	opts.Outfile = req.Destination
	opts.Bundle = true
	opts.Write = false
	opts.TreeShaking = api.TreeShakingFalse
	opts.Plugins = []api.Plugin{externalizePlugin(req.Aliases)}

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		return TransformOutput{}, fmt.Errorf("%w: %s: %w", ErrTransformFailed, req.Source, messagesError(result.Errors))
	}

	var out TransformOutput
	for _, f := range result.OutputFiles {
		switch {
		case strings.HasSuffix(f.Path, ".map"):
			out.Map = f.Contents
		default:
			out.Code = f.Contents
		}
	}
	if out.Code == nil {
		return TransformOutput{}, fmt.Errorf("%w: %s: no output produced", ErrTransformFailed, req.Source)
	}
	return out, nil
}

// Bundle merges the compiled tree rooted at req.Entry into req.Outfile.
func (esbuildBundler) Bundle(ctx context.Context, req BundleRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := baseOptions(req.Tsconfig)
	opts.EntryPoints = []string{req.Entry}
	opts.Outfile = req.Outfile
	opts.Bundle = true
	opts.Write = true
	opts.AllowOverwrite = true
	opts.TreeShaking = api.TreeShakingFalse
	opts.External = req.External
	opts.AbsWorkingDir = req.WorkingDir
	opts.MinifyWhitespace = req.Minify
	opts.MinifyIdentifiers = req.Minify
	opts.MinifySyntax = req.Minify

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %w", ErrBundleFailed, messagesError(result.Errors))
	}
	return nil
}

func baseOptions(tsconfig string) api.BuildOptions {
	opts := api.BuildOptions{
		LogLevel:  api.LogLevelSilent,
		Format:    api.FormatESModule,
		Platform:  api.PlatformNode,
		Target:    api.ES2020,
		Sourcemap: api.SourceMapLinked,
	}
	if tsconfig != "" {
		opts.Tsconfig = tsconfig
	} else {
		opts.TsconfigRaw = decoratorTSConfig
	}
	return opts
}

// externalizePlugin leaves every import except the entry point to the runtime.
func externalizePlugin(aliases *PathAliases) api.Plugin {
	return api.Plugin{
		Name: "vermillion-externalize",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind == api.ResolveEntryPoint {
					return api.OnResolveResult{}, nil
				}
				importer := args.Importer
				if importer == "" {
					importer = filepath.Join(args.ResolveDir, "_")
				}
				if rewritten, ok := aliases.Rewrite(importer, args.Path); ok {
					return api.OnResolveResult{Path: rewritten, External: true}, nil
				}
				return api.OnResolveResult{Path: args.Path, External: true}, nil
			})
		},
	}
}

func messagesError(msgs []api.Message) error {
	errs := make([]error, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			errs = append(errs, fmt.Errorf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		errs = append(errs, errors.New(m.Text))
	}
	return errors.Join(errs...)
}
