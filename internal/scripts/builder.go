// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/iter"

	"github.com/vermillion-mc/vermillion/internal/buildctx"
	"github.com/vermillion-mc/vermillion/internal/descriptor"
	"github.com/vermillion-mc/vermillion/internal/manifest"
)

// scriptsDir is the behavior pack directory holding compiled scripts.
const scriptsDir = "scripts"

type (
	// FileResult is the settled outcome of one transform.
	FileResult struct {
		// Source is the slash-separated path relative to the staging root.
		Source string
		// Output is the absolute path of the compiled module.
		Output string
		// Map is the absolute path of the source map, or "" when none was written.
		Map string
		Err error
	}

	// Result summarizes the script phase.
	Result struct {
		// Entry is the manifest entry ("scripts/index.js"); empty when not viable.
		Entry string
		// Bundled reports whether the bundle step succeeded.
		Bundled bool
		// Viable reports whether Entry names a file that exists.
		Viable bool
		// Files holds every transform outcome in source order.
		Files []FileResult
		// Failures is the failing subset of Files.
		Failures []FileResult
		// BundleErr is the bundle failure, if bundling was attempted and failed.
		BundleErr error
		// Dependencies are the host module dependencies of the script module.
		Dependencies []manifest.Dependency
		Elapsed      time.Duration
	}

	// Builder runs the script phase.
	Builder struct {
		transformer Transformer
		bundler     Bundler
		logger      *log.Logger
		workers     int
	}

	// BuilderOption configures a Builder.
	BuilderOption func(*Builder)
)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithWorkers bounds the number of concurrent transforms; n <= 0 means one per CPU.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) { b.workers = n }
}

// NewBuilder creates a Builder.
func NewBuilder(t Transformer, bundler Bundler, opts ...BuilderOption) *Builder {
	b := &Builder{
		transformer: t,
		bundler:     bundler,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers <= 0 {
		b.workers = runtime.NumCPU()
	}
	return b
}

// Build compiles the staging tree of bctx. Per-file and bundle failures are
// reported in the Result; the returned error is reserved for conditions that
// prevent the phase from running at all.
func (b *Builder) Build(ctx context.Context, bctx buildctx.Context, cfg descriptor.Scripts) (*Result, error) {
	start := time.Now()
	root := bctx.DataRoot()
	scriptsOut := filepath.Join(bctx.BehaviorPack(), scriptsDir)

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create script staging root: %w", err)
	}
	entryName, err := SynthesizeEntry(root, cfg.Entrypoints)
	if err != nil {
		return nil, err
	}
	files, err := Discover(ctx, root)
	if err != nil {
		return nil, err
	}
	aliases, err := LoadTSConfig(bctx.TSConfig(), root)
	if err != nil {
		return nil, err
	}
	tsconfig := ""
	if fileExists(bctx.TSConfig()) {
		tsconfig = bctx.TSConfig()
	}

	outRoot := scriptsOut
	if cfg.Bundle {
		outRoot = bctx.PreBundleDir()
	}

	owners := claimOutputs(files)
	claimed := make([]string, 0, len(owners))
	for _, rel := range files {
		if owners[jsName(rel)] == rel {
			claimed = append(claimed, rel)
		}
	}

	b.logger.Debug("Compiling scripts", "files", len(claimed), "workers", b.workers, "aliases", aliases.Len())
	mapper := iter.Mapper[string, FileResult]{MaxGoroutines: b.workers}
	results := mapper.Map(claimed, func(rel *string) FileResult {
		return b.transform(ctx, root, outRoot, *rel, aliases, tsconfig)
	})

	settled := make(map[string]FileResult, len(results))
	for _, r := range results {
		settled[r.Source] = r
	}
	res := &Result{Files: make([]FileResult, 0, len(files))}
	for _, rel := range files {
		r, ok := settled[rel]
		if !ok {
			r = FileResult{
				Source: rel,
				Output: OutputPath(outRoot, rel),
				Err:    fmt.Errorf("%w: %s is already compiled from %s", ErrDuplicateOutput, jsName(rel), owners[jsName(rel)]),
			}
			b.logger.Error("Skipped script with a conflicting output", "file", rel, "err", r.Err)
		}
		res.Files = append(res.Files, r)
		if r.Err != nil {
			res.Failures = append(res.Failures, r)
		}
	}
	b.logger.Infof("Scripts compiled in %s", time.Since(start).Round(time.Millisecond))

	workingEntry := jsName(entryName)
	if cfg.Bundle {
		b.bundle(ctx, bctx, cfg, workingEntry, tsconfig, res)
	}
	if !res.Bundled {
		if fileExists(filepath.Join(scriptsOut, workingEntry)) {
			res.Entry = path.Join(scriptsDir, workingEntry)
			res.Viable = true
		}
	}

	for _, dep := range cfg.NamedDependencies() {
		res.Dependencies = append(res.Dependencies, manifest.NamedDependency(dep.Module, dep.Version))
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func (b *Builder) transform(ctx context.Context, root, outRoot, rel string, aliases *PathAliases, tsconfig string) FileResult {
	fr := FileResult{Source: rel, Output: OutputPath(outRoot, rel)}
	if err := ctx.Err(); err != nil {
		fr.Err = err
		return fr
	}

	out, err := b.transformer.Transform(ctx, TransformRequest{
		Source:      filepath.Join(root, filepath.FromSlash(rel)),
		Destination: fr.Output,
		Aliases:     aliases,
		Tsconfig:    tsconfig,
	})
	if err == nil {
		err = writeOutput(&fr, out)
	}
	if err != nil {
		fr.Err = err
		b.logger.Error("Failed to compile script", "file", rel, "err", err)
		return fr
	}
	b.logger.Debug("Compiled script", "file", rel)
	return fr
}

func writeOutput(fr *FileResult, out TransformOutput) error {
	if err := os.MkdirAll(filepath.Dir(fr.Output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(fr.Output, out.Code, 0o644); err != nil {
		return fmt.Errorf("failed to write compiled script: %w", err)
	}
	if len(out.Map) > 0 {
		mapPath := fr.Output + ".map"
		if err := os.WriteFile(mapPath, out.Map, 0o644); err != nil {
			return fmt.Errorf("failed to write source map: %w", err)
		}
		fr.Map = mapPath
	}
	return nil
}

// bundle runs the bundler once. On failure the per-file outputs are moved
// into the behavior pack so the unbundled tree can still serve as a fallback.
func (b *Builder) bundle(ctx context.Context, bctx buildctx.Context, cfg descriptor.Scripts, workingEntry, tsconfig string, res *Result) {
	b.logger.Info("Started bundling the scripts")

	scriptsOut := filepath.Join(bctx.BehaviorPack(), scriptsDir)
	external := append(append([]string{}, HostModules...), cfg.External...)
	err := b.bundler.Bundle(ctx, BundleRequest{
		Entry:      filepath.Join(bctx.PreBundleDir(), workingEntry),
		Outfile:    filepath.Join(scriptsOut, "index.js"),
		External:   external,
		Minify:     cfg.Minify,
		Tsconfig:   tsconfig,
		WorkingDir: bctx.Root(),
	})
	if err == nil {
		res.Bundled = true
		if fileExists(filepath.Join(scriptsOut, "index.js")) {
			res.Entry = manifest.DefaultScriptEntry
			res.Viable = true
		}
		if rmErr := os.RemoveAll(bctx.PreBundleDir()); rmErr != nil {
			b.logger.Warn("Failed to remove pre-bundle directory", "dir", bctx.PreBundleDir(), "err", rmErr)
		}
		return
	}

	res.BundleErr = err
	b.logger.Error("Failed to bundle scripts, falling back to unbundled output", "err", err)
	if promoteErr := promote(bctx.PreBundleDir(), scriptsOut); promoteErr != nil {
		b.logger.Error("Failed to move unbundled scripts into the behavior pack", "err", promoteErr)
	}
}

// claimOutputs assigns every compiled module path to exactly one source,
// keyed by the slash-separated output name. A .ts source wins over a .js
// source with the same stem.
func claimOutputs(files []string) map[string]string {
	owners := make(map[string]string, len(files))
	for _, rel := range files {
		key := jsName(rel)
		cur, ok := owners[key]
		if !ok || (path.Ext(rel) == ".ts" && path.Ext(cur) != ".ts") {
			owners[key] = rel
		}
	}
	return owners
}

// OutputPath maps a staging-relative source to its compiled module path.
func OutputPath(outRoot, rel string) string {
	return filepath.Join(outRoot, filepath.FromSlash(jsName(rel)))
}

// promote moves every file under src to the same relative path under dst and
// removes src.
func promote(src, dst string) error {
	if !dirExists(src) {
		return nil
	}

	var (
		mu   sync.Mutex
		rels []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, src, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		mu.Lock()
		rels = append(rels, rel)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	for _, rel := range rels {
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(src, rel), target); err != nil {
			return err
		}
	}
	return os.RemoveAll(src)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
