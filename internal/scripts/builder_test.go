// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/vermillion-mc/vermillion/internal/buildctx"
	"github.com/vermillion-mc/vermillion/internal/descriptor"
	"github.com/vermillion-mc/vermillion/internal/testutil"
)

// fakeTransformer copies the source into a marker module and fails for any
// source whose base name is listed in fail.
type fakeTransformer struct {
	fail map[string]bool

	mu       sync.Mutex
	requests []TransformRequest
}

func (f *fakeTransformer) Transform(_ context.Context, req TransformRequest) (TransformOutput, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.fail[filepath.Base(req.Source)] {
		return TransformOutput{}, ErrTransformFailed
	}
	src, err := os.ReadFile(req.Source)
	if err != nil {
		return TransformOutput{}, err
	}
	return TransformOutput{
		Code: append([]byte("// compiled\n"), src...),
		Map:  []byte(`{"version":3}`),
	}, nil
}

type fakeBundler struct {
	err error
	req BundleRequest
}

func (f *fakeBundler) Bundle(_ context.Context, req BundleRequest) error {
	f.req = req
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(req.Outfile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(req.Outfile, []byte("// bundle\n"), 0o644)
}

func newTestContext(t *testing.T, sources map[string]string) buildctx.Context {
	t.Helper()
	root := testutil.NewProject(t, testutil.DefaultDescriptor)
	bctx, err := buildctx.New(root, buildctx.Options{})
	if err != nil {
		t.Fatalf("buildctx.New() error = %v", err)
	}
	for rel, content := range sources {
		testutil.MustWriteFile(t, filepath.Join(bctx.DataRoot(), filepath.FromSlash(rel)), content)
	}
	return bctx
}

func testScripts(bundle bool) descriptor.Scripts {
	return descriptor.Scripts{
		Export:       true,
		Entrypoints:  []string{"./main"},
		Bundle:       bundle,
		External:     []string{"some-lib"},
		Dependencies: map[string]string{"@minecraft/server": "1.8.0"},
	}
}

func TestBuildUnbundled(t *testing.T) {
	t.Parallel()

	bctx := newTestContext(t, map[string]string{
		"main.ts":     `import "./lib/util";`,
		"lib/util.ts": `export const x = 1;`,
		"types.d.ts":  `declare const y: number;`,
	})
	transformer := &fakeTransformer{}

	res, err := NewBuilder(transformer, &fakeBundler{}, WithWorkers(2)).Build(context.Background(), bctx, testScripts(false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !res.Viable || res.Entry != "scripts/index.js" || res.Bundled {
		t.Errorf("result = entry %q viable %v bundled %v", res.Entry, res.Viable, res.Bundled)
	}
	if len(res.Files) != 3 || len(res.Failures) != 0 {
		t.Errorf("files = %d failures = %d, want 3 and 0", len(res.Files), len(res.Failures))
	}

	scriptsOut := filepath.Join(bctx.BehaviorPack(), "scripts")
	for _, rel := range []string{"index.js", "main.js", "lib/util.js", "lib/util.js.map"} {
		if !testutil.FileExists(filepath.Join(scriptsOut, filepath.FromSlash(rel))) {
			t.Errorf("expected output %s", rel)
		}
	}
	if testutil.FileExists(filepath.Join(scriptsOut, "types.d.js")) {
		t.Error("declaration files must not be compiled")
	}

	entry := testutil.MustReadFile(t, filepath.Join(bctx.DataRoot(), "index.ts"))
	if entry != "import \"./main\";\n" {
		t.Errorf("synthesized entry = %q", entry)
	}

	if len(res.Dependencies) != 1 || res.Dependencies[0].ModuleName != "@minecraft/server" || res.Dependencies[0].Version != "1.8.0" {
		t.Errorf("dependencies = %+v", res.Dependencies)
	}
}

func TestBuildIsolatesFailures(t *testing.T) {
	t.Parallel()

	bctx := newTestContext(t, map[string]string{
		"main.ts":       `export {};`,
		"lib/broken.ts": `export const = ;`,
		"lib/fine.ts":   `export const ok = true;`,
	})
	transformer := &fakeTransformer{fail: map[string]bool{"broken.ts": true}}

	res, err := NewBuilder(transformer, &fakeBundler{}).Build(context.Background(), bctx, testScripts(false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(res.Failures) != 1 || res.Failures[0].Source != "lib/broken.ts" {
		t.Fatalf("failures = %+v, want lib/broken.ts only", res.Failures)
	}
	if !errors.Is(res.Failures[0].Err, ErrTransformFailed) {
		t.Errorf("failure error = %v", res.Failures[0].Err)
	}
	scriptsOut := filepath.Join(bctx.BehaviorPack(), "scripts")
	if !testutil.FileExists(filepath.Join(scriptsOut, "lib", "fine.js")) {
		t.Error("sibling of a failing file was not compiled")
	}
	if testutil.FileExists(filepath.Join(scriptsOut, "lib", "broken.js")) {
		t.Error("failing file should produce no output")
	}
	if !res.Viable {
		t.Error("entry should stay viable when a non-entry file fails")
	}
	if len(transformer.requests) != 4 {
		t.Errorf("transform requests = %d, want 4 (every file attempted)", len(transformer.requests))
	}
}

func TestBuildPreservesAuthorIndex(t *testing.T) {
	t.Parallel()

	const authored = "console.warn('mine');\n"
	bctx := newTestContext(t, map[string]string{
		"index.ts": authored,
		"main.ts":  `export {};`,
	})

	res, err := NewBuilder(&fakeTransformer{}, &fakeBundler{}).Build(context.Background(), bctx, testScripts(false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := testutil.MustReadFile(t, filepath.Join(bctx.DataRoot(), "index.ts")); got != authored {
		t.Errorf("author index.ts was modified: %q", got)
	}
	if !testutil.FileExists(filepath.Join(bctx.DataRoot(), FallbackEntryFile)) {
		t.Error("fallback entry was not written")
	}
	if res.Entry != "scripts/___index___.js" || !res.Viable {
		t.Errorf("entry = %q viable = %v, want scripts/___index___.js", res.Entry, res.Viable)
	}
}

func TestBuildBundled(t *testing.T) {
	t.Parallel()

	bctx := newTestContext(t, map[string]string{
		"index.js": `export {};`,
		"main.ts":  `export {};`,
	})
	bundler := &fakeBundler{}

	res, err := NewBuilder(&fakeTransformer{}, bundler).Build(context.Background(), bctx, testScripts(true))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !res.Bundled || !res.Viable || res.Entry != "scripts/index.js" {
		t.Errorf("result = entry %q viable %v bundled %v", res.Entry, res.Viable, res.Bundled)
	}
	if want := filepath.Join(bctx.PreBundleDir(), "___index___.js"); bundler.req.Entry != want {
		t.Errorf("bundle entry = %q, want %q", bundler.req.Entry, want)
	}
	for _, ext := range append(slices.Clone(HostModules), "some-lib") {
		if !slices.Contains(bundler.req.External, ext) {
			t.Errorf("bundle externals missing %q", ext)
		}
	}
	if _, err := os.Stat(bctx.PreBundleDir()); !os.IsNotExist(err) {
		t.Errorf("pre-bundle directory should be removed, stat err = %v", err)
	}
	if testutil.FileExists(filepath.Join(bctx.BehaviorPack(), "scripts", "main.js")) {
		t.Error("per-file outputs should not land in the behavior pack when bundling succeeds")
	}
}

func TestBuildBundleFailureFallsBack(t *testing.T) {
	t.Parallel()

	bctx := newTestContext(t, map[string]string{
		"main.ts":     `export {};`,
		"lib/util.ts": `export {};`,
	})
	bundler := &fakeBundler{err: ErrBundleFailed}

	res, err := NewBuilder(&fakeTransformer{}, bundler).Build(context.Background(), bctx, testScripts(true))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if res.Bundled || !errors.Is(res.BundleErr, ErrBundleFailed) {
		t.Errorf("bundled = %v, bundle err = %v", res.Bundled, res.BundleErr)
	}
	if !res.Viable || res.Entry != "scripts/index.js" {
		t.Errorf("entry = %q viable = %v, want fallback scripts/index.js", res.Entry, res.Viable)
	}
	for _, rel := range []string{"index.js", "main.js", "lib/util.js"} {
		if !testutil.FileExists(filepath.Join(bctx.BehaviorPack(), "scripts", filepath.FromSlash(rel))) {
			t.Errorf("fallback output %s missing", rel)
		}
	}
}

func TestBuildNoViableEntry(t *testing.T) {
	t.Parallel()

	bctx := newTestContext(t, map[string]string{"main.ts": `export {};`})
	transformer := &fakeTransformer{fail: map[string]bool{"index.ts": true}}

	res, err := NewBuilder(transformer, &fakeBundler{}).Build(context.Background(), bctx, testScripts(false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if res.Viable || res.Entry != "" {
		t.Errorf("entry = %q viable = %v, want no viable entry", res.Entry, res.Viable)
	}
}

func TestBuildMalformedTSConfig(t *testing.T) {
	t.Parallel()

	bctx := newTestContext(t, map[string]string{"main.ts": `export {};`})
	testutil.MustWriteFile(t, bctx.TSConfig(), `{"compilerOptions": {"paths": 3}}`)

	_, err := NewBuilder(&fakeTransformer{}, &fakeBundler{}).Build(context.Background(), bctx, testScripts(false))
	if !errors.Is(err, ErrMalformedTSConfig) {
		t.Errorf("Build() error = %v, want ErrMalformedTSConfig", err)
	}
}

func TestBuildAliasesResolveInsideStaging(t *testing.T) {
	t.Parallel()

	bctx := newTestContext(t, map[string]string{
		"main.ts":    "import { a } from \"@utils/a\";\nconsole.warn(a);\n",
		"utils/a.ts": "export const a = 1;\n",
	})
	testutil.MustWriteFile(t, bctx.TSConfig(), `{
    "compilerOptions": {
        "baseUrl": ".",
        "paths": {"@utils/*": ["utils/*"]}
    }
}`)

	res, err := NewBuilder(NewTransformer(), &fakeBundler{}).Build(context.Background(), bctx, testScripts(false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("failures = %+v", res.Failures)
	}

	scriptsOut := filepath.Join(bctx.BehaviorPack(), "scripts")
	code := testutil.MustReadFile(t, filepath.Join(scriptsOut, "main.js"))
	if !strings.Contains(code, `"./utils/a.js"`) {
		t.Errorf("aliased import not rewritten to the staged module:\n%s", code)
	}
	if strings.Contains(code, `"../`) {
		t.Errorf("aliased import escapes the scripts directory:\n%s", code)
	}
	if !testutil.FileExists(filepath.Join(scriptsOut, "utils", "a.js")) {
		t.Error("alias target was not compiled")
	}
}

func TestBuildDuplicateOutputs(t *testing.T) {
	t.Parallel()

	bctx := newTestContext(t, map[string]string{
		"main.ts": `export const from = "ts";`,
		"main.js": `export const from = "js";`,
	})
	transformer := &fakeTransformer{}

	res, err := NewBuilder(transformer, &fakeBundler{}, WithWorkers(4)).Build(context.Background(), bctx, testScripts(false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(res.Failures) != 1 || res.Failures[0].Source != "main.js" {
		t.Fatalf("failures = %+v, want main.js only", res.Failures)
	}
	if !errors.Is(res.Failures[0].Err, ErrDuplicateOutput) {
		t.Errorf("failure error = %v, want ErrDuplicateOutput", res.Failures[0].Err)
	}
	if len(res.Files) != 3 {
		t.Errorf("files = %d, want 3 (index.ts, main.js, main.ts)", len(res.Files))
	}
	for _, req := range transformer.requests {
		if filepath.Base(req.Source) == "main.js" {
			t.Error("shadowed main.js was transformed")
		}
	}

	got := testutil.MustReadFile(t, filepath.Join(bctx.BehaviorPack(), "scripts", "main.js"))
	if !strings.Contains(got, `"ts"`) {
		t.Errorf("scripts/main.js = %q, want the output of main.ts", got)
	}
	if !res.Viable {
		t.Error("entry should stay viable")
	}
}

func TestClaimOutputs(t *testing.T) {
	t.Parallel()

	owners := claimOutputs([]string{"a.js", "a.ts", "b.ts", "lib/c.js", "lib/c.ts", "lib/d.js"})
	want := map[string]string{
		"a.js":     "a.ts",
		"b.js":     "b.ts",
		"lib/c.js": "lib/c.ts",
		"lib/d.js": "lib/d.js",
	}
	if len(owners) != len(want) {
		t.Fatalf("owners = %v, want %v", owners, want)
	}
	for out, src := range want {
		if owners[out] != src {
			t.Errorf("owners[%q] = %q, want %q", out, owners[out], src)
		}
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel  string
		want string
	}{
		{"main.ts", "main.js"},
		{"lib/util.js", "lib/util.js"},
		{"a/b/c.ts", "a/b/c.js"},
	}
	for _, tt := range tests {
		if got := OutputPath("/out", tt.rel); got != filepath.Join("/out", filepath.FromSlash(tt.want)) {
			t.Errorf("OutputPath(%q) = %q", tt.rel, got)
		}
	}
}
