// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vermillion-mc/vermillion/internal/assemble"
	"github.com/vermillion-mc/vermillion/internal/buildctx"
	"github.com/vermillion-mc/vermillion/internal/descriptor"
	"github.com/vermillion-mc/vermillion/internal/identity"
	"github.com/vermillion-mc/vermillion/internal/issue"
	"github.com/vermillion-mc/vermillion/internal/manifest"
	"github.com/vermillion-mc/vermillion/internal/scripts"
	"github.com/vermillion-mc/vermillion/internal/testutil"
)

type fakeScripts struct {
	result *scripts.Result
	err    error

	calls        int
	identitySeen bool
}

func (f *fakeScripts) Build(_ context.Context, bctx buildctx.Context, _ descriptor.Scripts) (*scripts.Result, error) {
	f.calls++
	f.identitySeen = testutil.FileExists(bctx.IdentityFile())
	return f.result, f.err
}

func setup(t *testing.T, mutate func(*descriptor.Addon)) (buildctx.Context, *descriptor.Addon) {
	t.Helper()
	root := testutil.NewProject(t, testutil.DefaultDescriptor)
	bctx, err := buildctx.New(root, buildctx.Options{})
	if err != nil {
		t.Fatalf("buildctx.New() error = %v", err)
	}
	addon, err := descriptor.Load(bctx.DescriptorFile())
	if err != nil {
		t.Fatalf("descriptor.Load() error = %v", err)
	}
	if mutate != nil {
		mutate(addon)
	}
	return bctx, addon
}

func newPipeline(bctx buildctx.Context, s ScriptBuilder) *Pipeline {
	return &Pipeline{
		Identity:  identity.NewStore(bctx.IdentityFile()),
		Composer:  manifest.NewComposer(),
		Scripts:   s,
		Assembler: assemble.New(nil),
	}
}

func readManifest(t *testing.T, dir string) manifest.Document {
	t.Helper()
	var doc manifest.Document
	if err := json.Unmarshal([]byte(testutil.MustReadFile(t, filepath.Join(dir, assemble.ManifestFile))), &doc); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	return doc
}

func TestRunExportsScripts(t *testing.T) {
	t.Parallel()

	bctx, addon := setup(t, nil)
	fake := &fakeScripts{result: &scripts.Result{
		Entry:        "scripts/___index___.js",
		Viable:       true,
		Dependencies: []manifest.Dependency{manifest.NamedDependency("@minecraft/server", "1.8.0")},
	}}

	report, err := newPipeline(bctx, fake).Run(context.Background(), bctx, addon)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !fake.identitySeen {
		t.Error("identities must be persisted before the script phase")
	}
	if !report.IdentityCreated || report.Version != "1.2.0+beta" {
		t.Errorf("report = created %v version %q", report.IdentityCreated, report.Version)
	}

	bp := readManifest(t, bctx.BehaviorPack())
	script, ok := bp.ScriptModule()
	if !ok || script.Entry != "scripts/___index___.js" {
		t.Errorf("script module = %+v, %v", script, ok)
	}
	var named int
	for _, d := range bp.Dependencies {
		if d.IsNamed() {
			named++
		}
	}
	if named != 1 {
		t.Errorf("named dependencies = %d, want 1 (no duplicates)", named)
	}
	rp := readManifest(t, bctx.ResourcePack())
	if len(rp.DependenciesOn(bp.Header.UUID)) != 1 || len(bp.DependenciesOn(rp.Header.UUID)) != 1 {
		t.Error("packs should depend on each other exactly once")
	}
}

func TestRunIsStableAcrossBuilds(t *testing.T) {
	t.Parallel()

	bctx, addon := setup(t, nil)
	fake := &fakeScripts{result: &scripts.Result{Entry: manifest.DefaultScriptEntry, Viable: true}}
	p := newPipeline(bctx, fake)

	first, err := p.Run(context.Background(), bctx, addon)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := p.Run(context.Background(), bctx, addon)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.IdentityCreated {
		t.Error("second run regenerated identities")
	}
	for slot, id := range first.Identity {
		if second.Identity[slot] != id {
			t.Errorf("slot %s changed between runs", slot)
		}
	}
}

func TestRunWithoutViableScripts(t *testing.T) {
	t.Parallel()

	bctx, addon := setup(t, nil)
	fake := &fakeScripts{result: &scripts.Result{
		Dependencies: []manifest.Dependency{manifest.NamedDependency("@minecraft/server", "1.8.0")},
	}}

	report, err := newPipeline(bctx, fake).Run(context.Background(), bctx, addon)
	if !errors.Is(err, ErrNoViableScripts) {
		t.Fatalf("Run() error = %v, want ErrNoViableScripts", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.ScriptsNotViableId {
		t.Errorf("error should be actionable with the scripts issue, got %v", err)
	}
	if report == nil || report.Assembly == nil {
		t.Fatal("report should still describe the written packs")
	}

	bp := readManifest(t, bctx.BehaviorPack())
	if len(bp.Modules) != 1 || bp.Modules[0].Type != manifest.ModuleData {
		t.Errorf("modules = %+v, want only the data module", bp.Modules)
	}
	for _, d := range bp.Dependencies {
		if d.IsNamed() {
			t.Errorf("host dependency %q kept without a script module", d.ModuleName)
		}
	}
}

func TestRunSkipsScriptsWithoutBehaviorPack(t *testing.T) {
	t.Parallel()

	bctx, addon := setup(t, func(a *descriptor.Addon) { a.Packs.Behavior = false })
	fake := &fakeScripts{}

	if _, err := newPipeline(bctx, fake).Run(context.Background(), bctx, addon); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("script phase ran %d times for an excluded behavior pack", fake.calls)
	}
	if testutil.FileExists(filepath.Join(bctx.BehaviorPack(), assemble.ManifestFile)) {
		t.Error("excluded behavior pack received a manifest")
	}
}

func TestRunSkipsScriptsWithoutExport(t *testing.T) {
	t.Parallel()

	bctx, addon := setup(t, func(a *descriptor.Addon) { a.Scripts.Export = false })
	fake := &fakeScripts{}

	if _, err := newPipeline(bctx, fake).Run(context.Background(), bctx, addon); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fake.calls != 0 {
		t.Error("script phase should not run without export")
	}
	if bp := readManifest(t, bctx.BehaviorPack()); len(bp.Modules) != 1 {
		t.Errorf("modules = %d, want 1", len(bp.Modules))
	}
}

func TestRunMalformedIdentityIsFatal(t *testing.T) {
	t.Parallel()

	bctx, addon := setup(t, nil)
	testutil.MustWriteFile(t, bctx.IdentityFile(), "{ not json")
	fake := &fakeScripts{}

	_, err := newPipeline(bctx, fake).Run(context.Background(), bctx, addon)
	if !errors.Is(err, identity.ErrMalformedRecord) {
		t.Fatalf("Run() error = %v, want ErrMalformedRecord", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.IdentityCorruptId {
		t.Errorf("error should reference the identity issue, got %v", err)
	}
	if fake.calls != 0 {
		t.Error("nothing should run after an identity failure")
	}
	if testutil.FileExists(filepath.Join(bctx.BehaviorPack(), assemble.ManifestFile)) {
		t.Error("no manifest should be written after an identity failure")
	}
	if got := testutil.MustReadFile(t, bctx.IdentityFile()); got != "{ not json" {
		t.Error("malformed identity file was modified")
	}
}

func TestRunScriptPhaseError(t *testing.T) {
	t.Parallel()

	bctx, addon := setup(t, nil)
	fake := &fakeScripts{err: scripts.ErrMalformedTSConfig}

	if _, err := newPipeline(bctx, fake).Run(context.Background(), bctx, addon); !errors.Is(err, scripts.ErrMalformedTSConfig) {
		t.Errorf("Run() error = %v, want ErrMalformedTSConfig", err)
	}
}

func TestPreviewWritesNothing(t *testing.T) {
	t.Parallel()

	bctx, addon := setup(t, nil)
	p := newPipeline(bctx, &fakeScripts{result: &scripts.Result{Entry: manifest.DefaultScriptEntry, Viable: true}})

	pair, persisted, err := p.Preview(context.Background(), addon)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if persisted {
		t.Error("no record exists yet")
	}
	if pair.Behavior.Header.Version != "1.2.0+beta" {
		t.Errorf("version = %q", pair.Behavior.Header.Version)
	}
	if _, err := os.Stat(bctx.IdentityFile()); !os.IsNotExist(err) {
		t.Error("Preview must not create the identity file")
	}

	if _, err := p.Run(context.Background(), bctx, addon); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	pair, persisted, err = p.Preview(context.Background(), addon)
	if err != nil || !persisted {
		t.Fatalf("Preview() = persisted %v, %v", persisted, err)
	}
	if got := readManifest(t, bctx.BehaviorPack()).Header.UUID; got != pair.Behavior.Header.UUID {
		t.Error("preview should use the persisted identities")
	}
}
