// SPDX-License-Identifier: MPL-2.0

package buildctx

import (
	"fmt"
	"path/filepath"

	"github.com/vermillion-mc/vermillion/pkg/types"
)

const (
	// DefaultStagingDir is where the pipeline copies packs before filters run.
	DefaultStagingDir = ".regolith/tmp"
	// DefaultDescriptorFile is the addon descriptor location relative to the root.
	DefaultDescriptorFile = "src/main/resources/vermillion.addon.json"
	// DefaultIdentityFile is the identity store location relative to the root.
	DefaultIdentityFile = "uuids.json"

	resourcesDir = "src/main/resources"
	tsconfigFile = "tsconfig.json"
	licenseFile  = "LICENSE"
	behaviorDir  = "BP"
	resourceDir  = "RP"
	dataDir      = "data"
	preBundleDir = "temp"
)

type (
	// Options overrides the default layout. Relative paths resolve against the root.
	Options struct {
		StagingDir     string
		DescriptorFile string
		IdentityFile   string
		FilterDir      string
	}

	// Context is the immutable set of absolute paths for one build.
	// The zero value is not usable; construct with New.
	Context struct {
		root       string
		filterDir  string
		staging    string
		descriptor string
		identity   string
	}
)

// New builds a Context rooted at root.
func New(root string, opts Options) (Context, error) {
	absRoot, err := types.FilesystemPath(root).Abs()
	if err != nil {
		return Context{}, fmt.Errorf("invalid build root: %w", err)
	}

	resolve := func(p, def string) string {
		if p == "" {
			p = def
		}
		p = filepath.FromSlash(p)
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(absRoot.String(), p)
	}

	return Context{
		root:       absRoot.String(),
		filterDir:  opts.FilterDir,
		staging:    resolve(opts.StagingDir, DefaultStagingDir),
		descriptor: resolve(opts.DescriptorFile, DefaultDescriptorFile),
		identity:   resolve(opts.IdentityFile, DefaultIdentityFile),
	}, nil
}

// Root is the absolute project root.
func (c Context) Root() string { return c.root }

// FilterDir is the filter directory reported by the pipeline, possibly empty.
func (c Context) FilterDir() string { return c.filterDir }

// DescriptorFile is the addon descriptor path.
func (c Context) DescriptorFile() string { return c.descriptor }

// IdentityFile is the identity store path.
func (c Context) IdentityFile() string { return c.identity }

// TSConfig is the optional tsconfig.json at the root.
func (c Context) TSConfig() string { return filepath.Join(c.root, tsconfigFile) }

// License is the optional license file at the root.
func (c Context) License() string { return filepath.Join(c.root, licenseFile) }

// ResourcesDir holds the descriptor and the pack icon.
func (c Context) ResourcesDir() string {
	return filepath.Join(c.root, filepath.FromSlash(resourcesDir))
}

// BehaviorPack is the behavior package output root.
func (c Context) BehaviorPack() string { return filepath.Join(c.staging, behaviorDir) }

// ResourcePack is the resource package output root.
func (c Context) ResourcePack() string { return filepath.Join(c.staging, resourceDir) }

// DataRoot is the script staging root.
func (c Context) DataRoot() string { return filepath.Join(c.staging, dataDir) }

// PreBundleDir receives per-file outputs when scripts are bundled.
func (c Context) PreBundleDir() string { return filepath.Join(c.staging, preBundleDir) }
