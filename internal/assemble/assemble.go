// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vermillion-mc/vermillion/internal/buildctx"
	"github.com/vermillion-mc/vermillion/internal/manifest"
)

const (
	// ManifestFile is the manifest name inside a pack.
	ManifestFile = "manifest.json"
	// LicenseFile is the name the project license is copied to.
	LicenseFile = "LICENSE.txt"
	// IconBaseName matches pack_icon.<ext> in the resources directory.
	IconBaseName = "pack_icon"
)

// ErrManifestWrite is returned when a manifest cannot be written.
var ErrManifestWrite = errors.New("failed to write manifest")

type (
	// Assembler writes packs.
	Assembler struct {
		logger *log.Logger
	}

	// Report lists the files an assembly produced, sorted.
	Report struct {
		Manifests []string
		Assets    []string
	}

	pack struct {
		dir string
		doc *manifest.Document
	}
)

// New creates an Assembler. A nil logger discards output.
func New(logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Assembler{logger: logger}
}

// Assemble writes the manifest of each included pack of pair and copies the
// license and pack icon next to it. Manifest failures are fatal; asset copy
// failures other than absence are logged.
func (a *Assembler) Assemble(ctx context.Context, bctx buildctx.Context, pair manifest.Pair) (*Report, error) {
	var packs []pack
	if pair.Packs.Behavior {
		packs = append(packs, pack{dir: bctx.BehaviorPack(), doc: pair.Behavior})
	}
	if pair.Packs.Resource {
		packs = append(packs, pack{dir: bctx.ResourcePack(), doc: pair.Resource})
	}

	icon, err := findIcon(bctx.ResourcesDir())
	if err != nil {
		a.logger.Warn("Failed to look up pack icon", "dir", bctx.ResourcesDir(), "err", err)
	}

	var (
		mu     sync.Mutex
		report Report
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range packs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := writeManifest(p)
			if err != nil {
				return err
			}
			assets := a.copyAssets(p.dir, bctx.License(), icon)

			mu.Lock()
			defer mu.Unlock()
			report.Manifests = append(report.Manifests, path)
			report.Assets = append(report.Assets, assets...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(report.Manifests)
	slices.Sort(report.Assets)
	return &report, nil
}

func writeManifest(p pack) (string, error) {
	data, err := p.doc.Encode()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrManifestWrite, err)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrManifestWrite, err)
	}
	path := filepath.Join(p.dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrManifestWrite, err)
	}
	return path, nil
}

func (a *Assembler) copyAssets(dir, license, icon string) []string {
	var copied []string
	copyOne := func(src, dst string) {
		if src == "" {
			return
		}
		err := copyFile(src, dst)
		switch {
		case err == nil:
			copied = append(copied, dst)
		case errors.Is(err, os.ErrNotExist):
		default:
			a.logger.Warn("Failed to copy asset", "src", src, "dst", dst, "err", err)
		}
	}

	copyOne(license, filepath.Join(dir, LicenseFile))
	if icon != "" {
		copyOne(icon, filepath.Join(dir, IconBaseName+filepath.Ext(icon)))
	}
	return copied
}

// findIcon returns the first file in dir named pack_icon with any extension,
// or "" when there is none.
func findIcon(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) == IconBaseName {
			return filepath.Join(dir, name), nil
		}
	}
	return "", nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
