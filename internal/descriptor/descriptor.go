// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/vermillion-mc/vermillion/pkg/types"
)

// VersionSeparator joins the descriptor version and the target qualifier.
const VersionSeparator = "+"

var (
	// ErrInvalidDescriptor is wrapped by every descriptor validation failure.
	ErrInvalidDescriptor = errors.New("invalid addon descriptor")
	// ErrInvalidEngineVersion is returned for an engine string that is not a numeric triple.
	ErrInvalidEngineVersion = errors.New("invalid engine version")
)

type (
	// Addon is the addon descriptor.
	Addon struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Version     string  `json:"version"`
		Target      string  `json:"target"`
		Engine      string  `json:"engine"`
		Packs       Packs   `json:"packs"`
		Scripts     Scripts `json:"scripts"`
	}

	// Packs selects which output packs are produced.
	Packs struct {
		Behavior bool `json:"behavior"`
		Resource bool `json:"resource"`
	}

	// Scripts configures script export for the behavior pack.
	Scripts struct {
		Export       bool              `json:"export"`
		Entrypoints  []string          `json:"entrypoints"`
		Bundle       bool              `json:"bundle"`
		Minify       bool              `json:"minify"`
		External     []string          `json:"external"`
		Dependencies map[string]string `json:"dependencies"`
	}

	// NamedDependency is a host module the script module depends on.
	NamedDependency struct {
		Module  string
		Version string
	}

	// EngineVersion is the minimum engine version triple.
	EngineVersion [3]int
)

// ComposedVersion is the version stamped on every header and module of a build.
func (a *Addon) ComposedVersion() string {
	return a.Version + VersionSeparator + a.Target
}

// EngineVersion parses the engine string ("1.20.0") into a triple.
func (a *Addon) EngineVersion() (EngineVersion, error) {
	return ParseEngineVersion(a.Engine)
}

// NamedDependencies returns the script dependency mapping ordered by module name.
func (s Scripts) NamedDependencies() []NamedDependency {
	names := maps.Keys(s.Dependencies)
	slices.Sort(names)
	deps := make([]NamedDependency, 0, len(names))
	for _, name := range names {
		deps = append(deps, NamedDependency{Module: name, Version: s.Dependencies[name]})
	}
	return deps
}

// Validate checks constraints the schema does not express.
func (a *Addon) Validate() error {
	var errs []error

	if err := types.DescriptionText(a.Description).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("description: %w", err))
	}
	if _, err := a.EngineVersion(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}
	if !a.Packs.Behavior && !a.Packs.Resource {
		errs = append(errs, errors.New("packs: at least one of behavior or resource must be enabled"))
	}
	if a.Scripts.Export {
		if len(a.Scripts.Entrypoints) == 0 {
			errs = append(errs, errors.New("scripts.entrypoints: required when scripts.export is true"))
		}
		for i, entry := range a.Scripts.Entrypoints {
			if strings.TrimSpace(entry) == "" {
				errs = append(errs, fmt.Errorf("scripts.entrypoints[%d]: must not be empty", i))
			}
		}
	}
	for _, dep := range a.Scripts.NamedDependencies() {
		if strings.TrimSpace(dep.Version) == "" {
			errs = append(errs, fmt.Errorf("scripts.dependencies[%q]: version must not be empty", dep.Module))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, errors.Join(errs...))
	}
	return nil
}

// ParseEngineVersion parses "major.minor.patch", tolerating spaces around parts.
func ParseEngineVersion(s string) (EngineVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return EngineVersion{}, fmt.Errorf("%w: %q must have three parts", ErrInvalidEngineVersion, s)
	}

	var v EngineVersion
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return EngineVersion{}, fmt.Errorf("%w: %q part %d is not a number", ErrInvalidEngineVersion, s, i+1)
		}
		v[i] = n
	}
	return v, nil
}

// String returns the dotted form of the version.
func (v EngineVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}
