// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/vermillion-mc/vermillion/internal/descriptor"
)

const (
	// FormatVersion is the manifest schema version written to every document.
	FormatVersion = 2

	// DefaultScriptEntry is the per-file entry of the script module before
	// the script build decides the final one.
	DefaultScriptEntry = "scripts/index.js"

	scriptLanguage = "javascript"
)

const (
	ModuleData      ModuleType = "data"
	ModuleScript    ModuleType = "script"
	ModuleResources ModuleType = "resources"
)

type (
	// ModuleType tags a manifest module.
	ModuleType string

	// Document is one pack manifest.
	Document struct {
		FormatVersion int          `json:"format_version"`
		Header        Header       `json:"header"`
		Modules       []Module     `json:"modules"`
		Dependencies  []Dependency `json:"dependencies"`
	}

	// Header identifies the pack.
	Header struct {
		Name             string                   `json:"name"`
		Description      string                   `json:"description"`
		UUID             uuid.UUID                `json:"uuid"`
		Version          string                   `json:"version"`
		MinEngineVersion descriptor.EngineVersion `json:"min_engine_version"`
	}

	// Module is one capability unit of a pack.
	Module struct {
		Type        ModuleType `json:"type"`
		Language    string     `json:"language,omitempty"`
		UUID        uuid.UUID  `json:"uuid"`
		Version     string     `json:"version"`
		Description string     `json:"description"`
		Entry       string     `json:"entry,omitempty"`
	}

	// Dependency is either a named host module (ModuleName set) or another
	// pack referenced by header identifier (UUID set).
	Dependency struct {
		ModuleName string
		UUID       uuid.UUID
		Version    string
	}

	namedDependencyJSON struct {
		ModuleName string `json:"module_name"`
		Version    string `json:"version"`
	}

	packDependencyJSON struct {
		UUID    uuid.UUID `json:"uuid"`
		Version string    `json:"version"`
	}
)

// NamedDependency builds a dependency on a host module.
func NamedDependency(module, version string) Dependency {
	return Dependency{ModuleName: module, Version: version}
}

// PackDependency builds a dependency on another pack's header.
func PackDependency(id uuid.UUID, version string) Dependency {
	return Dependency{UUID: id, Version: version}
}

// IsNamed reports whether the dependency references a host module.
func (d Dependency) IsNamed() bool { return d.ModuleName != "" }

// MarshalJSON emits module_name+version or uuid+version.
func (d Dependency) MarshalJSON() ([]byte, error) {
	if d.IsNamed() {
		return json.Marshal(namedDependencyJSON{ModuleName: d.ModuleName, Version: d.Version})
	}
	return json.Marshal(packDependencyJSON{UUID: d.UUID, Version: d.Version})
}

// Encode serializes the document the way pack manifests are written.
func (d *Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "    ")
}

// ScriptModule returns the script module, if the document has one.
func (d *Document) ScriptModule() (Module, bool) {
	for _, m := range d.Modules {
		if m.Type == ModuleScript {
			return m, true
		}
	}
	return Module{}, false
}

// ModulesOfType returns the modules tagged t, in document order.
func (d *Document) ModulesOfType(t ModuleType) []Module {
	var out []Module
	for _, m := range d.Modules {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// DependenciesOn returns the pack dependencies referencing id.
func (d *Document) DependenciesOn(id uuid.UUID) []Dependency {
	var out []Dependency
	for _, dep := range d.Dependencies {
		if !dep.IsNamed() && dep.UUID == id {
			out = append(out, dep)
		}
	}
	return out
}

// clone deep-copies the slices of d.
func (d *Document) clone() *Document {
	c := *d
	c.Modules = append([]Module(nil), d.Modules...)
	c.Dependencies = append(make([]Dependency, 0, len(d.Dependencies)), d.Dependencies...)
	return &c
}
