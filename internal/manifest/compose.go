// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vermillion-mc/vermillion/internal/descriptor"
	"github.com/vermillion-mc/vermillion/internal/identity"
)

// ErrInvalidTemplate is returned when a template field fails validation.
var ErrInvalidTemplate = errors.New("invalid manifest template")

type (
	// Pair holds both pack documents of one build and the inclusion flags
	// they were linked with. Pair values are never mutated; the With*
	// methods return modified copies.
	Pair struct {
		Behavior *Document
		Resource *Document
		Packs    descriptor.Packs
	}

	// Composer builds manifest pairs.
	Composer struct{}

	// stamp is computed once per build and copied into every field.
	stamp struct {
		name        string
		description string
		version     string
		engine      descriptor.EngineVersion
	}

	// behaviorTemplate keeps the data module as its own field so dropping the
	// script module never depends on module order.
	behaviorTemplate struct {
		header Header
		data   Module
		script *Module
		named  []Dependency
	}

	resourceTemplate struct {
		header    Header
		resources Module
	}
)

// NewComposer returns a Composer.
func NewComposer() *Composer { return &Composer{} }

// Compose builds both documents from record and addon, then links them.
func (c *Composer) Compose(record identity.Record, addon *descriptor.Addon) (Pair, error) {
	engine, err := addon.EngineVersion()
	if err != nil {
		return Pair{}, err
	}
	s := stamp{
		name:        addon.Name,
		description: addon.Description,
		version:     addon.ComposedVersion(),
		engine:      engine,
	}

	bt, err := newBehaviorTemplate(record, addon.Scripts, s)
	if err != nil {
		return Pair{}, err
	}
	rt, err := newResourceTemplate(record, s)
	if err != nil {
		return Pair{}, err
	}

	pair := Pair{
		Behavior: bt.document(),
		Resource: rt.document(),
		Packs:    addon.Packs,
	}
	link(pair, s.version)
	return pair, nil
}

// link adds the cross-pack edges. Each side depends on the other whenever
// both packs are included; neither edge is conditional on the other.
func link(pair Pair, version string) {
	if !pair.Packs.Behavior || !pair.Packs.Resource {
		return
	}
	pair.Behavior.Dependencies = append(pair.Behavior.Dependencies, PackDependency(pair.Resource.Header.UUID, version))
	pair.Resource.Dependencies = append(pair.Resource.Dependencies, PackDependency(pair.Behavior.Header.UUID, version))
}

func newBehaviorTemplate(record identity.Record, scripts descriptor.Scripts, s stamp) (behaviorTemplate, error) {
	header, err := newHeader(record, identity.BehaviorHeader, s)
	if err != nil {
		return behaviorTemplate{}, err
	}
	data, err := newModule(record, identity.BehaviorDataModule, ModuleData, s)
	if err != nil {
		return behaviorTemplate{}, err
	}

	t := behaviorTemplate{header: header, data: data}
	if !scripts.Export {
		return t, nil
	}

	script, err := newModule(record, identity.BehaviorScriptModule, ModuleScript, s)
	if err != nil {
		return behaviorTemplate{}, err
	}
	script.Language = scriptLanguage
	script.Entry = DefaultScriptEntry
	t.script = &script

	for _, dep := range scripts.NamedDependencies() {
		t.named = append(t.named, NamedDependency(dep.Module, dep.Version))
	}
	return t, nil
}

func (t behaviorTemplate) document() *Document {
	modules := []Module{t.data}
	if t.script != nil {
		modules = append(modules, *t.script)
	}
	return &Document{
		FormatVersion: FormatVersion,
		Header:        t.header,
		Modules:       modules,
		Dependencies:  append([]Dependency{}, t.named...),
	}
}

func newResourceTemplate(record identity.Record, s stamp) (resourceTemplate, error) {
	header, err := newHeader(record, identity.ResourceHeader, s)
	if err != nil {
		return resourceTemplate{}, err
	}
	resources, err := newModule(record, identity.ResourceModule, ModuleResources, s)
	if err != nil {
		return resourceTemplate{}, err
	}
	return resourceTemplate{header: header, resources: resources}, nil
}

func (t resourceTemplate) document() *Document {
	return &Document{
		FormatVersion: FormatVersion,
		Header:        t.header,
		Modules:       []Module{t.resources},
		Dependencies:  []Dependency{},
	}
}

func newHeader(record identity.Record, slot identity.Slot, s stamp) (Header, error) {
	id, err := slotID(record, slot, s)
	if err != nil {
		return Header{}, err
	}
	return Header{
		Name:             s.name,
		Description:      s.description,
		UUID:             id,
		Version:          s.version,
		MinEngineVersion: s.engine,
	}, nil
}

func newModule(record identity.Record, slot identity.Slot, typ ModuleType, s stamp) (Module, error) {
	id, err := slotID(record, slot, s)
	if err != nil {
		return Module{}, err
	}
	return Module{
		Type:        typ,
		UUID:        id,
		Version:     s.version,
		Description: s.description,
	}, nil
}

func slotID(record identity.Record, slot identity.Slot, s stamp) (uuid.UUID, error) {
	if s.version == "" {
		return uuid.Nil, fmt.Errorf("%w: empty version", ErrInvalidTemplate)
	}
	id, err := record.Get(slot)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return id, nil
}

// WithScriptEntry returns a copy whose script module points at entry.
// Pairs without a script module are returned unchanged.
func (p Pair) WithScriptEntry(entry string) Pair {
	bp := p.Behavior.clone()
	for i := range bp.Modules {
		if bp.Modules[i].Type == ModuleScript {
			bp.Modules[i].Entry = entry
		}
	}
	p.Behavior = bp
	return p
}

// WithoutScriptModule returns a copy with the script module and the host
// module dependencies removed. The data module stays.
func (p Pair) WithoutScriptModule() Pair {
	bp := p.Behavior.clone()

	modules := bp.Modules[:0]
	for _, m := range bp.Modules {
		if m.Type != ModuleScript {
			modules = append(modules, m)
		}
	}
	bp.Modules = modules

	deps := bp.Dependencies[:0]
	for _, d := range bp.Dependencies {
		if !d.IsNamed() {
			deps = append(deps, d)
		}
	}
	bp.Dependencies = deps

	p.Behavior = bp
	return p
}

// WithNamedDependencies returns a copy with every dependency in deps that is
// not already present appended to the behavior document.
func (p Pair) WithNamedDependencies(deps []Dependency) Pair {
	bp := p.Behavior.clone()
	for _, dep := range deps {
		if !containsNamed(bp.Dependencies, dep.ModuleName) {
			bp.Dependencies = append(bp.Dependencies, dep)
		}
	}
	p.Behavior = bp
	return p
}

func containsNamed(deps []Dependency, module string) bool {
	for _, d := range deps {
		if d.IsNamed() && d.ModuleName == module {
			return true
		}
	}
	return false
}
