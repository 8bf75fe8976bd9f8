// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vermillion-mc/vermillion/internal/assemble"
	"github.com/vermillion-mc/vermillion/internal/buildctx"
	"github.com/vermillion-mc/vermillion/internal/descriptor"
	"github.com/vermillion-mc/vermillion/internal/identity"
	"github.com/vermillion-mc/vermillion/internal/issue"
	"github.com/vermillion-mc/vermillion/internal/manifest"
	"github.com/vermillion-mc/vermillion/internal/scripts"
)

// ErrNoViableScripts is returned when script export was requested but no
// entry module exists after the script phase. Manifests are still written.
var ErrNoViableScripts = errors.New("no viable script entry")

type (
	// IdentityStore provides the persistent identity record.
	IdentityStore interface {
		Load(ctx context.Context) (identity.Record, bool, error)
		Ensure(ctx context.Context) (identity.Record, bool, error)
	}

	// ScriptBuilder runs the script phase.
	ScriptBuilder interface {
		Build(ctx context.Context, bctx buildctx.Context, cfg descriptor.Scripts) (*scripts.Result, error)
	}

	// PackAssembler writes the packs.
	PackAssembler interface {
		Assemble(ctx context.Context, bctx buildctx.Context, pair manifest.Pair) (*assemble.Report, error)
	}

	// Pipeline wires the build phases together.
	Pipeline struct {
		Identity  IdentityStore
		Composer  *manifest.Composer
		Scripts   ScriptBuilder
		Assembler PackAssembler
		Logger    *log.Logger
	}

	// Report summarizes a run.
	Report struct {
		Identity        identity.Record
		IdentityCreated bool
		Version         string
		Pair            manifest.Pair
		Scripts         *scripts.Result
		Assembly        *assemble.Report
	}
)

// Run performs one export of addon into the packs of bctx. The identity
// record is settled before anything else happens. A non-nil Report is
// returned with ErrNoViableScripts so callers can still render it.
func (p *Pipeline) Run(ctx context.Context, bctx buildctx.Context, addon *descriptor.Addon) (*Report, error) {
	logger := p.logger()
	logger.Info("Exporting add-on in working directory", "root", bctx.Root())
	if bctx.FilterDir() != "" {
		logger.Debug("Filter directory", "dir", bctx.FilterDir())
	}

	record, created, err := p.Identity.Ensure(ctx)
	if err != nil {
		return nil, identityError(err)
	}
	if created {
		logger.Info("Generated new pack identities", "file", bctx.IdentityFile())
	}

	pair, err := p.composer().Compose(record, addon)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("compose manifests").
			WithResource(bctx.DescriptorFile()).
			WithSuggestion("Check the engine version and pack settings of the descriptor").
			Wrap(err).
			BuildError()
	}

	report := &Report{
		Identity:        record,
		IdentityCreated: created,
		Version:         addon.ComposedVersion(),
	}

	noViable := false
	if pair.Packs.Behavior && addon.Scripts.Export {
		res, err := p.Scripts.Build(ctx, bctx, addon.Scripts)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("compile scripts").
				WithResource(bctx.DataRoot()).
				Wrap(err).
				BuildError()
		}
		report.Scripts = res

		pair = pair.WithNamedDependencies(res.Dependencies)
		if res.Viable {
			pair = pair.WithScriptEntry(res.Entry)
		} else {
			logger.Error("No script entry was produced; the script module is left out of the manifest")
			pair = pair.WithoutScriptModule()
			noViable = true
		}
	}
	report.Pair = pair

	assembly, err := p.Assembler.Assemble(ctx, bctx, pair)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("write packs").
			WithResource(bctx.Root()).
			WithSuggestion("Check that the staging directories are writable").
			WithIssue(issue.ManifestWriteFailedId).
			Wrap(err).
			BuildError()
	}
	report.Assembly = assembly

	if noViable {
		return report, issue.NewErrorContext().
			WithOperation("export scripts").
			WithResource(bctx.DataRoot()).
			WithSuggestion("Fix the reported compile errors in the entry files").
			WithIssue(issue.ScriptsNotViableId).
			Wrap(ErrNoViableScripts).
			BuildError()
	}
	return report, nil
}

// Preview composes both manifests without writing anything. When no record
// has been persisted yet a throwaway one is used and persisted is false.
func (p *Pipeline) Preview(ctx context.Context, addon *descriptor.Addon) (pair manifest.Pair, persisted bool, err error) {
	record, ok, err := p.Identity.Load(ctx)
	if err != nil {
		return manifest.Pair{}, false, identityError(err)
	}
	if !ok {
		if record, err = identity.NewRecord(); err != nil {
			return manifest.Pair{}, false, err
		}
	}
	pair, err = p.composer().Compose(record, addon)
	if err != nil {
		return manifest.Pair{}, false, err
	}
	return pair, ok, nil
}

func identityError(err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("load pack identities").
		Wrap(err)
	if errors.Is(err, identity.ErrMalformedRecord) {
		ctx = ctx.
			WithSuggestion("Restore uuids.json from version control").
			WithSuggestion("Run 'vermillion identity reset' to generate new identities").
			WithIssue(issue.IdentityCorruptId)
	}
	return ctx.BuildError()
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}

func (p *Pipeline) composer() *manifest.Composer {
	if p.Composer == nil {
		return manifest.NewComposer()
	}
	return p.Composer
}
