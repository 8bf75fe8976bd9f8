// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vermillion-mc/vermillion/internal/assemble"
	"github.com/vermillion-mc/vermillion/internal/buildctx"
	"github.com/vermillion-mc/vermillion/internal/config"
	"github.com/vermillion-mc/vermillion/internal/descriptor"
	"github.com/vermillion-mc/vermillion/internal/identity"
	"github.com/vermillion-mc/vermillion/internal/issue"
	"github.com/vermillion-mc/vermillion/internal/manifest"
	"github.com/vermillion-mc/vermillion/internal/pipeline"
	"github.com/vermillion-mc/vermillion/internal/scripts"
	"github.com/vermillion-mc/vermillion/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and builds its session from it.
	App struct {
		Config      ConfigProvider
		Transformer scripts.Transformer
		Bundler     scripts.Bundler
		stdout      io.Writer
		stderr      io.Writer
		flags       globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Transformer scripts.Transformer
		Bundler     scripts.Bundler
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	globalFlags struct {
		root       string
		configFile string
		logLevel   string
		verbose    bool
	}

	// session is the resolved state of one invocation.
	session struct {
		cfg    *config.Config
		bctx   buildctx.Context
		logger *log.Logger
	}
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		Transformer: deps.Transformer,
		Bundler:     deps.Bundler,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Transformer == nil {
		app.Transformer = scripts.NewTransformer()
	}
	if app.Bundler == nil {
		app.Bundler = scripts.NewBundler()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// newSession resolves the project root, loads configuration and builds the
// logger and build context.
func (a *App) newSession(ctx context.Context) (*session, error) {
	env, err := buildctx.LoadEnv()
	if err != nil {
		return nil, err
	}
	rootArg, err := env.ResolveRoot(a.flags.root)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve project root").
			WithSuggestion("Run vermillion as a Regolith filter, which exports ROOT_DIR").
			WithSuggestion("Pass the project directory with --root").
			WithIssue(issue.RootDirMissingId).
			Wrap(err).
			BuildError()
	}
	root, err := types.FilesystemPath(rootArg).Abs()
	if err != nil {
		return nil, err
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(a.flags.configFile),
		RootDir:        root,
	})
	if err != nil {
		return nil, err
	}

	level, err := a.logLevel(cfg)
	if err != nil {
		return nil, err
	}

	bctx, err := buildctx.New(root.String(), buildctx.Options{
		StagingDir:     cfg.Staging,
		DescriptorFile: cfg.Descriptor,
		IdentityFile:   cfg.IdentityFile,
		FilterDir:      env.FilterDir,
	})
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, bctx: bctx, logger: newLogger(a.stderr, level)}, nil
}

// logLevel applies --verbose and --log-level over the configured level.
func (a *App) logLevel(cfg *config.Config) (config.LogLevel, error) {
	level := cfg.LogLevel
	if a.flags.logLevel != "" {
		level = config.LogLevel(a.flags.logLevel)
		if err := level.Validate(); err != nil {
			return "", err
		}
	}
	if a.flags.verbose {
		level = config.LogLevelDebug
	}
	return level, nil
}

func (s *session) loadDescriptor() (*descriptor.Addon, error) {
	addon, err := descriptor.Load(s.bctx.DescriptorFile())
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read addon descriptor").
			WithResource(s.bctx.DescriptorFile()).
			WithSuggestion("Check the descriptor against the documented fields").
			WithIssue(issue.DescriptorParseErrorId).
			Wrap(err).
			BuildError()
	}
	return addon, nil
}

func (a *App) newPipeline(s *session) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Identity: identity.NewStore(s.bctx.IdentityFile()),
		Composer: manifest.NewComposer(),
		Scripts: scripts.NewBuilder(a.Transformer, a.Bundler,
			scripts.WithLogger(s.logger),
			scripts.WithWorkers(s.cfg.Workers()),
		),
		Assembler: assemble.New(s.logger),
		Logger:    s.logger,
	}
}

// fail prints err the way the CLI reports fatal conditions and returns the
// ExitError that ends the process with a failure code.
func (a *App) fail(cmd *cobra.Command, err error) error {
	fmt.Fprintf(a.stderr, "%s %s\n", errorIcon, formatErrorForDisplay(err, a.flags.verbose))

	var ae *issue.ActionableError
	if a.flags.verbose && errors.As(err, &ae) && ae.Issue != 0 {
		if iss := issue.Get(ae.Issue); iss != nil {
			if rendered, renderErr := iss.Render("dark"); renderErr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: types.ExitFailure, Err: err}
}
