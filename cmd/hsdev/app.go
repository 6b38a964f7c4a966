// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/hsdev/hsdev/internal/capability"
	"github.com/hsdev/hsdev/internal/config"
	"github.com/hsdev/hsdev/internal/discovery"
	"github.com/hsdev/hsdev/internal/driver"
	"github.com/hsdev/hsdev/internal/packages"
	"github.com/hsdev/hsdev/internal/project"
	"github.com/hsdev/hsdev/internal/session"
	"github.com/hsdev/hsdev/internal/toolchain"
	"github.com/hsdev/hsdev/pkg/cabal"
	"github.com/hsdev/hsdev/pkg/platform"
)

type (
	// App wires CLI services and shared dependencies. Command handlers
	// receive it and delegate to the internal packages through it.
	App struct {
		Config   config.Provider
		Runner   capability.Runner
		LookPath toolchain.LookPathFunc
		Platform func(*log.Logger) cabal.Env
		style    string
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies are the injection points for NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config   config.Provider
		Runner   capability.Runner
		LookPath toolchain.LookPathFunc
		Platform func(*log.Logger) cabal.Env
		Stdin    io.Reader
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// globalFlags are the persistent flags shared by every command.
	globalFlags struct {
		verbose    bool
		configFile string
		projectDir string
		envFiles   []string
	}

	// workspace is the per-invocation state derived from flags,
	// configuration and the project root.
	workspace struct {
		cfg          *config.Config
		sources      config.Sources
		root         string
		caps         capability.Set
		locator      *discovery.Locator
		configurator *session.Configurator
		parser       *packages.Parser
	}
)

// NewApp returns an App with defaults for every nil dependency.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:   deps.Config,
		Runner:   deps.Runner,
		LookPath: deps.LookPath,
		Platform: deps.Platform,
		stdin:    deps.Stdin,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		style:    config.ColorSchemeAuto.GlamourStyle(),
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Runner == nil {
		app.Runner = capability.ExecRunner{Sandbox: platform.DetectSandbox()}
	}
	if app.Platform == nil {
		app.Platform = func(l *log.Logger) cabal.Env { return platform.Host(l) }
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{Prefix: "hsdev", Level: level})
}

// open finds the project root, loads configuration and builds the
// discovery and session services.
func (a *App) open(ctx context.Context, flags *globalFlags) (*workspace, error) {
	start := flags.projectDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		start = wd
	}
	var w *workspace
	err := project.WithRoot(start, func(root string) error {
		var err error
		w, err = a.openAt(ctx, flags, root)
		return err
	})
	return w, err
}

func (a *App) openAt(ctx context.Context, flags *globalFlags, root string) (*workspace, error) {
	cfg, sources, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configFile,
		ProjectRoot:    root,
	})
	if err != nil {
		return nil, &configError{err: err}
	}
	a.style = cfg.UI.ColorScheme.GlamourStyle()

	logger := a.newLogger(flags.verbose || cfg.UI.Verbose)
	logger.Debug("project root", "path", root, "user_config", sources.User, "project_config", sources.Project)
	caps := capability.New(logger, a.Runner)

	locator, err := discovery.NewLocator(
		discovery.WithIgnore(cfg.Discovery.Ignore...),
		discovery.WithVendoredDir(cfg.Discovery.VendoredDir),
		discovery.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	parser := packages.NewParser(caps, a.Platform(logger))

	return &workspace{
		cfg:          cfg,
		sources:      sources,
		root:         root,
		caps:         caps,
		locator:      locator,
		parser:       parser,
		configurator: session.NewConfigurator(caps, parser),
	}, nil
}

// packageDirs locates every manifest below the root and returns the
// package directories.
func (w *workspace) packageDirs(ctx context.Context) ([]string, error) {
	files, err := w.locator.Locate(ctx, w.root)
	if err != nil {
		return nil, err
	}
	dirs := discovery.PackageDirs(files)
	w.caps.Log.Debug("located packages", "count", len(dirs))
	return dirs, nil
}

// driver resolves tools and returns a Driver running in the project shell.
func (a *App) driver(w *workspace, flags *globalFlags) (*driver.Driver, error) {
	tools, err := toolchain.Resolve(w.cfg.Shell.Mode, toolchain.Tools{
		GHCi:     w.cfg.Tools.GHCi,
		GHCid:    w.cfg.Tools.GHCid,
		NixShell: w.cfg.Tools.NixShell,
	}, a.LookPath)
	if err != nil {
		return nil, err
	}
	env, err := loadEnvFiles(flags.envFiles)
	if err != nil {
		return nil, err
	}

	opts := []project.ShellOption{
		project.WithMode(w.cfg.Shell.Mode),
		project.WithEnv(env),
		project.WithStdio(a.stdin, a.stdout, a.stderr),
	}
	if tools.NixShell != "" {
		opts = append(opts, project.WithNixShell(tools.NixShell))
	}
	shell, err := project.NewShell(w.caps, w.root, opts...)
	if err != nil {
		return nil, err
	}
	return driver.New(w.caps, shell, tools, w.cfg.Shell.Attr), nil
}

// childExit converts a child process failure into an ExitError carrying
// its status. Interrupts end the session normally.
func childExit(err error) error {
	var pe *capability.ExitError
	if !errors.As(err, &pe) {
		return err
	}
	if pe.Code.IsInterrupt() {
		return nil
	}
	return &ExitError{Code: pe.Code, Err: err}
}
