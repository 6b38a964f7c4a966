// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"path"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hsdev/hsdev/internal/config"
	"github.com/hsdev/hsdev/internal/driver"
	"github.com/hsdev/hsdev/internal/watch"
	"github.com/hsdev/hsdev/pkg/types"
)

type runOptions struct {
	port    int
	test    string
	reload  []string
	noWatch bool
}

func newRunCommand(app *App, flags *globalFlags) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the ghcid live-reload loop",
		Long: `Start ghcid on all project packages. After every successful reload the
test hook starts the application on a free local port. Editing a package
manifest regenerates the GHCi script and restarts ghcid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd.Context(), flags, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port passed to the test hook (default: a free port)")
	cmd.Flags().StringVar(&opts.test, "test", "", "override the test hook; "+config.PortPlaceholder+" is replaced with the port")
	cmd.Flags().StringArrayVar(&opts.reload, "reload", nil, "extra path that triggers a reload (repeatable)")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch-manifests", false, "do not regenerate the script when manifests change")
	return cmd
}

func (a *App) run(ctx context.Context, flags *globalFlags, opts *runOptions) error {
	w, err := a.open(ctx, flags)
	if err != nil {
		return err
	}
	drv, err := a.driver(w, flags)
	if err != nil {
		return err
	}
	dirs, err := w.packageDirs(ctx)
	if err != nil {
		return err
	}

	port := types.ListenPort(opts.port)
	if port.IsChosen() {
		if err := port.Validate(); err != nil {
			return err
		}
	} else if port, err = driver.FreePort(); err != nil {
		return err
	}

	runCfg := w.cfg.Run
	if opts.test != "" {
		runCfg.Test = opts.test
	}
	watchOpts := driver.WatchOptions{
		TestCommand: runCfg.TestCommand(port),
		ReloadPaths: slices.Concat(runCfg.Reload, opts.reload),
		OutputFile:  runCfg.OutputFile,
	}
	w.caps.Log.Info("application port", "port", port, "url", "http://"+port.Addr("localhost"))

	err = w.configurator.WithScript(ctx, dirs, func(script string) error {
		watchOpts.RestartPaths = []string{script}
		if !runCfg.WatchManifests || opts.noWatch {
			return drv.RunWatcher(ctx, script, watchOpts)
		}
		return a.runWithManifestWatch(ctx, w, script, func(ctx context.Context) error {
			return drv.RunWatcher(ctx, script, watchOpts)
		})
	})
	return childExit(err)
}

// runWithManifestWatch runs fn while a watcher regenerates script whenever
// a package manifest changes. ghcid notices the rewrite through its
// --restart flag.
func (a *App) runWithManifestWatch(ctx context.Context, w *workspace, script string, fn func(context.Context) error) error {
	ignore := slices.Clone(w.cfg.Discovery.Ignore)
	if vendored := strings.Trim(w.cfg.Discovery.VendoredDir, "/"); vendored != "" {
		ignore = append(ignore, path.Join(vendored, "**"))
	}

	mw, err := watch.New(watch.Config{
		BaseDir:  w.root,
		Patterns: watch.ManifestPatterns,
		Ignore:   ignore,
		Logger:   w.caps.Log,
		OnChange: func(ctx context.Context, changed []string) error {
			w.caps.Log.Info("package manifests changed, regenerating GHCi script", "files", changed)
			dirs, err := w.packageDirs(ctx)
			if err != nil {
				return err
			}
			return w.configurator.Refresh(ctx, dirs, script)
		},
	})
	if err != nil {
		return err
	}

	watchCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := mw.Run(watchCtx); err != nil {
			w.caps.Log.Warn("manifest watcher stopped", "err", err)
		}
	}()

	runErr := fn(ctx)
	stop()
	<-done
	return runErr
}
