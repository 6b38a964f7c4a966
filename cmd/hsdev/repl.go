// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newReplCommand(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Open an interactive GHCi session with all project packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.repl(cmd.Context(), flags)
		},
	}
}

func (a *App) repl(ctx context.Context, flags *globalFlags) error {
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
	return childExit(w.configurator.WithScript(ctx, dirs, func(script string) error {
		return drv.RunRepl(ctx, script)
	}))
}
