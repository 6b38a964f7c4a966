// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hsdev/hsdev/internal/driver"
)

func newPackagesCommand(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List the project packages and their manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.listPackages(cmd.Context(), flags)
		},
	}
}

func (a *App) listPackages(ctx context.Context, flags *globalFlags) error {
	w, err := a.open(ctx, flags)
	if err != nil {
		return err
	}
	dirs, err := w.packageDirs(ctx)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("no packages found below "+w.root))
		return nil
	}

	for _, dir := range dirs {
		res, err := w.parser.Parse(ctx, dir)
		if err != nil {
			w.caps.Log.Warn("failed to parse package", "dir", dir, "err", err)
			continue
		}
		for _, warning := range res.Warnings {
			w.caps.Log.Warn("package description warning", "file", res.Descriptor.File(), "warning", warning)
		}
		d := res.Descriptor
		fmt.Fprintf(a.stdout, "%s %s\n", TitleStyle.Render(d.Name()), PathStyle.Render(relTo(w.root, d.File())))
		fmt.Fprintf(a.stdout, "  source dirs: %s\n", strings.Join(d.SourceDirs(), ", "))
		if lang, ok := d.DefaultLanguage(); ok {
			fmt.Fprintf(a.stdout, "  language:    %s\n", lang)
		}
		if exts := d.DefaultExtensions(); len(exts) > 0 {
			fmt.Fprintf(a.stdout, "  extensions:  %s\n", strings.Join(exts, ", "))
		}
	}
	return nil
}

func newScriptCommand(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "script",
		Short: "Print the GHCi session script for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := app.open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			dirs, err := w.packageDirs(cmd.Context())
			if err != nil {
				return err
			}
			script, err := w.configurator.Build(cmd.Context(), dirs)
			if err != nil {
				return err
			}
			_, err = io.WriteString(app.stdout, script.String())
			return err
		},
	}
}

func newPortCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "port",
		Short: "Print a free local TCP port",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			port, err := driver.FreePort()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, port)
			return nil
		},
	}
}

func relTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
