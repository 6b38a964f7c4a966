// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hsdev/hsdev/internal/appconfig"
	"github.com/hsdev/hsdev/internal/config"
	"github.com/hsdev/hsdev/internal/project"
)

func newConfigsCommand(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "configs [env]",
		Short: "Print the configuration files bundled for an environment",
		Long: `Print every file below <project>/<resources.dir>/<env>. The environment
defaults to resources.env from the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			env := w.cfg.Resources.Env
			if len(args) == 1 {
				env = args[0]
			}
			base := filepath.Join(w.root, w.cfg.Resources.Dir)
			configs, err := appconfig.GetConfigs(afero.NewOsFs(), base, env)
			if err != nil {
				return err
			}
			if len(configs) == 0 {
				w.caps.Log.Warn("no bundled configs", "dir", filepath.Join(base, env))
				return nil
			}
			for _, c := range configs {
				fmt.Fprintln(app.stdout, TitleStyle.Render("== "+c.Path+" =="))
				fmt.Fprint(app.stdout, c.Contents)
				if !strings.HasSuffix(c.Contents, "\n") {
					fmt.Fprintln(app.stdout)
				}
			}
			return nil
		},
	}
}

func newConfigCommand(app *App, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect hsdev configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as CUE",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, _, err := app.loadConfig(cmd, flags)
				if err != nil {
					return err
				}
				fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration files in effect",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, src, err := app.loadConfig(cmd, flags)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "user:    %s\n", orNone(src.User))
				fmt.Fprintf(app.stdout, "project: %s\n", orNone(src.Project))
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default user configuration if none exists",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				dir, err := config.Dir()
				if err != nil {
					return err
				}
				path, err := config.CreateDefaultConfig(dir)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.stdout, SuccessStyle.Render("config: ")+path)
				return nil
			},
		},
	)
	return cmd
}

// loadConfig loads configuration for the project around the working
// directory, or only the user layer outside a project.
func (a *App) loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, config.Sources, error) {
	start := flags.projectDir
	if start == "" {
		start = "."
	}
	root, err := project.FindRoot(start)
	if err != nil && !errors.Is(err, project.ErrProjectRootNotFound) {
		return nil, config.Sources{}, err
	}
	cfg, src, err := a.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: flags.configFile,
		ProjectRoot:    root,
	})
	if err != nil {
		return nil, src, &configError{err: err}
	}
	return cfg, src, nil
}

func orNone(path string) string {
	if path == "" {
		return "(none)"
	}
	return path
}

