// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/hsdev/hsdev/internal/capability"
	"github.com/hsdev/hsdev/internal/discovery"
	"github.com/hsdev/hsdev/internal/issue"
	"github.com/hsdev/hsdev/internal/project"
	"github.com/hsdev/hsdev/internal/session"
	"github.com/hsdev/hsdev/internal/toolchain"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// errConfig marks configuration failures for issue lookup.
	errConfig = errors.New("configuration error")
)

// configError tags a configuration failure without changing its message.
type configError struct{ err error }

func (e *configError) Error() string   { return e.err.Error() }
func (e *configError) Unwrap() []error { return []error{e.err, errConfig} }

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) (*cobra.Command, *globalFlags) {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "hsdev",
		Short: "Develop full-stack Haskell applications with GHCi and ghcid",
		Long: TitleStyle.Render("hsdev") + SubtitleStyle.Render(" - Haskell full-stack development loop") + `

hsdev finds the backend, frontend and common packages of a project,
generates a GHCi session script from their manifests (.cabal or
package.yaml) and runs ghcid with live reload on a free local port.

` + SubtitleStyle.Render("Examples:") + `
  hsdev run                 Start the ghcid live-reload loop
  hsdev repl                Open an interactive GHCi session
  hsdev packages            List the packages that will be loaded
  hsdev script              Print the generated GHCi script
  hsdev configs prod        Print the bundled configs for 'prod'`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&flags.configFile, "config", "", "user config file (default is <config dir>/hsdev/config.cue)")
	pf.StringVarP(&flags.projectDir, "project", "C", "", "start the project root search here instead of the working directory")
	pf.StringArrayVar(&flags.envFiles, "env-file", nil, "dotenv file added to the child environment (repeatable)")

	root.AddCommand(
		newRunCommand(app, flags),
		newReplCommand(app, flags),
		newPackagesCommand(app, flags),
		newScriptCommand(app, flags),
		newPortCommand(app),
		newConfigsCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return root, flags
}

// Execute runs the CLI and exits with the appropriate status. It is called
// by main.main.
func Execute() {
	app := NewApp(Dependencies{})
	root, flags := NewRootCommand(app)
	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		app.reportFailure(err, flags.verbose)
		os.Exit(exitCode(err))
	}
}

// issueFor maps an error to the help page that explains it.
func issueFor(err error) (issue.Id, bool) {
	switch {
	case errors.Is(err, project.ErrProjectRootNotFound):
		return issue.ProjectRootNotFoundId, true
	case errors.Is(err, toolchain.ErrToolNotFound):
		return issue.ToolNotFoundId, true
	case errors.Is(err, session.ErrNoValidPackages):
		return issue.NoValidPackagesId, true
	case errors.Is(err, discovery.ErrManifestAmbiguous):
		return issue.ManifestAmbiguousId, true
	case errors.Is(err, discovery.ErrManifestNotFound):
		return issue.ManifestNotFoundId, true
	case errors.Is(err, errConfig):
		return issue.ConfigLoadFailedId, true
	case errors.Is(err, capability.ErrProcessFailed):
		return issue.ProcessFailedId, true
	default:
		return 0, false
	}
}

// reportFailure prints guidance after fang has printed the error itself.
// Child process failures already produced their own output, so their page
// is only shown in verbose mode.
func (a *App) reportFailure(err error, verbose bool) {
	if id, ok := issueFor(err); ok && (id != issue.ProcessFailedId || verbose) {
		out, renderErr := issue.Get(id).Render(a.style)
		if renderErr == nil {
			fmt.Fprint(a.stderr, out)
			return
		}
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) && (ae.HasSuggestions() || verbose) {
		fmt.Fprintln(a.stderr, ae.Format(verbose))
	}
}
