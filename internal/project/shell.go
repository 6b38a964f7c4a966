// SPDX-License-Identifier: MPL-2.0

package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/hsdev/hsdev/internal/capability"
	"github.com/hsdev/hsdev/pkg/types"
)

const (
	// ShellNix runs tools through nix-shell.
	ShellNix ShellMode = "nix"
	// ShellHost runs tools directly on the host.
	ShellHost ShellMode = "host"
)

// ErrInvalidShellMode is the sentinel error wrapped by InvalidShellModeError.
var ErrInvalidShellMode = errors.New("invalid shell mode")

type (
	// ShellMode selects how tools are started.
	ShellMode string

	// InvalidShellModeError is returned for an unknown ShellMode.
	InvalidShellModeError struct {
		Value ShellMode
	}

	// ShellOption configures a Shell.
	ShellOption func(*Shell)

	// Shell runs command lines inside the project's development shell.
	Shell struct {
		caps     capability.Set
		root     string
		mode     ShellMode
		nixShell string
		env      []string
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
	}
)

// Error implements the error interface.
func (e *InvalidShellModeError) Error() string {
	return fmt.Sprintf("invalid shell mode %q (must be %q or %q)", e.Value, ShellNix, ShellHost)
}

// Unwrap returns ErrInvalidShellMode for errors.Is() compatibility.
func (e *InvalidShellModeError) Unwrap() error { return ErrInvalidShellMode }

// Validate returns an error for unknown modes.
func (m ShellMode) Validate() error {
	switch m {
	case ShellNix, ShellHost:
		return nil
	default:
		return &InvalidShellModeError{Value: m}
	}
}

// WithMode sets the shell mode. The default is ShellNix.
func WithMode(mode ShellMode) ShellOption {
	return func(s *Shell) { s.mode = mode }
}

// WithNixShell sets the nix-shell executable. The default is "nix-shell".
func WithNixShell(path string) ShellOption {
	return func(s *Shell) { s.nixShell = path }
}

// WithEnv adds KEY=VALUE entries on top of the inherited environment.
func WithEnv(env []string) ShellOption {
	return func(s *Shell) { s.env = append(s.env, env...) }
}

// WithStdio connects the tool's standard streams. The default is the
// process's own.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) ShellOption {
	return func(s *Shell) {
		s.stdin, s.stdout, s.stderr = stdin, stdout, stderr
	}
}

// NewShell returns a Shell for the project at root.
func NewShell(caps capability.Set, root string, opts ...ShellOption) (*Shell, error) {
	s := &Shell{
		caps:     caps,
		root:     root,
		mode:     ShellNix,
		nixShell: "nix-shell",
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.mode.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the project root.
func (s *Shell) Root() string { return s.root }

// CommandLine quotes argv for a POSIX shell.
func CommandLine(argv []string) (string, error) {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("quote argument %q: %w", arg, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}

// Run runs argv in the shell provided for tool. A non-zero exit status is
// returned as a *capability.ExitError.
func (s *Shell) Run(ctx context.Context, tool string, argv []string) error {
	line, err := CommandLine(argv)
	if err != nil {
		return err
	}
	s.caps.Log.Debug("running in project shell", "mode", s.mode, "tool", tool, "cmd", line)

	if s.mode == ShellHost {
		return s.runHost(ctx, line)
	}
	return s.caps.Runner.Run(ctx, capability.Command{
		Path:   s.nixShell,
		Args:   []string{s.root, "-A", "shells." + tool, "--run", line},
		Dir:    s.root,
		Env:    s.environ(),
		Stdin:  s.stdin,
		Stdout: s.stdout,
		Stderr: s.stderr,
	})
}

func (s *Shell) environ() []string {
	if len(s.env) == 0 {
		return nil
	}
	return append(os.Environ(), s.env...)
}

// runHost interprets line with the embedded shell. External commands are
// handed to the capability runner.
func (s *Shell) runHost(ctx context.Context, line string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return fmt.Errorf("parse command line: %w", err)
	}

	runner, err := interp.New(
		interp.Dir(s.root),
		interp.Env(expand.ListEnviron(append(os.Environ(), s.env...)...)),
		interp.StdIO(s.stdin, s.stdout, s.stderr),
		interp.ExecHandlers(s.execHandler),
	)
	if err != nil {
		return fmt.Errorf("create shell interpreter: %w", err)
	}

	err = runner.Run(ctx, prog)
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return &capability.ExitError{Path: firstWord(line), Code: types.ExitCode(status)}
	}
	if err != nil {
		return fmt.Errorf("run command line: %w", err)
	}
	return nil
}

func (s *Shell) execHandler(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)

		path := args[0]
		if !filepath.IsAbs(path) {
			found, err := interp.LookPathDir(hc.Dir, hc.Env, path)
			if err != nil {
				fmt.Fprintf(hc.Stderr, "%s: command not found\n", path)
				return interp.ExitStatus(127)
			}
			path = found
		}

		var env []string
		hc.Env.Each(func(name string, vr expand.Variable) bool {
			if vr.Exported && vr.IsSet() {
				env = append(env, name+"="+vr.String())
			}
			return true
		})

		err := s.caps.Runner.Run(ctx, capability.Command{
			Path:   path,
			Args:   args[1:],
			Dir:    hc.Dir,
			Env:    env,
			Stdin:  hc.Stdin,
			Stdout: hc.Stdout,
			Stderr: hc.Stderr,
		})
		var exitErr *capability.ExitError
		if errors.As(err, &exitErr) {
			return interp.ExitStatus(exitErr.Code)
		}
		return err
	}
}

func firstWord(line string) string {
	if fields := strings.Fields(line); len(fields) > 0 {
		return strings.Trim(fields[0], `'"`)
	}
	return line
}
