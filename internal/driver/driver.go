// SPDX-License-Identifier: MPL-2.0

package driver

import (
	"context"
	"fmt"
	"net"

	"github.com/hsdev/hsdev/internal/capability"
	"github.com/hsdev/hsdev/internal/project"
	"github.com/hsdev/hsdev/internal/toolchain"
	"github.com/hsdev/hsdev/pkg/types"
)

const (
	// DefaultOutputFile is where ghcid writes its latest results.
	DefaultOutputFile = "ghcid-output.txt"

	// DefaultShellAttr selects the Nix shell ghci and ghcid run in.
	DefaultShellAttr = "ghc"
)

type (
	// ExitError is returned when ghci or ghcid exits unsuccessfully.
	ExitError = capability.ExitError

	// Shell runs a command line inside the project shell.
	Shell interface {
		Run(ctx context.Context, tool string, argv []string) error
	}

	// WatchOptions configures a ghcid run.
	WatchOptions struct {
		// TestCommand is evaluated by GHCi after every successful reload.
		TestCommand string
		// ReloadPaths are extra files or directories that trigger a reload.
		ReloadPaths []string
		// RestartPaths are files whose change restarts GHCi from scratch.
		RestartPaths []string
		// OutputFile defaults to DefaultOutputFile.
		OutputFile string
	}

	// Driver starts interactive and live-reload sessions.
	Driver struct {
		caps      capability.Set
		shell     Shell
		tools     toolchain.Tools
		shellAttr string
	}
)

// New returns a Driver. An empty shellAttr means DefaultShellAttr.
func New(caps capability.Set, shell Shell, tools toolchain.Tools, shellAttr string) *Driver {
	if shellAttr == "" {
		shellAttr = DefaultShellAttr
	}
	return &Driver{caps: caps, shell: shell, tools: tools, shellAttr: shellAttr}
}

// BaseOptions are the GHCi options shared by both session kinds.
func BaseOptions(scriptPath string) []string {
	return []string{"-no-user-package-db", "-package-env", "-", "-ghci-script", scriptPath}
}

// ReplArgs is the argv of an interactive GHCi session.
func (d *Driver) ReplArgs(scriptPath string) []string {
	return append([]string{d.tools.GHCi}, BaseOptions(scriptPath)...)
}

// WatchArgs is the argv of a ghcid session.
func (d *Driver) WatchArgs(scriptPath string, opts WatchOptions) ([]string, error) {
	ghci := append([]string{d.tools.GHCi, "-Wall", "-Wredundant-constraints", "-ignore-dot-ghci"}, BaseOptions(scriptPath)...)
	command, err := project.CommandLine(ghci)
	if err != nil {
		return nil, err
	}

	output := opts.OutputFile
	if output == "" {
		output = DefaultOutputFile
	}
	args := []string{
		d.tools.GHCid,
		"-W",
		"--command=" + command,
		"--reload=config",
		"--outputfile=" + output,
	}
	for _, p := range opts.ReloadPaths {
		args = append(args, "--reload="+p)
	}
	for _, p := range opts.RestartPaths {
		args = append(args, "--restart="+p)
	}
	if opts.TestCommand != "" {
		args = append(args, "--test="+opts.TestCommand)
	}
	return args, nil
}

// RunRepl starts GHCi on the script with the terminal attached and blocks
// until it exits. Ctrl-C reaches GHCi through the terminal; cancelling ctx
// does not end the session.
func (d *Driver) RunRepl(ctx context.Context, scriptPath string) error {
	argv := d.ReplArgs(scriptPath)
	d.caps.Log.Info("starting ghci", "script", scriptPath)
	return d.shell.Run(context.WithoutCancel(ctx), d.shellAttr, argv)
}

// RunWatcher starts ghcid on the script and blocks until it exits. Like
// RunRepl it is stopped only by signals delivered to the child.
func (d *Driver) RunWatcher(ctx context.Context, scriptPath string, opts WatchOptions) error {
	argv, err := d.WatchArgs(scriptPath, opts)
	if err != nil {
		return err
	}
	d.caps.Log.Info("starting ghcid", "script", scriptPath, "test", opts.TestCommand)
	return d.shell.Run(context.WithoutCancel(ctx), d.shellAttr, argv)
}

// FreePort asks the kernel for an unused TCP port on the loopback
// interface. The port is released before returning, so another process may
// claim it first.
func FreePort() (types.ListenPort, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("find free port: %w", err)
	}
	addr, ok := l.Addr().(*net.TCPAddr)
	if closeErr := l.Close(); closeErr != nil {
		return 0, fmt.Errorf("find free port: %w", closeErr)
	}
	if !ok {
		return 0, fmt.Errorf("find free port: unexpected address %s", l.Addr())
	}
	port := types.ListenPort(addr.Port)
	if err := port.Validate(); err != nil || !port.IsChosen() {
		return 0, fmt.Errorf("find free port: kernel returned port %d", addr.Port)
	}
	return port, nil
}
