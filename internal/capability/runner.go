// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"

	"github.com/hsdev/hsdev/pkg/platform"
	"github.com/hsdev/hsdev/pkg/types"
)

// ErrProcessFailed is the sentinel error wrapped by ExitError.
var ErrProcessFailed = errors.New("process exited with non-zero status")

type (
	// Command describes a process to run.
	Command struct {
		// Path is the program, either absolute or looked up in PATH.
		Path string
		Args []string
		// Dir is the working directory; empty means the current one.
		Dir string
		// Env is the complete environment; nil inherits the parent's.
		Env    []string
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Runner starts a process and waits for it. A non-zero exit status is
	// reported as an *ExitError.
	Runner interface {
		Run(ctx context.Context, cmd Command) error
	}

	// ExecRunner runs commands with os/exec. When Sandbox is set the
	// command is routed to the host through the sandbox's escape hatch.
	//
	// Children share hsdev's process group and terminal, so they receive
	// the terminal's interrupts directly. Cancelling the context after the
	// child has started does not stop it: Run waits for the child to exit
	// on its own.
	ExecRunner struct {
		Sandbox platform.SandboxType
	}

	// ExitError reports a process that ran but exited unsuccessfully.
	ExitError struct {
		Path string
		Code types.ExitCode
	}

	refuseRunner struct{}
)

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %s", e.Path, e.Code)
}

// Unwrap returns ErrProcessFailed for errors.Is() compatibility.
func (e *ExitError) Unwrap() error { return ErrProcessFailed }

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, c Command) error {
	argv := platform.HostCommand(r.Sandbox, append([]string{c.Path}, c.Args...))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run %s: %w", c.Path, err)
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Path: c.Path, Code: exitStatus(exitErr)}
	}
	return fmt.Errorf("run %s: %w", c.Path, err)
}

// exitStatus reports a signal death the way a shell does, as 128 plus the
// signal number, so an interrupted child yields 130.
func exitStatus(exitErr *exec.ExitError) types.ExitCode {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return types.ExitCode(128 + int(ws.Signal()))
	}
	code := types.ExitCode(exitErr.ExitCode())
	if code.Validate() != nil {
		return 1
	}
	return code
}

func (refuseRunner) Run(_ context.Context, c Command) error {
	return fmt.Errorf("run %s: process execution is disabled", c.Path)
}
