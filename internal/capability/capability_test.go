// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestSet_Fail(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := New(log.New(&buf), nil)
	cause := errors.New("none of the package directories could be parsed")
	err := s.Fail(cause, "cannot build the GHCi session", "dirs", 2)

	if !errors.Is(err, ErrFatal) {
		t.Errorf("Fail() error = %v, want ErrFatal", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Fail() error = %v, want it to wrap the cause", err)
	}
	if want := "cannot build the GHCi session: none of the package directories could be parsed"; err.Error() != want {
		t.Errorf("Fail() error = %q, want %q", err, want)
	}
	for _, want := range []string{"cannot build the GHCi session", "dirs=2", "could be parsed"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log %q does not contain %q", buf.String(), want)
		}
	}
	if err := s.Fail(nil, "stopped"); err.Error() != "stopped" {
		t.Errorf("Fail(nil) error = %q", err)
	}
	if _, ok := s.Runner.(ExecRunner); !ok {
		t.Errorf("New(nil runner) Runner = %T, want ExecRunner", s.Runner)
	}
}

func TestDiscard_RefusesToRun(t *testing.T) {
	t.Parallel()

	err := Discard().Runner.Run(context.Background(), Command{Path: "ghci"})
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Errorf("Run() error = %v, want refusal", err)
	}
}

func TestExecRunner_ExitCode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	var stdout bytes.Buffer
	r := ExecRunner{}
	if err := r.Run(context.Background(), Command{Path: sh, Args: []string{"-c", "echo hi"}, Stdout: &stdout}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stdout.String() != "hi\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "hi\n")
	}

	err = r.Run(context.Background(), Command{Path: sh, Args: []string{"-c", "exit 3"}})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("Run() error = %v, want *ExitError with code 3", err)
	}
	if !errors.Is(err, ErrProcessFailed) {
		t.Error("ExitError should wrap ErrProcessFailed")
	}
}

func TestExecRunner_CancelDoesNotKillChild(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	err = ExecRunner{}.Run(ctx, Command{Path: sh, Args: []string{"-c", "sleep 0.3; exit 3"}})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("Run() error = %v, want the child's own exit status 3", err)
	}
}

func TestExecRunner_CancelledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ExecRunner{}.Run(ctx, Command{Path: "/nonexistent/hsdev-test-binary"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestExecRunner_SignalExitStatus(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses sh and POSIX signals")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	tests := []struct {
		signal string
		want   int
	}{
		{signal: "TERM", want: 143},
		{signal: "KILL", want: 137},
	}
	for _, tt := range tests {
		t.Run(tt.signal, func(t *testing.T) {
			t.Parallel()

			err := ExecRunner{}.Run(context.Background(), Command{Path: sh, Args: []string{"-c", "kill -" + tt.signal + " $$"}})
			var exitErr *ExitError
			if !errors.As(err, &exitErr) || int(exitErr.Code) != tt.want {
				t.Fatalf("Run() error = %v, want exit status %d", err, tt.want)
			}
		})
	}
}

func TestExecRunner_MissingProgram(t *testing.T) {
	t.Parallel()

	err := ExecRunner{}.Run(context.Background(), Command{Path: "/nonexistent/hsdev-test-binary"})
	if err == nil {
		t.Fatal("Run() should fail for a missing program")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("a missing program is not an exit status, got %v", err)
	}
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	c := Command{Path: "ghcid", Args: []string{"-W", "--reload=config"}}
	if got := c.String(); got != "ghcid -W --reload=config" {
		t.Errorf("String() = %q", got)
	}
}
