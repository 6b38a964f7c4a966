// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/hsdev/hsdev/internal/capability"
)

// Runner is a capability.Runner that records commands instead of running
// them. Each call pops the next queued result; with an empty queue it
// succeeds. OnRun, when set, is invoked synchronously for every command
// before the result is returned.
type Runner struct {
	mu       sync.Mutex
	commands []capability.Command
	results  []error

	OnRun func(capability.Command)
}

// Queue appends results returned by later calls, in order.
func (r *Runner) Queue(results ...error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, results...)
}

// Run implements capability.Runner.
func (r *Runner) Run(_ context.Context, cmd capability.Command) error {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	var result error
	if len(r.results) > 0 {
		result = r.results[0]
		r.results = r.results[1:]
	}
	hook := r.OnRun
	r.mu.Unlock()

	if hook != nil {
		hook(cmd)
	}
	return result
}

// Commands returns a copy of the recorded commands.
func (r *Runner) Commands() []capability.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.commands)
}

// Capabilities returns a capability set using runner and a debug-level
// logger that writes into the returned buffer.
func Capabilities(t testing.TB, runner capability.Runner) (capability.Set, *bytes.Buffer) {
	t.Helper()
	var buf syncBuffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	if runner == nil {
		runner = &Runner{}
	}
	return capability.Set{Log: logger, Runner: runner}, &buf.Buffer
}

// syncBuffer serialises writes from concurrent loggers.
type syncBuffer struct {
	mu sync.Mutex
	bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Buffer.Write(p)
}
