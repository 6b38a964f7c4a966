// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
)

// ErrFatal is the sentinel error wrapped by FatalError.
var ErrFatal = errors.New("fatal")

type (
	// Set is the capability bundle passed to every component.
	Set struct {
		Log    *log.Logger
		Runner Runner
	}

	// FatalError is returned by Set.Fail. The message has already been
	// logged when the error is created, so callers only need to propagate it.
	FatalError struct {
		Message string
		Err     error
	}
)

// Error implements the error interface.
func (e *FatalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns ErrFatal and the cause, so both errors.Is(err, ErrFatal)
// and matching on the cause keep working.
func (e *FatalError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFatal}
	}
	return []error{ErrFatal, e.Err}
}

// New returns a Set. A nil runner defaults to ExecRunner on the host.
func New(logger *log.Logger, runner Runner) Set {
	if runner == nil {
		runner = ExecRunner{}
	}
	return Set{Log: logger, Runner: runner}
}

// Discard returns a Set whose logger writes nowhere and whose runner
// refuses to start processes.
func Discard() Set {
	return Set{Log: log.New(io.Discard), Runner: refuseRunner{}}
}

// Fail logs msg and cause at error level and returns them as a
// *FatalError. cause may be nil.
func (s Set) Fail(cause error, msg string, keyvals ...any) error {
	if cause != nil {
		keyvals = append(keyvals, "err", cause)
	}
	s.Log.Error(msg, keyvals...)
	return &FatalError{Message: msg, Err: cause}
}
