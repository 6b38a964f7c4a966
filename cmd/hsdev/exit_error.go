// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/hsdev/hsdev/internal/capability"
	"github.com/hsdev/hsdev/pkg/types"
)

// ExitError carries a child's exit status to main without calling os.Exit
// inside command handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the underlying message.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error { return e.Err }

// exitCode maps err to the process exit status: the child's own status when
// ghci or ghcid failed, 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) && ee.Code.Validate() == nil && !ee.Code.IsSuccess() {
		return int(ee.Code)
	}
	var pe *capability.ExitError
	if errors.As(err, &pe) && pe.Code.Validate() == nil && !pe.Code.IsSuccess() {
		return int(pe.Code)
	}
	return 1
}
