// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"hsdev": Execute,
	})
}

// TestScripts runs the CLI scenarios in testdata/*.txtar against the real
// command tree, in-process.
func TestScripts(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			cfgHome := filepath.Join(env.WorkDir, ".config")
			if err := os.MkdirAll(cfgHome, 0o755); err != nil {
				return err
			}
			env.Setenv("XDG_CONFIG_HOME", cfgHome)
			env.Setenv("NO_COLOR", "1")
			return nil
		},
	})
}
