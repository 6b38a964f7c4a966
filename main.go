// SPDX-License-Identifier: MPL-2.0

// Command hsdev runs the GHCi/ghcid development loop for full-stack
// Haskell web applications.
package main

import "github.com/hsdev/hsdev/cmd/hsdev"

func main() {
	cmd.Execute()
}
