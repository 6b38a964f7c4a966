// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

const (
	// SandboxNone means hsdev runs directly on the host.
	SandboxNone SandboxType = ""
	// SandboxFlatpak means hsdev runs inside a Flatpak (e.g. a Flatpak editor's terminal).
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap means hsdev runs inside a Snap.
	SandboxSnap SandboxType = "snap"
)

// SandboxType identifies the application sandbox hsdev runs in, if any.
type SandboxType string

// detectOnce caches detection for the process lifetime.
// detectSandboxFrom must not panic: sync.OnceValue re-panics on every call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// DetectSandbox returns the sandbox the current process runs in.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostCommand rewrites argv so that it executes on the host when hsdev runs
// inside a sandbox: nix-shell and ghcid live outside the sandbox.
func HostCommand(st SandboxType, argv []string) []string {
	var prefix []string
	switch st {
	case SandboxFlatpak:
		prefix = []string{"flatpak-spawn", "--host"}
	case SandboxSnap:
		prefix = []string{"snap", "run", "--shell"}
	default:
		return argv
	}
	out := make([]string, 0, len(prefix)+len(argv))
	out = append(out, prefix...)
	return append(out, argv...)
}

// detectSandboxFrom performs detection with injected lookups so tests do not
// depend on process-wide state.
func detectSandboxFrom(getenv func(string) string, stat func(string) error) SandboxType {
	// /.flatpak-info exists in every Flatpak sandbox.
	if err := stat("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if getenv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
