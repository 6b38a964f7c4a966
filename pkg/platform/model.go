// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"runtime"

	"github.com/charmbracelet/log"
)

// DefaultCompilerFlavor is the compiler impl(...) conditions are matched against.
const DefaultCompilerFlavor = "ghc"

type (
	// Model is the fixed platform that manifest conditionals are evaluated
	// against. It satisfies cabal.Env.
	Model struct {
		os     string
		arch   string
		flavor string
	}
)

// goosNames maps GOOS values to the OS names cabal uses.
var goosNames = map[string]string{
	Linux:       "linux",
	Darwin:      "osx",
	Windows:     "windows",
	"freebsd":   "freebsd",
	"openbsd":   "openbsd",
	"netbsd":    "netbsd",
	"dragonfly": "dragonfly",
	"solaris":   "solaris",
	"illumos":   "solaris",
	"aix":       "aix",
	"android":   "android",
	"ios":       "ios",
	"hurd":      "hurd",
	"js":        "ghcjs",
	"wasip1":    "wasi",
}

// goarchNames maps GOARCH values to the architecture names cabal uses.
var goarchNames = map[string]string{
	"amd64":    "x86_64",
	"386":      "i386",
	"arm64":    "aarch64",
	"arm":      "arm",
	"ppc64":    "ppc64",
	"ppc64le":  "ppc64le",
	"s390x":    "s390x",
	"mips":     "mips",
	"mipsle":   "mips",
	"mips64":   "mips",
	"mips64le": "mips",
	"riscv64":  "riscv64",
	"loong64":  "loongarch64",
	"wasm":     "wasm32",
}

// NewModel builds a Model from cabal-vocabulary names.
func NewModel(os, arch, flavor string) Model {
	return Model{os: os, arch: arch, flavor: flavor}
}

// FromGo translates GOOS/GOARCH into a Model. The boolean results report
// whether each value was recognised; unrecognised values are passed through
// unchanged so that an exact os(...) or arch(...) spelling can still match.
func FromGo(goos, goarch string) (m Model, osKnown, archKnown bool) {
	osName, osKnown := goosNames[goos]
	if !osKnown {
		osName = goos
	}
	archName, archKnown := goarchNames[goarch]
	if !archKnown {
		archName = goarch
	}
	return Model{os: osName, arch: archName, flavor: DefaultCompilerFlavor}, osKnown, archKnown
}

// Host detects the current platform. Unrecognised operating systems or
// architectures are reported as warnings through logger.
func Host(logger *log.Logger) Model {
	m, osKnown, archKnown := FromGo(runtime.GOOS, runtime.GOARCH)
	if !osKnown && logger != nil {
		logger.Warn("unrecognised operating system, os(...) conditionals match it verbatim", "goos", runtime.GOOS)
	}
	if !archKnown && logger != nil {
		logger.Warn("unrecognised architecture, arch(...) conditionals match it verbatim", "goarch", runtime.GOARCH)
	}
	return m
}

// OS returns the cabal OS name, e.g. "linux" or "osx".
func (m Model) OS() string { return m.os }

// Arch returns the cabal architecture name, e.g. "x86_64".
func (m Model) Arch() string { return m.arch }

// CompilerFlavor returns the compiler flavor, normally "ghc".
func (m Model) CompilerFlavor() string { return m.flavor }

// String renders the model for log output.
func (m Model) String() string {
	return m.os + "/" + m.arch + "/" + m.flavor
}
