// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hsdev/hsdev/internal/discovery"
	"github.com/hsdev/hsdev/internal/driver"
	"github.com/hsdev/hsdev/internal/project"
)

const (
	// ColorSchemeAuto detects the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark palette.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light palette.
	ColorSchemeLight ColorScheme = "light"

	// DefaultTestCommand is the ghcid --test hook. {port} is substituted.
	DefaultTestCommand = "Hsdev.Run.run {port} Backend.backend Frontend.frontend"
	// PortPlaceholder is replaced in the test command.
	PortPlaceholder = "{port}"
)

var (
	// ErrInvalidColorScheme is returned for an unknown color scheme.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig wraps every field error of a Config.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the palette for styled output.
	ColorScheme string

	// InvalidColorSchemeError reports the rejected value.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the effective settings.
	Config struct {
		Shell     ShellConfig     `json:"shell" mapstructure:"shell"`
		Tools     ToolsConfig     `json:"tools" mapstructure:"tools"`
		Run       RunConfig       `json:"run" mapstructure:"run"`
		Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
		Resources ResourcesConfig `json:"resources" mapstructure:"resources"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// ShellConfig selects how tools are started.
	ShellConfig struct {
		Mode project.ShellMode `json:"mode" mapstructure:"mode"`
		// Attr is the nix attribute suffix used for ghci and ghcid.
		Attr string `json:"attr" mapstructure:"attr"`
	}

	// ToolsConfig overrides tool lookup. Empty values mean PATH lookup.
	ToolsConfig struct {
		GHCi     string `json:"ghci" mapstructure:"ghci"`
		GHCid    string `json:"ghcid" mapstructure:"ghcid"`
		NixShell string `json:"nix_shell" mapstructure:"nix_shell"`
	}

	// RunConfig configures the ghcid loop.
	RunConfig struct {
		Test           string   `json:"test" mapstructure:"test"`
		OutputFile     string   `json:"output_file" mapstructure:"output_file"`
		Reload         []string `json:"reload" mapstructure:"reload"`
		WatchManifests bool     `json:"watch_manifests" mapstructure:"watch_manifests"`
	}

	// DiscoveryConfig tunes manifest discovery.
	DiscoveryConfig struct {
		Ignore      []string `json:"ignore" mapstructure:"ignore"`
		VendoredDir string   `json:"vendored_dir" mapstructure:"vendored_dir"`
	}

	// ResourcesConfig locates bundled per-environment configs.
	ResourcesConfig struct {
		Dir string `json:"dir" mapstructure:"dir"`
		Env string `json:"env" mapstructure:"env"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Shell: ShellConfig{Mode: project.ShellNix, Attr: driver.DefaultShellAttr},
		Run: RunConfig{
			Test:           DefaultTestCommand,
			OutputFile:     driver.DefaultOutputFile,
			Reload:         []string{},
			WatchManifests: true,
		},
		Discovery: DiscoveryConfig{
			Ignore:      slices.Clone(discovery.DefaultIgnore),
			VendoredDir: discovery.VendoredImplDir,
		},
		Resources: ResourcesConfig{Dir: "config", Env: "dev"},
		UI:        UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// TestCommand returns the test hook with the port substituted.
func (c RunConfig) TestCommand(port fmt.Stringer) string {
	return strings.ReplaceAll(c.Test, PortPlaceholder, port.String())
}

// Validate checks the scheme is one of the known values.
func (s ColorScheme) Validate() error {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: s}
	}
}

// GlamourStyle maps the scheme to a glamour standard style name.
func (s ColorScheme) GlamourStyle() string {
	if s == ColorSchemeDark || s == ColorSchemeLight {
		return string(s)
	}
	return "auto"
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks the constraints the schema cannot express on values that
// bypassed it, such as defaults mutated in code.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Shell.Mode.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Run.OutputFile) == "" {
		errs = append(errs, errors.New("run.output_file must not be empty"))
	}
	if strings.TrimSpace(c.Discovery.VendoredDir) == "" {
		errs = append(errs, errors.New("discovery.vendored_dir must not be empty"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
