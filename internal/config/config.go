// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/hsdev/hsdev/internal/issue"
	"github.com/hsdev/hsdev/internal/project"
	"github.com/hsdev/hsdev/pkg/platform"
)

const (
	// AppName names the per-user config directory.
	AppName = "hsdev"
	// ConfigFileName is the user config file inside Dir().
	ConfigFileName = "config.cue"
	// ProjectFileName is the override file inside the project marker dir.
	ProjectFileName = "project.toml"

	// maxFileSize bounds config files read into memory.
	maxFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

type (
	// LoadOptions are the explicit inputs of Load.
	LoadOptions struct {
		// ConfigFilePath forces a specific user config file. A missing file
		// is an error.
		ConfigFilePath string
		// ConfigDirPath replaces Dir() when set.
		ConfigDirPath string
		// ProjectRoot enables .hsdev/project.toml overrides when set.
		ProjectRoot string
	}

	// Sources records which files contributed to a loaded Config. Empty
	// fields mean the layer was absent.
	Sources struct {
		User    string
		Project string
	}
)

// Dir returns the hsdev user config directory: %APPDATA% on Windows,
// ~/Library/Application Support on macOS, $XDG_CONFIG_HOME (or ~/.config)
// elsewhere.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case platform.Windows:
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, AppName), nil
}

// ProjectFile returns the override file path for a project root.
func ProjectFile(root string) string {
	return filepath.Join(root, project.MarkerDir, ProjectFileName)
}

// Load layers defaults, the user config and project overrides.
func Load(ctx context.Context, opts LoadOptions) (*Config, Sources, error) {
	var src Sources
	if err := ctx.Err(); err != nil {
		return nil, src, fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	userPath, explicit, err := userConfigPath(opts)
	if err != nil {
		return nil, src, err
	}
	switch {
	case fileExists(userPath):
		if err := mergeCUE(v, userPath); err != nil {
			return nil, src, loadError(userPath, err)
		}
		src.User = userPath
	case explicit:
		return nil, src, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(userPath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'hsdev config show' to see the default configuration").
			Wrap(fs.ErrNotExist).
			BuildError()
	}

	if opts.ProjectRoot != "" {
		projectPath := ProjectFile(opts.ProjectRoot)
		if fileExists(projectPath) {
			if err := mergeTOML(v, projectPath); err != nil {
				return nil, src, loadError(projectPath, err)
			}
			src.Project = projectPath
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, src, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, src, issue.WrapWithOperation(err, "validate configuration")
	}
	return &cfg, src, nil
}

func userConfigPath(opts LoadOptions) (path string, explicit bool, err error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, true, nil
	}
	dir := opts.ConfigDirPath
	if dir == "" {
		if dir, err = Dir(); err != nil {
			return "", false, err
		}
	}
	return filepath.Join(dir, ConfigFileName), false, nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check the reported field against the configuration schema").
		WithSuggestion("Run 'hsdev config show' to print the effective configuration").
		Wrap(err).
		BuildError()
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("shell.mode", string(d.Shell.Mode))
	v.SetDefault("shell.attr", d.Shell.Attr)
	v.SetDefault("tools.ghci", d.Tools.GHCi)
	v.SetDefault("tools.ghcid", d.Tools.GHCid)
	v.SetDefault("tools.nix_shell", d.Tools.NixShell)
	v.SetDefault("run.test", d.Run.Test)
	v.SetDefault("run.output_file", d.Run.OutputFile)
	v.SetDefault("run.reload", d.Run.Reload)
	v.SetDefault("run.watch_manifests", d.Run.WatchManifests)
	v.SetDefault("discovery.ignore", d.Discovery.Ignore)
	v.SetDefault("discovery.vendored_dir", d.Discovery.VendoredDir)
	v.SetDefault("resources.dir", d.Resources.Dir)
	v.SetDefault("resources.env", d.Resources.Env)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
	v.SetDefault("ui.verbose", d.UI.Verbose)
}

func readLimited(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("file size %d bytes exceeds maximum %d bytes", len(data), maxFileSize)
	}
	return data, nil
}

// mergeCUE compiles a CUE user config, validates it against #Config and
// merges the result into v.
func mergeCUE(v *viper.Viper, path string) error {
	data, err := readLimited(path)
	if err != nil {
		return err
	}
	ctx := cuecontext.New()
	user := ctx.CompileBytes(data, cue.Filename(path))
	if user.Err() != nil {
		return formatCUEError(user.Err(), path)
	}
	return validateAndMerge(ctx, v, user, path)
}

// mergeTOML decodes project overrides and validates them with the same
// schema as the user config.
func mergeTOML(v *viper.Viper, path string) error {
	data, err := readLimited(path)
	if err != nil {
		return err
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%s:%d:%d: %s", path, row, col, derr.Error())
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	ctx := cuecontext.New()
	value := ctx.Encode(raw)
	if value.Err() != nil {
		return formatCUEError(value.Err(), path)
	}
	return validateAndMerge(ctx, v, value, path)
}

func validateAndMerge(ctx *cue.Context, v *viper.Viper, value cue.Value, path string) error {
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}
	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// formatCUEError prefixes each CUE error with the file and the field path in
// JSON notation, e.g. "config.cue: run.reload[0]: conflicting values".
func formatCUEError(err error, path string) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", path, err)
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		field := jsonPath(cueerrors.Path(e))
		msg := e.Error()
		if field != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, field), ":"))
			msg = field + ": " + msg
		}
		lines = append(lines, msg)
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", path, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", path, strings.Join(lines, "\n  "))
}

func jsonPath(parts []string) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the defaults as CUE into dir unless a config
// file already exists. It returns the file path.
func CreateDefaultConfig(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	path := filepath.Join(dir, ConfigFileName)
	if fileExists(path) {
		return path, nil
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// GenerateCUE renders cfg as a CUE document that validates against the
// schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder
	sb.WriteString("// hsdev configuration\n\n")

	fmt.Fprintf(&sb, "shell: {\n\tmode: %q\n\tattr: %q\n}\n", cfg.Shell.Mode, cfg.Shell.Attr)

	sb.WriteString("\ntools: {\n")
	for _, kv := range [][2]string{{"ghci", cfg.Tools.GHCi}, {"ghcid", cfg.Tools.GHCid}, {"nix_shell", cfg.Tools.NixShell}} {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "\t%s: %q\n", kv[0], kv[1])
		}
	}
	sb.WriteString("}\n")

	sb.WriteString("\nrun: {\n")
	fmt.Fprintf(&sb, "\ttest: %q\n", cfg.Run.Test)
	fmt.Fprintf(&sb, "\toutput_file: %q\n", cfg.Run.OutputFile)
	fmt.Fprintf(&sb, "\treload: %s\n", cueList(cfg.Run.Reload))
	fmt.Fprintf(&sb, "\twatch_manifests: %v\n", cfg.Run.WatchManifests)
	sb.WriteString("}\n")

	sb.WriteString("\ndiscovery: {\n")
	fmt.Fprintf(&sb, "\tignore: %s\n", cueList(cfg.Discovery.Ignore))
	fmt.Fprintf(&sb, "\tvendored_dir: %q\n", cfg.Discovery.VendoredDir)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nresources: {\n\tdir: %q\n\tenv: %q\n}\n", cfg.Resources.Dir, cfg.Resources.Env)
	fmt.Fprintf(&sb, "\nui: {\n\tcolor_scheme: %q\n\tverbose: %v\n}\n", cfg.UI.ColorScheme, cfg.UI.Verbose)
	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = fmt.Sprintf("%q", it)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
