// SPDX-License-Identifier: MPL-2.0

package hpack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the file name of an hpack manifest.
const FileName = "package.yaml"

// decoder accumulates warnings while walking the YAML tree.
type decoder struct {
	path     string
	warnings []string
}

// Decode reads and decodes the package.yaml at path. Unknown fields and
// unsupported features are reported as warnings. Any other problem is
// returned as a *DecodeError.
func Decode(path string) (*Package, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &DecodeError{Path: path, Message: err.Error()}
	}
	return DecodeBytes(data, path)
}

// DecodeBytes decodes package.yaml contents. path is used for error
// messages and to default the package name to the containing directory.
func DecodeBytes(data []byte, path string) (*Package, []string, error) {
	d := &decoder{path: path}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, d.fail("%v", err)
	}
	pkg := &Package{Name: filepath.Base(filepath.Dir(path)), Version: "0.0.0"}
	if root.Kind == 0 {
		return pkg, nil, nil
	}
	if len(root.Content) != 1 || root.Content[0].Kind != yaml.MappingNode {
		return nil, nil, d.fail("top level must be a mapping")
	}

	if err := d.decodePackage(root.Content[0], pkg); err != nil {
		return nil, d.warnings, err
	}
	return pkg, d.warnings, nil
}

func (d *decoder) fail(format string, args ...any) error {
	return &DecodeError{Path: d.path, Message: fmt.Sprintf(format, args...)}
}

func (d *decoder) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

func (d *decoder) decodePackage(m *yaml.Node, pkg *Package) error {
	return d.decodeFields(m, "", &pkg.Common, func(key string, v *yaml.Node) (bool, error) {
		var err error
		switch key {
		case "name":
			if pkg.Name, err = d.scalar(v, key); err == nil && pkg.Name == "" {
				err = d.fail("name must not be empty")
			}
		case "version":
			pkg.Version, err = d.scalar(v, key)
		case "synopsis":
			pkg.Synopsis, err = d.scalar(v, key)
		case "license":
			pkg.License, err = d.scalar(v, key)
		case "defaults":
			d.warnf("defaults are not supported and were ignored")
		case "library":
			pkg.Library = &Component{}
			err = d.decodeComponent(v, "library", pkg.Library)
		case "executable":
			c := Component{Name: pkg.Name}
			err = d.decodeComponent(v, "executable", &c)
			pkg.Executables = append(pkg.Executables, c)
		case "executables":
			pkg.Executables, err = d.decodeComponents(v, key, pkg.Executables)
		case "tests":
			pkg.Tests, err = d.decodeComponents(v, key, pkg.Tests)
		case "description", "category", "author", "maintainer", "copyright",
			"homepage", "github", "git", "bug-reports", "license-file",
			"extra-source-files", "extra-doc-files", "data-files",
			"tested-with", "build-type", "stability", "flags", "benchmarks",
			"internal-libraries", "spec-version", "verbatim", "custom-setup":
			// Valid hpack fields that do not affect a GHCi session.
		default:
			return false, nil
		}
		return true, err
	})
}

func (d *decoder) decodeComponents(v *yaml.Node, key string, dst []Component) ([]Component, error) {
	if v.Kind != yaml.MappingNode {
		return dst, d.fail("%s must be a mapping of names to components", key)
	}
	for i := 0; i+1 < len(v.Content); i += 2 {
		c := Component{Name: v.Content[i].Value}
		if err := d.decodeComponent(v.Content[i+1], key+"."+c.Name, &c); err != nil {
			return dst, err
		}
		dst = append(dst, c)
	}
	return dst, nil
}

func (d *decoder) decodeComponent(v *yaml.Node, where string, c *Component) error {
	if v.Kind == yaml.ScalarNode && v.Tag == "!!null" {
		return nil
	}
	return d.decodeFields(v, where, &c.BuildInfo, func(key string, v *yaml.Node) (bool, error) {
		switch key {
		case "main":
			var err error
			c.Main, err = d.scalar(v, where+".main")
			return true, err
		case "exposed-modules", "other-modules", "generated-other-modules",
			"generated-exposed-modules", "reexported-modules", "visibility",
			"source-dirs-root", "verbatim", "build-tools", "build-tool-depends",
			"c-sources", "include-dirs", "extra-libraries", "ld-options",
			"ghc-prof-options", "ghc-shared-options", "when-dev":
			return true, nil
		}
		return false, nil
	})
}

// decodeFields walks mapping m. Build-info keys are decoded into bi; other
// keys go to extra, which reports whether it recognised the key. Keys
// neither understands produce a warning.
func (d *decoder) decodeFields(m *yaml.Node, where string, bi *BuildInfo, extra func(string, *yaml.Node) (bool, error)) error {
	if m.Kind != yaml.MappingNode {
		return d.fail("%s must be a mapping", orTop(where))
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, v := m.Content[i].Value, m.Content[i+1]
		handled, err := d.buildInfoField(key, v, where, bi)
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		if extra != nil {
			if handled, err = extra(key, v); err != nil {
				return err
			}
		}
		if !handled {
			d.warnf("ignoring unknown field %q in %s", key, orTop(where))
		}
	}
	return nil
}

func (d *decoder) buildInfoField(key string, v *yaml.Node, where string, bi *BuildInfo) (bool, error) {
	var (
		list []string
		err  error
	)
	switch key {
	case "source-dirs":
		list, err = d.stringList(v, key)
		bi.SourceDirs = append(bi.SourceDirs, list...)
	case "default-extensions":
		list, err = d.stringList(v, key)
		bi.DefaultExtensions = append(bi.DefaultExtensions, list...)
	case "language":
		bi.Language, err = d.scalar(v, key)
	case "ghc-options":
		list, err = d.optionList(v, key)
		bi.GHCOptions = append(bi.GHCOptions, list...)
	case "ghcjs-options":
		list, err = d.optionList(v, key)
		bi.GHCJSOptions = append(bi.GHCJSOptions, list...)
	case "cpp-options":
		list, err = d.optionList(v, key)
		bi.CPPOptions = append(bi.CPPOptions, list...)
	case "dependencies":
		list, err = d.dependencies(v)
		bi.Dependencies = append(bi.Dependencies, list...)
	case "when":
		var conds []Conditional
		conds, err = d.when(v, where)
		bi.When = append(bi.When, conds...)
	default:
		return false, nil
	}
	return true, err
}

func (d *decoder) when(v *yaml.Node, where string) ([]Conditional, error) {
	where = strings.TrimPrefix(where+".when", ".")
	switch v.Kind {
	case yaml.MappingNode:
		c, err := d.conditional(v, where)
		if err != nil {
			return nil, err
		}
		return []Conditional{c}, nil
	case yaml.SequenceNode:
		out := make([]Conditional, 0, len(v.Content))
		for _, item := range v.Content {
			c, err := d.conditional(item, where)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	default:
		return nil, d.fail("%s must be a mapping or a list of mappings", where)
	}
}

func (d *decoder) conditional(m *yaml.Node, where string) (Conditional, error) {
	var c Conditional
	if m.Kind != yaml.MappingNode {
		return c, d.fail("%s entries must be mappings", where)
	}

	var thenNode, elseNode *yaml.Node
	inline := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, v := m.Content[i].Value, m.Content[i+1]
		switch key {
		case "condition":
			if v.Kind != yaml.ScalarNode || strings.TrimSpace(v.Value) == "" {
				return c, d.fail("%s.condition must be a non-empty string", where)
			}
			c.Condition = strings.TrimSpace(v.Value)
		case "then":
			thenNode = v
		case "else":
			elseNode = v
		default:
			inline.Content = append(inline.Content, m.Content[i], v)
		}
	}
	if c.Condition == "" {
		return c, d.fail("%s entry is missing a condition", where)
	}
	if thenNode != nil && len(inline.Content) > 0 {
		return c, d.fail("%s entry mixes then/else with inline fields", where)
	}
	if elseNode != nil && thenNode == nil {
		return c, d.fail("%s entry has else without then", where)
	}

	if thenNode == nil {
		thenNode = inline
	}
	if err := d.decodeFields(thenNode, where, &c.Then, nil); err != nil {
		return c, err
	}
	if elseNode != nil {
		c.Else = &BuildInfo{}
		if err := d.decodeFields(elseNode, where+".else", c.Else, nil); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (d *decoder) scalar(v *yaml.Node, key string) (string, error) {
	if v.Kind != yaml.ScalarNode {
		return "", d.fail("%s must be a string", key)
	}
	return strings.TrimSpace(v.Value), nil
}

// stringList accepts a scalar or a list of scalars.
func (d *decoder) stringList(v *yaml.Node, key string) ([]string, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		if v.Tag == "!!null" {
			return nil, nil
		}
		return []string{v.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, d.fail("%s entries must be strings", key)
			}
			out = append(out, item.Value)
		}
		return out, nil
	default:
		return nil, d.fail("%s must be a string or a list of strings", key)
	}
}

// optionList is stringList where a scalar holds several space-separated
// options.
func (d *decoder) optionList(v *yaml.Node, key string) ([]string, error) {
	items, err := d.stringList(v, key)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, item := range items {
		out = append(out, strings.Fields(item)...)
	}
	return out, nil
}

// dependencies accepts a list ("base >= 4"), a scalar, or a mapping from
// package name to version constraint.
func (d *decoder) dependencies(v *yaml.Node) ([]string, error) {
	if v.Kind != yaml.MappingNode {
		return d.stringList(v, "dependencies")
	}
	deps := make(map[string]string, len(v.Content)/2)
	for i := 0; i+1 < len(v.Content); i += 2 {
		name, constraint := v.Content[i].Value, v.Content[i+1]
		if constraint.Kind != yaml.ScalarNode {
			return nil, d.fail("dependencies.%s must be a version constraint", name)
		}
		if constraint.Tag == "!!null" {
			deps[name] = ""
			continue
		}
		deps[name] = strings.TrimSpace(constraint.Value)
	}
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, strings.TrimSpace(name+" "+deps[name]))
	}
	return out, nil
}

func orTop(where string) string {
	if where == "" {
		return "top level"
	}
	return where
}
