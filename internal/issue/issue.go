// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Issue identifiers. Values are stable and start at 1.
const (
	ProjectRootNotFoundId Id = iota + 1
	ToolNotFoundId
	NoValidPackagesId
	ManifestNotFoundId
	ManifestAmbiguousId
	ConfigLoadFailedId
	ProcessFailedId
)

type (
	// Id identifies an issue page.
	Id int

	// MarkdownMsg is the Markdown body of an issue page.
	MarkdownMsg string

	// HttpLink is a documentation link appended to a page.
	HttpLink string

	// Issue is a Markdown help page for one class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Render renders the page with glamour using stylePath ("dark", "light",
// "notty", "auto" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	projectRootNotFoundIssue = &Issue{
		id: ProjectRootNotFoundId,
		mdMsg: `
# Not inside an hsdev project

hsdev looks for a ` + "`.hsdev/`" + ` directory in the current directory and
every parent directory. None was found.

## Things you can try
- Change into the project checkout:
~~~
$ cd path/to/my-app
$ hsdev run
~~~
- Initialise the marker directory in the project root:
~~~
$ mkdir .hsdev
~~~`,
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# A required tool is missing

hsdev needs ` + "`nix-shell`" + ` in nix mode, or ` + "`ghci`" + ` and ` + "`ghcid`" + `
on your PATH in host mode.

## Things you can try
- Install Nix, or switch the project to host mode in ` + "`.hsdev/project.toml`" + `:
~~~toml
[shell]
mode = "host"
~~~
- Point hsdev at a specific binary in your user config:
~~~cue
tools: ghcid: "/opt/ghc/bin/ghcid"
~~~`,
		extLinks: []HttpLink{"https://github.com/ndmitchell/ghcid"},
	}

	noValidPackagesIssue = &Issue{
		id: NoValidPackagesId,
		mdMsg: `
# No package could be loaded

Every package directory failed to parse, so there is nothing to load into
GHCi. The log above lists the failure for each directory.

## Things you can try
- Fix the reported manifest errors and run hsdev again.
- Check that each package declares a ` + "`library`" + ` section.
- Run ` + "`hsdev packages`" + ` to see which manifests were found.`,
		extLinks: []HttpLink{"https://cabal.readthedocs.io/en/stable/cabal-package-description-file.html"},
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No package manifest found

The directory contains neither a ` + "`*.cabal`" + ` file nor a ` + "`package.yaml`" + `.

## Things you can try
- Add a manifest, or remove the directory from the project.`,
	}

	manifestAmbiguousIssue = &Issue{
		id: ManifestAmbiguousId,
		mdMsg: `
# Ambiguous package manifest

The directory holds several ` + "`*.cabal`" + ` files and no ` + "`package.yaml`" + `,
so hsdev cannot tell which one describes the package.

## Things you can try
- Delete the stale ` + "`.cabal`" + ` files, keeping one per package.
- Or add a ` + "`package.yaml`" + `, which always takes precedence.`,
		extLinks: []HttpLink{"https://github.com/sol/hpack"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

Either the user config (CUE) or the project overrides in
` + "`.hsdev/project.toml`" + ` are invalid.

## Things you can try
- Print the effective configuration and its source:
~~~
$ hsdev config show
$ hsdev config path
~~~
- Check the reported field against the schema in the documentation.`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	processFailedIssue = &Issue{
		id: ProcessFailedId,
		mdMsg: `
# GHCi or ghcid exited with an error

The child process stopped with a non-zero exit status.

## Things you can try
- Read the compiler output in ` + "`ghcid-output.txt`" + `.
- Re-run with ` + "`--verbose`" + ` to see the exact command line.`,
	}

	issues = map[Id]*Issue{
		projectRootNotFoundIssue.Id(): projectRootNotFoundIssue,
		toolNotFoundIssue.Id():        toolNotFoundIssue,
		noValidPackagesIssue.Id():     noValidPackagesIssue,
		manifestNotFoundIssue.Id():    manifestNotFoundIssue,
		manifestAmbiguousIssue.Id():   manifestAmbiguousIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		processFailedIssue.Id():       processFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
