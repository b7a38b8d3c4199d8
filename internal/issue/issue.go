// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	// PackageNotFoundId is a datapack path that does not exist.
	PackageNotFoundId Id = iota + 1
	// GraphvizNotFoundId is a missing layout engine.
	GraphvizNotFoundId
	// ConfigLoadFailedId is an unreadable or invalid config file.
	ConfigLoadFailedId
	// OutputFailedId is an output that could not be written.
	OutputFailedId
	// EmptyGraphId is a datapack that produced no functions.
	EmptyGraphId
	// GraphNotFoundId is a stored graph or function that does not exist.
	GraphNotFoundId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is glamour-rendered guidance.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is one catalog entry.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

var (
	render = glamour.Render

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Datapack not found!

One of the paths you passed is not a directory.

## Things you can try:
- Pass the datapack root, the folder that contains ` + "`pack.mcmeta`" + ` and ` + "`data/`" + `:
~~~
$ packmap map ~/.minecraft/saves/World/datapacks/mypack
~~~
- Zipped datapacks must be extracted first.
- Quote paths that contain spaces.`,
		extLinks: []HttpLink{"https://minecraft.wiki/w/Data_pack"},
	}

	graphvizNotFoundIssue = &Issue{
		id: GraphvizNotFoundId,
		mdMsg: `
# Graphviz is not installed!

Image formats (jpeg, png, svg) are laid out by Graphviz. The DOT file was
still written, so you can render it later.

## Things you can try:
- Install Graphviz:
~~~
$ sudo apt install graphviz    # Debian/Ubuntu
$ brew install graphviz        # macOS
$ winget install graphviz      # Windows
~~~
- Pick another engine with ` + "`--engine dot`" + `.
- Skip rendering with ` + "`--format dot,json`" + `.`,
		extLinks: []HttpLink{"https://graphviz.org/download/"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The config file is not valid CUE or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ packmap config show
~~~
- Regenerate a default file:
~~~
$ packmap config init --force
~~~
- Fields are ` + "`mode`, `label`, `output_dir`, `formats`, `engine`, `style`, `watch` and `ui`" + `.`,
	}

	outputFailedIssue = &Issue{
		id: OutputFailedId,
		mdMsg: `
# Failed to write output!

## Things you can try:
- Check that the output directory is writable, or pass ` + "`--output-dir`" + `.
- Close programs holding the SQLite database open.`,
	}

	emptyGraphIssue = &Issue{
		id: EmptyGraphId,
		mdMsg: `
# No functions found!

The datapack has no ` + "`.mcfunction`" + ` files under
` + "`data/<namespace>/functions/`" + ` (or ` + "`function/`" + ` since 1.21).

## Things you can try:
- Make sure the path points at the datapack root and not at ` + "`data/`" + `.
- Run with ` + "`--verbose`" + ` to list the skipped files.`,
	}

	graphNotFoundIssue = &Issue{
		id: GraphNotFoundId,
		mdMsg: `
# Graph not found!

The SQLite database has no graph or function by that name.

## Things you can try:
- Write the database first:
~~~
$ packmap map ./mypack --format sqlite
~~~
- List the stored graphs:
~~~
$ packmap show graphs/packmap.db
~~~
- Function ids are namespaced, e.g. ` + "`demo:util/setup`" + `; tags start with ` + "`#`" + `.`,
	}

	issues = map[Id]*Issue{
		packageNotFoundIssue.Id():  packageNotFoundIssue,
		graphvizNotFoundIssue.Id(): graphvizNotFoundIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
		outputFailedIssue.Id():     outputFailedIssue,
		emptyGraphIssue.Id():       emptyGraphIssue,
		graphNotFoundIssue.Id():    graphNotFoundIssue,
	}
)

// Id returns the catalog id.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw markdown.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Render renders the guidance with the given glamour style ("dark", "light",
// "notty" or a JSON style path), appending links as a list.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue { return issues[id] }
