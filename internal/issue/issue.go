// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ModsDirNotFoundId Id = iota + 1
	ManifestParseErrorId
	DuplicateModId
	RawModRejectedId
	MissingDependencyId
	VersionMismatchId
	DependencyCycleId
	CacheCorruptedId
	ModNotLoadedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	modsDirNotFoundIssue = &Issue{
		id: ModsDirNotFoundId,
		mdMsg: `
# Mods directory not found!

We could not read the mods directory, so there is nothing to resolve.

## Things you can try:
- Create the directory and drop your mod packages into it:
~~~
$ mkdir -p mods
~~~

- Or point modkit at the right place:
~~~
$ modkit resolve --mods-dir /path/to/mods
~~~

- Or set it permanently in your config file:
~~~cue
mods_dir: "/path/to/mods"
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse a mod manifest!

A mod package contains a data.json that is missing or invalid.

## Common issues:
- No data.json entry at the root of the archive
- Invalid JSON syntax
- Missing required fields (modid, version)
- A version that is not semantic (expected e.g. "1.2.0")

## Things you can try:
- Check the error message above for the specific field
- Unzip the package and inspect its data.json by hand
- Ask the mod author for a fixed package

## Example of a valid data.json:
~~~json
{
  "modid": "examplemod",
  "name": "Example Mod",
  "version": "1.0.0",
  "objects": [
    { "type": "sml_mod", "path": "examplemod.dll" },
    { "type": "pak", "path": "examplemod_p.pak" }
  ],
  "dependencies": {
    "othermod": "^1.2.0"
  }
}
~~~`,
	}

	duplicateModIssue = &Issue{
		id: DuplicateModId,
		mdMsg: `
# Duplicate mod id!

Two packages in the mods directory declare the same mod id. Only the first
one found is kept; the run is aborted so you can pick which one to keep.

## Things you can try:
- Remove the stale copy (the diagnostic names both file paths)
- If the two packages are different versions of the same mod, keep the
  newer one`,
	}

	rawModRejectedIssue = &Issue{
		id: RawModRejectedId,
		mdMsg: `
# Raw mod files are not allowed here!

A bare .dll or .pak file was found in the mods directory, but raw mods are
only accepted in development mode.

## Things you can try:
- Package the files into a proper mod archive with a data.json
- Or enable development mode:
~~~
$ modkit resolve --dev
~~~

Note that raw mods carry no manifest: dependencies and versioning will not
work for them, and they are always loaded last.`,
	}

	missingDependencyIssue = &Issue{
		id: MissingDependencyId,
		mdMsg: `
# Missing dependency!

A mod requires another mod that is not installed.

## Things you can try:
- Download the dependency named in the diagnostic and place it in the
  mods directory
- Remove the mod that requires it`,
	}

	versionMismatchIssue = &Issue{
		id: VersionMismatchId,
		mdMsg: `
# Dependency version mismatch!

A dependency is installed, but its version does not satisfy the declared
constraint.

## Things you can try:
- Update the dependency to a version inside the constraint range
- Update the dependent mod; newer releases often widen their constraints

## How constraints read:
~~~
^1.2.0   >=1.2.0 and <2.0.0
~1.2.0   >=1.2.0 and <1.3.0
>=1.2.0  1.2.0 or anything newer
~~~`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

The installed mods depend on each other in a circle, so no load order
exists.

## Example of a cycle:
~~~json
// a/data.json
{ "modid": "a", "dependencies": { "b": "^1.0.0" } }
// b/data.json
{ "modid": "b", "dependencies": { "a": "^1.0.0" } }
~~~

## Things you can try:
- Remove one of the mods named in the diagnostic
- Report the cycle to the mod authors; one of the dependencies is
  probably meant to be optional`,
	}

	cacheCorruptedIssue = &Issue{
		id: CacheCorruptedId,
		mdMsg: `
# Extraction cache corrupted!

A cached payload no longer matches its content digest. Corrupted entries
are rebuilt automatically on the next resolution run, so this is usually
transient.

## Things you can try:
- Re-run the resolution; the bad entries will be extracted again
- If it keeps happening, clear the cache directory:
~~~
$ modkit cache verify --prune
~~~`,
	}

	modNotLoadedIssue = &Issue{
		id: ModNotLoadedId,
		mdMsg: `
# Mod not loaded!

You asked for a mod that is not part of the loaded set.

## Things you can try:
- List what actually got loaded:
~~~
$ modkit list
~~~

- Check for typos in the mod id (ids are case sensitive)
- Check the resolution diagnostics; the mod may have been rejected`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the modkit configuration file.

## Configuration file locations:
- Linux: ~/.config/modkit/config.cue
- macOS: ~/Library/Application Support/modkit/config.cue
- Windows: %APPDATA%\modkit\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/modkit/config.cue
~~~

## Example configuration:
~~~cue
mods_dir:    "./mods"
cache_dir:   "./cache"
configs_dir: "./configs"
development: false
log_level:   "info"
~~~`,
	}

	issues = map[Id]*Issue{
		modsDirNotFoundIssue.Id():    modsDirNotFoundIssue,
		manifestParseErrorIssue.Id(): manifestParseErrorIssue,
		duplicateModIssue.Id():       duplicateModIssue,
		rawModRejectedIssue.Id():     rawModRejectedIssue,
		missingDependencyIssue.Id():  missingDependencyIssue,
		versionMismatchIssue.Id():    versionMismatchIssue,
		dependencyCycleIssue.Id():    dependencyCycleIssue,
		cacheCorruptedIssue.Id():     cacheCorruptedIssue,
		modNotLoadedIssue.Id():       modNotLoadedIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
