// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
)

type Id int

const (
	RootDirMissingId Id = iota + 1
	ConfigLoadFailedId
	DescriptorParseErrorId
	IdentityCorruptId
	ManifestWriteFailedId
	ScriptsNotViableId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation for the failing input
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	rootDirMissingIssue = &Issue{
		id: RootDirMissingId,
		mdMsg: `
# ROOT_DIR is not set!

The compiler runs as a pipeline filter and expects the pipeline to export
the project root in the ROOT_DIR environment variable.

## Things you can try:
- Run the filter through your pipeline (regolith run)
- Or pass the project root explicitly:
~~~
$ vermillion build --root /path/to/project
~~~`,
		docLinks: []HttpLink{"https://bedrock-oss.github.io/regolith/guide/custom-filters"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load vermillion.config.cue!

The optional tool configuration file exists but could not be parsed.

## Things you can try:
- Check the CUE syntax of the file
- Remove the file to fall back to defaults
- Inspect the effective configuration:
~~~
$ vermillion config show
~~~`,
	}

	descriptorParseErrorIssue = &Issue{
		id: DescriptorParseErrorId,
		mdMsg: `
# Failed to parse the addon descriptor!

src/main/resources/vermillion.addon.json is missing, malformed, or does not
match the expected shape.

## Example descriptor:
~~~json
{
    // comments are allowed
    "name": "My Add-on",
    "description": "Adds things",
    "version": "1.0.0",
    "target": "release",
    "engine": "1.20.0",
    "packs": { "behavior": true, "resource": true },
    "scripts": {
        "export": true,
        "entrypoints": ["./main"],
        "bundle": true,
        "minify": false,
        "external": [],
        "dependencies": { "@minecraft/server": "1.8.0" }
    }
}
~~~`,
	}

	identityCorruptIssue = &Issue{
		id: IdentityCorruptId,
		mdMsg: `
# The identity store is corrupt!

uuids.json holds the identifiers every previous build of this add-on was
published with. It could not be read, so the build stopped instead of
silently generating new identifiers.

## Things you can try:
- Restore uuids.json from version control
- If the add-on was never published, regenerate it:
~~~
$ vermillion identity reset
~~~`,
	}

	manifestWriteFailedIssue = &Issue{
		id: ManifestWriteFailedId,
		mdMsg: `
# Failed to write a manifest!

The pack output directory could not be written.

## Things you can try:
- Check permissions of the .regolith/tmp directory
- Make sure no other process holds the manifest open`,
	}

	scriptsNotViableIssue = &Issue{
		id: ScriptsNotViableId,
		mdMsg: `
# No script entry was produced!

Every script transform or the bundle step failed, so the behavior pack has
no script module. The manifests were written without it.

## Things you can try:
- Fix the transform errors logged above
- Check the entrypoints listed in the addon descriptor
- Run with --verbose for the full error chain`,
	}

	issues = map[Id]*Issue{
		rootDirMissingIssue.Id():       rootDirMissingIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		descriptorParseErrorIssue.Id(): descriptorParseErrorIssue,
		identityCorruptIssue.Id():      identityCorruptIssue,
		manifestWriteFailedIssue.Id():  manifestWriteFailedIssue,
		scriptsNotViableIssue.Id():     scriptsNotViableIssue,
	}
)

func Get(id Id) *Issue {
	return issues[id]
}
