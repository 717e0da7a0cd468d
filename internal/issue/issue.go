// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	ProjectNotFoundId Id = iota + 1
	ProjectParseErrorId
	UnknownEnvironmentId
	InvalidEnvironmentOptionId
	ContainerEngineNotFoundId
	ImageBuildFailedId
	ContainerCommandFailedId
	EnvironmentNotCreatedId
	ShellCommandInvalidId
	ConfigLoadFailedId
	PermissionDeniedId
	PackageBuildFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
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

// Render renders the issue with the named glamour style ("dark", "light", "notty").
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

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# No pyproject.toml found!

contenv looks for a ` + "`pyproject.toml`" + ` in the current directory and
every parent directory.

## Things you can try:
- Run the command from inside your project
- Point contenv at the project explicitly:
~~~
$ contenv --project /path/to/project env create
~~~`,
		extLinks: []HttpLink{"https://packaging.python.org/en/latest/specifications/pyproject-toml/"},
	}

	projectParseErrorIssue = &Issue{
		id: ProjectParseErrorId,
		mdMsg: `
# Failed to parse pyproject.toml!

## Common issues:
- Invalid TOML syntax (unbalanced quotes or brackets)
- Missing ` + "`[project]`" + ` table or ` + "`name`" + ` field

## Minimal example:
~~~toml
[project]
name = "my-app"
version = "0.1.0"

[tool.contenv.envs.default]
python = "3.12"
~~~`,
		extLinks: []HttpLink{"https://toml.io/en/v1.0.0"},
	}

	unknownEnvironmentIssue = &Issue{
		id: UnknownEnvironmentId,
		mdMsg: `
# Unknown environment!

Environments are declared as tables under ` + "`tool.contenv.envs`" + `. The
` + "`default`" + ` environment always exists.

## Things you can try:
- Check the environment name for typos
- Declare the environment:
~~~toml
[tool.contenv.envs.lint]
dependencies = ["ruff"]
~~~`,
	}

	invalidEnvironmentOptionIssue = &Issue{
		id: InvalidEnvironmentOptionId,
		mdMsg: `
# Invalid environment option!

One of the options of the environment has the wrong type.

## Option types:
| Option | Type |
|---|---|
| image | string |
| command | array of strings |
| start-on-creation | boolean |
| shell | string |
| python | string |
| dependencies | array of strings |
| env-vars | table of strings |
| env-include / env-exclude | array of glob patterns |

## Things you can try:
- Inspect the resolved options:
~~~
$ contenv env show <env>
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

contenv drives Docker or Podman through their command line tools.

## Things you can try:
- Install Docker or Podman and make sure the daemon is running
- Select the engine explicitly:
~~~
$ contenv --engine podman env create
~~~
- Or persist the choice in your configuration:
~~~cue
container_engine: "podman"
~~~`,
		extLinks: []HttpLink{"https://docs.docker.com/get-docker/", "https://podman.io/docs/installation"},
	}

	imageBuildFailedIssue = &Issue{
		id: ImageBuildFailedId,
		mdMsg: `
# Failed to build the environment image!

## Common causes:
- The base image does not exist or cannot be pulled
- The base image has no ` + "`python`" + ` on its PATH
- No network access while installing virtualenv or hatchling

## Things you can try:
- Check the ` + "`image`" + ` and ` + "`python`" + ` options of the environment
- Pull the base image manually to see the registry error:
~~~
$ docker pull python:3.12
~~~
- Re-run with ` + "`-v`" + ` to stream the build output`,
	}

	containerCommandFailedIssue = &Issue{
		id: ContainerCommandFailedId,
		mdMsg: `
# Container command failed!

The container engine returned a non-zero exit status.

## Things you can try:
- Re-run with ` + "`-v`" + ` to log every engine invocation
- Check that the container still exists:
~~~
$ contenv env find
$ docker ps -a
~~~
- Recreate the environment:
~~~
$ contenv env remove && contenv env create
~~~`,
	}

	environmentNotCreatedIssue = &Issue{
		id: EnvironmentNotCreatedId,
		mdMsg: `
# Environment does not exist!

## Things you can try:
- Create it first:
~~~
$ contenv env create <env>
~~~
- ` + "`contenv run`" + ` and ` + "`contenv shell`" + ` create it on demand`,
	}

	shellCommandInvalidIssue = &Issue{
		id: ShellCommandInvalidId,
		mdMsg: `
# Invalid shell command!

Commands are parsed before they are sent to the container so that syntax
errors are reported without starting it.

## Things you can try:
- Check for unbalanced quotes or unterminated ` + "`if`/`for`" + ` blocks
- Separate contenv flags from the command with ` + "`--`" + `:
~~~
$ contenv run -- pytest -k "not slow"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show where contenv reads its configuration from:
~~~
$ contenv config path
~~~
- Regenerate a default file:
~~~
$ contenv config init
~~~

## Example:
~~~cue
container_engine: "docker"
default_python:   "3.12"
ui: {
	verbose:      false
	color_scheme: "auto"
}
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

## Common causes:
- The current user cannot talk to the container engine socket
- The data directory or the build output directory is not writable

## Things you can try:
- Add yourself to the docker group:
~~~
$ sudo usermod -aG docker $USER
~~~
- Use rootless Podman`,
	}

	packageBuildFailedIssue = &Issue{
		id: PackageBuildFailedId,
		mdMsg: `
# Build failed!

The build ran inside a throwaway builder container created from a copy of
the project.

## Things you can try:
- Check ` + "`[build-system] requires`" + ` in pyproject.toml
- Re-run with ` + "`-v`" + ` to see the pip and hatchling output
- Clean previous artifacts:
~~~
$ contenv build --clean
~~~`,
	}

	issues = map[Id]*Issue{
		projectNotFoundIssue.Id():          projectNotFoundIssue,
		projectParseErrorIssue.Id():        projectParseErrorIssue,
		unknownEnvironmentIssue.Id():       unknownEnvironmentIssue,
		invalidEnvironmentOptionIssue.Id(): invalidEnvironmentOptionIssue,
		containerEngineNotFoundIssue.Id():  containerEngineNotFoundIssue,
		imageBuildFailedIssue.Id():         imageBuildFailedIssue,
		containerCommandFailedIssue.Id():   containerCommandFailedIssue,
		environmentNotCreatedIssue.Id():    environmentNotCreatedIssue,
		shellCommandInvalidIssue.Id():      shellCommandInvalidIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		permissionDeniedIssue.Id():         permissionDeniedIssue,
		packageBuildFailedIssue.Id():       packageBuildFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
