// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry for a class of acceptance-run failure.
type Id int

const (
	PlanNotFoundId Id = iota + 1
	PlanParseErrorId
	ConfigLoadFailedId
	PackagesNotFoundId
	VersionNotAvailableId
	PackageManagerFailedId
	ToolchainFailedId
	OutputMismatchId
	ReadinessTimeoutId
	ProbeFailedId
	InstallRootMissingId
)

// MarkdownMsg is Markdown text rendered to the terminal via glamour.
type MarkdownMsg string

// HttpLink is a URL shown in the "See also" section of a rendered issue.
type HttpLink string

// Renderer renders Markdown for terminal display.
type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

// Issue pairs a failure class with remediation guidance.
type Issue struct {
	id       Id          // ID used to look up the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links, may be empty
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

// Render produces the terminal-ready guidance text for this issue.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	planNotFoundIssue = &Issue{
		id: PlanNotFoundId,
		mdMsg: `
# No release plan found!

relcheck looked for a plan file but could not find one.

## Search locations (in order of precedence):
1. The path given with ` + "`--plan`" + `
2. ` + "`relplan.cue`" + ` in the current directory
3. ` + "`relplan.toml`" + ` in the current directory

## Things you can try:
- Run relcheck from the directory that contains the sample applications
  and the plan file
- Point at a plan explicitly:
~~~
$ relcheck run --plan /path/to/relplan.cue 8 9
~~~`,
	}

	planParseErrorIssue = &Issue{
		id: PlanParseErrorId,
		mdMsg: `
# Failed to parse the release plan!

The plan file contains syntax errors or values the schema rejects.

## Common issues:
- Invalid CUE/TOML syntax (missing quotes, braces)
- An artifact with an unknown kind (must be "console" or "served")
- A served artifact without a readiness marker or probe URL

## Things you can try:
- Check the error message above for the exact field and file
- Inspect the resolved plan once it parses:
~~~
$ relcheck plan
~~~

## Example of a minimal plan:
~~~cue
packages: {
	dir:    "/var/lib/solbuild/local"
	prefix: "dotnet"
}

artifacts: [
	{name: "console", kind: "console", expect: "SUCCESS"},
]
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your relcheck config file could not be read or validated.

## Things you can try:
- Show where the config is read from:
~~~
$ relcheck config path
~~~
- Check the file for CUE syntax errors
- Remove the file to fall back to defaults`,
	}

	packagesNotFoundIssue = &Issue{
		id: PackagesNotFoundId,
		mdMsg: `
# No packages found!

The package directory exists but contains no package files matching the
plan's prefix and extension.

## Things you can try:
- Verify the plan's ` + "`packages.dir`" + ` points at the build output directory
- Check the ` + "`packages.prefix`" + ` and ` + "`packages.ext`" + ` values against the
  actual file names
- Build the packages before running the acceptance harness`,
	}

	versionNotAvailableIssue = &Issue{
		id: VersionNotAvailableId,
		mdMsg: `
# Requested version not available!

One or more versions on the command line have no enumerated packages.

## Things you can try:
- List what the harness can see:
~~~
$ relcheck plan
~~~
- Check for typos: versions are bare major numbers ("8", not "net8.0")`,
	}

	packageManagerFailedIssue = &Issue{
		id: PackageManagerFailedId,
		mdMsg: `
# Package manager invocation failed!

An install or remove action returned a non-zero exit code.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the full package manager output
- Check that the harness can elevate (install/remove run under sudo)
- Run the same install by hand to see the package manager's own error
- Skip package actions entirely for an unprivileged smoke run:
~~~
$ relcheck run --skip-packages 8
~~~`,
	}

	toolchainFailedIssue = &Issue{
		id: ToolchainFailedId,
		mdMsg: `
# Build or publish step failed!

The toolchain under test returned a non-zero exit code. This usually means
the installed package set cannot compile the sample applications — which is
exactly the defect this harness exists to catch.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the full toolchain output
- Run the failing build by hand with the same framework moniker
- Verify the version under test is actually installed`,
	}

	outputMismatchIssue = &Issue{
		id: OutputMismatchId,
		mdMsg: `
# Artifact output mismatch!

A built artifact ran, but its output differed from the expected literal.
The failure message above shows both the expected and the actual value.

## Things you can try:
- Run the artifact by hand and inspect its output
- Check that the sample application sources are clean (` + "`git status`" + `)
- Confirm the artifact path in the plan matches the build output layout`,
	}

	readinessTimeoutIssue = &Issue{
		id: ReadinessTimeoutId,
		mdMsg: `
# Served artifact never became ready!

The readiness marker did not appear in the process log within the timeout.
The process has been terminated and its temporary log removed.

## Things you can try:
- Increase ` + "`supervise.timeout`" + ` in the plan
- Check whether the port is already in use by a leftover process
- Run the artifact by hand and watch its startup output`,
	}

	probeFailedIssue = &Issue{
		id: ProbeFailedId,
		mdMsg: `
# A probe reported failure!

Probes exit non-zero to signal a defect in the installed release. The probe's
own diagnostic output appears above.

## Probe contract:
- Executable file, invoked as ` + "`probe <version>`" + `
- Exit 0 = pass, non-zero = fail
- Non-executable entries in the probe directory are skipped with a warning

## Things you can try:
- Run the probe by hand with the same version argument
- Run only the probes, without the full matrix:
~~~
$ relcheck probes 8
~~~`,
	}

	installRootMissingIssue = &Issue{
		id: InstallRootMissingId,
		mdMsg: `
# Installation root missing!

The permissions probe expected an installation root directory, but it does
not exist. Either the install step failed silently or the plan's
` + "`permissions.root`" + ` points at the wrong path.

## Things you can try:
- Check the package manager's file list for the install prefix
- Fix ` + "`permissions.root`" + ` in the plan`,
	}

	issues = map[Id]*Issue{
		planNotFoundIssue.Id():         planNotFoundIssue,
		planParseErrorIssue.Id():       planParseErrorIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		packagesNotFoundIssue.Id():     packagesNotFoundIssue,
		versionNotAvailableIssue.Id():  versionNotAvailableIssue,
		packageManagerFailedIssue.Id(): packageManagerFailedIssue,
		toolchainFailedIssue.Id():      toolchainFailedIssue,
		outputMismatchIssue.Id():       outputMismatchIssue,
		readinessTimeoutIssue.Id():     readinessTimeoutIssue,
		probeFailedIssue.Id():          probeFailedIssue,
		installRootMissingIssue.Id():   installRootMissingIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
