// Copyright 2021 The git-bv Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package docs holds the help text of the git-bv commands.
package docs

var RootShort = `Manage a source repository aggregating many components with git`
var RootLong = `
git-bv manages a source repository: an umbrella git tree aggregating many
independently-versioned components. Component metadata lives in the
repository git config; attaching and detaching components is driven
entirely through git.
`

var InitShort = `Initialize a source repository`
var InitLong = `
git-bv init [DIRECTORY] [flags]

Creates a git repository in DIRECTORY (default: the current directory) on
the read-only 'git-bv' branch with one placeholder commit, records the
default branch, and registers the built-in 'brainvisa' URL pattern.

Args:
  DIRECTORY:
    Directory of the new source repository. Created if absent.
`
var InitExamples = `
  # initialize a source repository tracking the integration branch
  git-bv init /somewhere/brainvisa -b integration

  # initialize using nested checkouts instead of subtree merges
  git-bv init --mode nested
`

var InfoShort = `Report the source repository state`
var InfoLong = `
git-bv info

Prints the repository path, default branch, attach mode, URL patterns, and
registered components. The remote URL column is read live from git, so it
shows drift from the recorded source.
`

var AddURLShort = `Register a named URL pattern`
var AddURLLong = `
git-bv add_url NAME PATTERN

Args:
  NAME:
    Pattern name, unique within the repository.
  PATTERN:
    URL template; the literal '{component}' is replaced with the
    component name when the pattern is used.
`
var AddURLExamples = `
  git-bv add_url github 'https://github.com/brainvisa/{component}.git'
`

var RmURLShort = `Unregister a named URL pattern`
var RmURLLong = `
git-bv rm_url NAME

Removing an unknown name is a no-op.
`

var AddComponentShort = `Attach a component to the source repository`
var AddComponentLong = `
git-bv add_component NAME [URL_OR_PATTERN] [BRANCH]

Attaches the component's tree under the prefix NAME and records it in the
registry. The recording happens only after the git-side attach succeeded;
in subtree mode a failed merge removes the remote it added first.

Args:
  NAME:
    Component name; also the attachment path and part of the remote name.
  URL_OR_PATTERN:
    A URL pattern name or a literal URL. Defaults to 'brainvisa'.
  BRANCH:
    Branch to attach. Defaults to the repository default branch.
`
var AddComponentExamples = `
  # attach 'anatomist' from the built-in pattern, on the default branch
  git-bv add_component anatomist

  # attach from an explicit URL, pinned to a branch
  git-bv add_component soma-base https://example.org/soma-base.git stable
`

var RmComponentShort = `Detach a component from the source repository`
var RmComponentLong = `
git-bv rm_component NAME

Removes the component's files with a removal commit, removes its remote if
one exists, and unregisters it.
`

var TreeShort = `Show the registered components as a tree`
var TreeLong = `
git-bv tree

Prints the source repository with one node per registered component,
annotated with the branch it follows.
`

var ManifestShort = `Export the registry as a YAML manifest`
var ManifestLong = `
git-bv manifest

Writes the default branch, URL patterns, and components to stdout in the
format accepted by 'git-bv apply'.
`

var ApplyShort = `Attach every component listed in a manifest`
var ApplyLong = `
git-bv apply MANIFEST

Reads a manifest produced by 'git-bv manifest' and attaches every listed
component that is not yet registered, adding missing URL patterns first.
Already attached components are skipped, so apply can be re-run.
`
