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

package registry_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainvisa/git-bv/internal/errors"
	"github.com/brainvisa/git-bv/internal/registry"
	"github.com/brainvisa/git-bv/internal/testutil"
	"github.com/brainvisa/git-bv/pkg/printer/fake"
)

func TestAddComponentSubtree(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachSubtree)
	dir := string(reg.Path())

	pattern := testutil.CreateUpstreams(t, "develop", "anatomist")
	require.NoError(t, reg.AddURLPattern(ctx, "local", pattern))

	require.NoError(t, reg.AddComponent(ctx, "anatomist", "local", ""))

	// descriptor holds the pattern name and no branch token
	components, err := reg.Components(ctx)
	require.NoError(t, err)
	want := map[string]registry.Source{
		"anatomist": {URLOrPattern: "local"},
	}
	assert.Empty(t, cmp.Diff(want, components))

	// tree contains the merged component content
	_, err = os.Stat(filepath.Join(dir, "anatomist", "anatomist.txt"))
	assert.NoError(t, err)

	// the component remote stays registered after a successful attach
	assert.Contains(t, testutil.Remotes(t, dir), registry.RemoteName("anatomist"))

	// upstream history is preserved in the umbrella tree
	log := testutil.RunGit(t, dir, "log", "--oneline")
	assert.Contains(t, log, "upstream content")
}

func TestAddComponentExplicitBranch(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachSubtree)

	pattern := testutil.CreateUpstreams(t, "stable", "soma-base")
	require.NoError(t, reg.AddURLPattern(ctx, "local", pattern))

	require.NoError(t, reg.AddComponent(ctx, "soma-base", "local", "stable"))

	components, err := reg.Components(ctx)
	require.NoError(t, err)
	want := map[string]registry.Source{
		"soma-base": {URLOrPattern: "local", Branch: "stable"},
	}
	assert.Empty(t, cmp.Diff(want, components))
}

func TestAddComponentDuplicateName(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachSubtree)

	pattern := testutil.CreateUpstreams(t, "develop", "axon")
	require.NoError(t, reg.AddURLPattern(ctx, "local", pattern))
	require.NoError(t, reg.AddComponent(ctx, "axon", "local", ""))

	components, err := reg.Components(ctx)
	require.NoError(t, err)

	testCases := map[string][]string{
		"identical arguments": {"local", ""},
		"different arguments": {"https://example.org/axon.git", "stable"},
	}
	for tn, args := range testCases {
		t.Run(tn, func(t *testing.T) {
			err := reg.AddComponent(ctx, "axon", args[0], args[1])
			assert.True(t, errors.Is(err, errors.Exist), "got %v", err)
			after, err := reg.Components(ctx)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(components, after))
		})
	}
}

func TestAddComponentRollsBackRemoteOnFailure(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachSubtree)
	dir := string(reg.Path())
	head := strings.TrimSpace(testutil.RunGit(t, dir, "rev-parse", "HEAD"))

	// the resolved URL points nowhere, so the fetch step fails after the
	// remote was already added
	err := reg.AddComponent(ctx, "ghost", filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)

	components, err := reg.Components(ctx)
	require.NoError(t, err)
	assert.Empty(t, components)
	assert.NotContains(t, testutil.Remotes(t, dir), registry.RemoteName("ghost"))
	assert.Equal(t, head, strings.TrimSpace(testutil.RunGit(t, dir, "rev-parse", "HEAD")))
}

func TestAddComponentRollsBackMergeFailure(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachSubtree)
	dir := string(reg.Path())

	// upstream exists but has no 'develop' branch, so the attach fails at
	// the merge step, after the fetch succeeded
	upstream := testutil.CreateUpstreamRepo(t, "trunk", map[string]string{
		"file.txt": "content\n",
	})
	head := strings.TrimSpace(testutil.RunGit(t, dir, "rev-parse", "HEAD"))

	err := reg.AddComponent(ctx, "orphan", upstream, "")
	require.Error(t, err)

	components, err := reg.Components(ctx)
	require.NoError(t, err)
	assert.Empty(t, components)
	assert.NotContains(t, testutil.Remotes(t, dir), registry.RemoteName("orphan"))
	assert.Equal(t, head, strings.TrimSpace(testutil.RunGit(t, dir, "rev-parse", "HEAD")))
}

func TestAddComponentNested(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachNested)
	dir := string(reg.Path())

	pattern := testutil.CreateUpstreams(t, "develop", "aims")
	require.NoError(t, reg.AddURLPattern(ctx, "local", pattern))
	require.NoError(t, reg.AddComponent(ctx, "aims", "local", ""))

	// nested mode registers no component remote
	assert.NotContains(t, testutil.Remotes(t, dir), registry.RemoteName("aims"))

	_, err := os.Stat(filepath.Join(dir, ".gitmodules"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "aims", "aims.txt"))
	assert.NoError(t, err)

	components, err := reg.Components(ctx)
	require.NoError(t, err)
	want := map[string]registry.Source{
		"aims": {URLOrPattern: "local"},
	}
	assert.Empty(t, cmp.Diff(want, components))
}

func TestRemoveComponent(t *testing.T) {
	testCases := map[string]registry.AttachMode{
		"subtree mode": registry.AttachSubtree,
		"nested mode":  registry.AttachNested,
	}
	for tn, mode := range testCases {
		t.Run(tn, func(t *testing.T) {
			ctx := fake.CtxWithDefaultPrinter()
			reg := initRegistry(t, "develop", mode)
			dir := string(reg.Path())

			pattern := testutil.CreateUpstreams(t, "develop", "cortex")
			require.NoError(t, reg.AddURLPattern(ctx, "local", pattern))
			require.NoError(t, reg.AddComponent(ctx, "cortex", "local", ""))

			require.NoError(t, reg.RemoveComponent(ctx, "cortex"))

			components, err := reg.Components(ctx)
			require.NoError(t, err)
			assert.Empty(t, components)
			assert.NotContains(t, testutil.Remotes(t, dir), registry.RemoteName("cortex"))

			ls := testutil.RunGit(t, dir, "ls-files")
			assert.NotContains(t, ls, "cortex/")

			// the removal is a commit referencing the component
			log := testutil.RunGit(t, dir, "log", "-1", "--format=%s")
			assert.Contains(t, log, "Remove component 'cortex'")
		})
	}
}

func TestRemoveComponentUnknownName(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachSubtree)

	err := reg.RemoveComponent(ctx, "never-attached")
	assert.True(t, errors.Is(err, errors.NotExist), "got %v", err)
}

func TestInfoReportsLiveRemoteURL(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachSubtree)

	pattern := testutil.CreateUpstreams(t, "develop", "anatomist")
	require.NoError(t, reg.AddURLPattern(ctx, "local", pattern))
	require.NoError(t, reg.AddComponent(ctx, "anatomist", "local", ""))

	info, err := reg.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg.Path(), info.Path)
	assert.Equal(t, "develop", info.DefaultBranch)
	assert.Equal(t, registry.AttachSubtree, info.Mode)
	assert.Contains(t, info.URLPatterns, registry.BuiltinPatternName)

	ci, ok := info.Components["anatomist"]
	require.True(t, ok)
	resolved, err := reg.ResolveURL(ctx, "anatomist", "local")
	require.NoError(t, err)
	assert.Equal(t, resolved, ci.RemoteURL)

	// the reported URL is live: external drift shows up
	testutil.RunGit(t, string(reg.Path()), "remote", "set-url",
		registry.RemoteName("anatomist"), "https://drifted.example.org/anatomist.git")
	info, err = reg.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://drifted.example.org/anatomist.git",
		info.Components["anatomist"].RemoteURL)
}

func TestComponentsRejectsMalformedDescriptor(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	reg := initRegistry(t, "develop", registry.AttachSubtree)

	testutil.RunGit(t, string(reg.Path()),
		"config", "--local", "bv.component.broken", "url branch extra-token")

	_, err := reg.Components(ctx)
	assert.True(t, errors.Is(err, errors.MalformedEntry), "got %v", err)
}
