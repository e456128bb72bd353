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

package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainvisa/git-bv/internal/gitutil"
	"github.com/brainvisa/git-bv/internal/testutil"
	"github.com/brainvisa/git-bv/pkg/printer/fake"
)

func newConfigStore(t *testing.T) *configStore {
	t.Helper()
	dir := t.TempDir()
	testutil.RunGit(t, dir, "init")
	runner, err := gitutil.NewLocalGitRunner(dir)
	require.NoError(t, err)
	return &configStore{runner: runner}
}

func TestConfigStoreGetSetUnset(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	store := newConfigStore(t)

	_, ok, err := store.Get(ctx, "bv.defaultbranch")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "bv.defaultbranch", "develop"))
	v, ok, err := store.Get(ctx, "bv.defaultbranch")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "develop", v)

	require.NoError(t, store.Set(ctx, "bv.defaultbranch", "main"))
	v, _, err = store.Get(ctx, "bv.defaultbranch")
	require.NoError(t, err)
	assert.Equal(t, "main", v)

	require.NoError(t, store.Unset(ctx, "bv.defaultbranch"))
	_, ok, err = store.Get(ctx, "bv.defaultbranch")
	require.NoError(t, err)
	assert.False(t, ok)

	// unsetting an absent key is a no-op
	require.NoError(t, store.Unset(ctx, "bv.defaultbranch"))
}

func TestConfigStoreListPrefix(t *testing.T) {
	ctx := fake.CtxWithDefaultPrinter()
	store := newConfigStore(t)

	// an absent namespace reads as empty, not as an error
	entries, err := store.ListPrefix(ctx, "bv.url_pattern.")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, store.Set(ctx, "bv.url_pattern.a", "https://a/{component}"))
	require.NoError(t, store.Set(ctx, "bv.url_pattern.b", "https://b/{component}"))
	require.NoError(t, store.Set(ctx, "bv.component.c", "ignored"))

	entries, err = store.ListPrefix(ctx, "bv.url_pattern.")
	require.NoError(t, err)
	want := map[string]string{
		"a": "https://a/{component}",
		"b": "https://b/{component}",
	}
	assert.Empty(t, cmp.Diff(want, entries))
}

func TestParseSource(t *testing.T) {
	testCases := map[string]struct {
		value   string
		want    Source
		wantErr bool
	}{
		"single token": {
			value: "brainvisa",
			want:  Source{URLOrPattern: "brainvisa"},
		},
		"two tokens": {
			value: "brainvisa stable",
			want:  Source{URLOrPattern: "brainvisa", Branch: "stable"},
		},
		"empty": {
			value:   "",
			wantErr: true,
		},
		"three tokens": {
			value:   "a b c",
			wantErr: true,
		},
	}
	for tn, tc := range testCases {
		t.Run(tn, func(t *testing.T) {
			src, err := parseSource(tc.value)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, src)
		})
	}
}

func TestEncodeSourceRoundTrip(t *testing.T) {
	for _, src := range []Source{
		{URLOrPattern: "brainvisa"},
		{URLOrPattern: "https://example.org/x.git", Branch: "stable"},
	} {
		parsed, err := parseSource(encodeSource(src))
		require.NoError(t, err)
		assert.Equal(t, src, parsed)
	}
}
