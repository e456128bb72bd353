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

// Package testutil creates the git fixtures the tests run against.
package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// ConfigureGitEnv gives the test process a commit identity and allows the
// file transport, so fixtures and submodule attaches work in a clean
// environment.
func ConfigureGitEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GIT_AUTHOR_NAME", "git-bv test")
	t.Setenv("GIT_AUTHOR_EMAIL", "git-bv@test.invalid")
	t.Setenv("GIT_COMMITTER_NAME", "git-bv test")
	t.Setenv("GIT_COMMITTER_EMAIL", "git-bv@test.invalid")
	t.Setenv("GIT_CONFIG_COUNT", "1")
	t.Setenv("GIT_CONFIG_KEY_0", "protocol.file.allow")
	t.Setenv("GIT_CONFIG_VALUE_0", "always")
}

// RunGit runs a git command in dir, failing the test on a non-zero exit.
func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}

// CreateUpstreamRepo creates a git repository with the given files
// committed on branch and returns its path. The path doubles as a
// fetchable URL for both subtree and nested attaches.
func CreateUpstreamRepo(t *testing.T, branch string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	RunGit(t, dir, "init")
	RunGit(t, dir, "checkout", "-b", branch)
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	RunGit(t, dir, "add", "-A")
	RunGit(t, dir, "commit", "-m", "upstream content")
	return dir
}

// CreateUpstreams creates one upstream repository per component name under
// a common root and returns a URL pattern resolving component names to
// them. Every upstream gets a single committed file named after its
// component.
func CreateUpstreams(t *testing.T, branch string, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		RunGit(t, dir, "init")
		RunGit(t, dir, "checkout", "-b", branch)
		file := filepath.Join(dir, name+".txt")
		if err := os.WriteFile(file, []byte(fmt.Sprintf("content of %s\n", name)), 0644); err != nil {
			t.Fatal(err)
		}
		RunGit(t, dir, "add", "-A")
		RunGit(t, dir, "commit", "-m", "upstream content")
	}
	return filepath.Join(root, "{component}")
}

// CommitCount returns the number of commits reachable from ref.
func CommitCount(t *testing.T, dir, ref string) int {
	t.Helper()
	out := RunGit(t, dir, "rev-list", "--count", ref)
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%d", &n); err != nil {
		t.Fatalf("parsing rev-list output %q: %v", out, err)
	}
	return n
}

// Remotes returns the names of the remotes configured in dir.
func Remotes(t *testing.T, dir string) []string {
	t.Helper()
	out := strings.TrimSpace(RunGit(t, dir, "remote"))
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
