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

// Package registry manages a source repository: an umbrella git tree that
// aggregates independently-versioned components. All registry metadata
// (default branch, URL patterns, registered components) lives in the
// repository-local git config under the "bv" namespace.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brainvisa/git-bv/internal/errors"
	"github.com/brainvisa/git-bv/internal/gitutil"
	"github.com/brainvisa/git-bv/internal/types"
)

const (
	configNS = "bv"

	defaultBranchKey   = configNS + ".defaultbranch"
	attachModeKey      = configNS + ".attachmode"
	patternKeyPrefix   = configNS + ".url_pattern."
	componentKeyPrefix = configNS + ".component."

	// ComponentToken is the placeholder substituted with the component
	// name when a URL pattern is resolved.
	ComponentToken = "{component}"

	// ReadOnlyBranch holds the curated component snapshots, separate from
	// normal development history.
	ReadOnlyBranch = "git-bv"

	// PlaceholderFile is committed by Init so the subtree merge mechanism
	// has a commit to merge onto.
	PlaceholderFile = ".git-bv"

	// BuiltinPatternName is the URL pattern registered by Init.
	BuiltinPatternName     = "brainvisa"
	builtinPatternTemplate = "ssh://git@bioproj.extra.cea.fr/brainvisa/" + ComponentToken + ".git"

	placeholderContent = "Source repository managed by git-bv.\n"
)

// AttachMode selects how components are brought into the umbrella tree.
type AttachMode string

const (
	// AttachSubtree merges the component's history into a path prefix,
	// keeping a named remote registered.
	AttachSubtree AttachMode = "subtree"

	// AttachNested links the component as a nested working copy
	// (a submodule), with no separate remote.
	AttachNested AttachMode = "nested"
)

// RemoteName returns the remote registered for a component attached in
// subtree mode.
func RemoteName(component string) string {
	return configNS + "/component/" + component
}

// Source describes where a registered component comes from. Branch is
// empty when the component follows the registry default branch.
type Source struct {
	URLOrPattern string
	Branch       string
}

// Registry is the component registry of one source repository. It is bound
// to a directory at construction and issues every git command against it.
// Operations are strictly sequential; a Registry must not be shared between
// goroutines.
type Registry struct {
	dir    types.UniquePath
	runner *gitutil.GitLocalRunner
	config *configStore

	// defaultBranch caches bv.defaultbranch. branchLoaded distinguishes
	// "not read yet" from a cached empty value.
	defaultBranch string
	branchLoaded  bool
}

// New returns a Registry bound to dir. The directory does not need to
// exist yet; only Init may be called on an uninitialized one.
func New(dir string) (*Registry, error) {
	const op errors.Op = "registry.New"
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	abs = filepath.Clean(abs)
	runner, err := gitutil.NewLocalGitRunner(abs)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return &Registry{
		dir:    types.UniquePath(abs),
		runner: runner,
		config: &configStore{runner: runner},
	}, nil
}

// Path returns the absolute path of the source repository.
func (r *Registry) Path() types.UniquePath {
	return r.dir
}

// Initialized reports whether the directory is a git repository.
func (r *Registry) Initialized() bool {
	_, err := os.Stat(filepath.Join(string(r.dir), ".git"))
	return err == nil
}

func (r *Registry) requireInitialized(op errors.Op) error {
	if !r.Initialized() {
		return errors.E(op, r.dir, errors.NotInitialized,
			fmt.Errorf("run 'git-bv init' first"))
	}
	return nil
}

// InitOptions configures Init.
type InitOptions struct {
	// DefaultBranch is persisted as the branch components are attached
	// from when none is requested explicitly.
	DefaultBranch string

	// Mode selects the attachment strategy for the repository. Defaults
	// to AttachSubtree.
	Mode AttachMode

	// InstallGuard installs the pre-commit hook that refuses direct
	// commits on the read-only branch.
	InstallGuard bool
}

// Init creates a new source repository rooted at the registry directory:
// a fresh git repository on the read-only branch, holding one placeholder
// commit, with the default branch persisted and the built-in brainvisa URL
// pattern registered.
func (r *Registry) Init(ctx context.Context, opts InitOptions) error {
	const op errors.Op = "registry.init"

	if opts.DefaultBranch == "" {
		return errors.E(op, errors.InvalidParam,
			fmt.Errorf("default branch must not be empty"))
	}
	mode := opts.Mode
	if mode == "" {
		mode = AttachSubtree
	}
	if mode != AttachSubtree && mode != AttachNested {
		return errors.E(op, errors.InvalidParam,
			fmt.Errorf("unknown attach mode %q", mode))
	}

	if err := os.MkdirAll(string(r.dir), 0755); err != nil {
		return errors.E(op, r.dir, errors.IO, err)
	}
	if _, err := r.runner.Run(ctx, "init"); err != nil {
		return errors.E(op, r.dir, err)
	}

	if err := r.config.Set(ctx, defaultBranchKey, opts.DefaultBranch); err != nil {
		return errors.E(op, r.dir, err)
	}
	r.OverrideDefaultBranch(opts.DefaultBranch)
	if err := r.config.Set(ctx, attachModeKey, string(mode)); err != nil {
		return errors.E(op, r.dir, err)
	}

	// Branch the unborn HEAD before the first commit so the placeholder
	// commit lands on the read-only branch.
	if _, err := r.runner.Run(ctx, "checkout", "-b", ReadOnlyBranch); err != nil {
		return errors.E(op, r.dir, err)
	}

	placeholder := filepath.Join(string(r.dir), PlaceholderFile)
	if err := os.WriteFile(placeholder, []byte(placeholderContent), 0644); err != nil {
		return errors.E(op, r.dir, errors.IO, err)
	}
	if _, err := r.runner.Run(ctx, "add", PlaceholderFile); err != nil {
		return errors.E(op, r.dir, err)
	}
	// Registry-issued commits always bypass hooks; the guard hook only
	// stops direct user commits on the read-only branch.
	if _, err := r.runner.Run(ctx, "commit", "--no-verify", "-m", "Initialize source repository"); err != nil {
		return errors.E(op, r.dir, err)
	}

	if err := r.AddURLPattern(ctx, BuiltinPatternName, builtinPatternTemplate); err != nil {
		return errors.E(op, r.dir, err)
	}

	if opts.InstallGuard {
		if err := r.InstallGuardHook(ctx); err != nil {
			return errors.E(op, r.dir, err)
		}
	}
	return nil
}

// DefaultBranch returns the registry default branch, reading it through
// from the config store on first use.
func (r *Registry) DefaultBranch(ctx context.Context) (string, error) {
	const op errors.Op = "registry.defaultBranch"
	if r.branchLoaded {
		return r.defaultBranch, nil
	}
	if err := r.requireInitialized(op); err != nil {
		return "", err
	}
	v, _, err := r.config.Get(ctx, defaultBranchKey)
	if err != nil {
		return "", errors.E(op, r.dir, err)
	}
	r.defaultBranch = v
	r.branchLoaded = true
	return v, nil
}

// OverrideDefaultBranch replaces the in-memory default branch without
// persisting it. Callers that want persistence must write the config key
// themselves, as Init does.
func (r *Registry) OverrideDefaultBranch(branch string) {
	r.defaultBranch = branch
	r.branchLoaded = true
}

// Mode returns the repository attach mode, defaulting to subtree when the
// key is absent.
func (r *Registry) Mode(ctx context.Context) (AttachMode, error) {
	const op errors.Op = "registry.mode"
	if err := r.requireInitialized(op); err != nil {
		return "", err
	}
	v, ok, err := r.config.Get(ctx, attachModeKey)
	if err != nil {
		return "", errors.E(op, r.dir, err)
	}
	if !ok {
		return AttachSubtree, nil
	}
	switch AttachMode(v) {
	case AttachSubtree, AttachNested:
		return AttachMode(v), nil
	}
	return "", errors.E(op, r.dir, errors.MalformedEntry,
		fmt.Errorf("unknown attach mode %q in %s", v, attachModeKey))
}

// AddURLPattern registers a named URL template. The name must not already
// be registered.
func (r *Registry) AddURLPattern(ctx context.Context, name, template string) error {
	const op errors.Op = "registry.addUrlPattern"
	if err := r.requireInitialized(op); err != nil {
		return err
	}
	_, ok, err := r.config.Get(ctx, patternKeyPrefix+name)
	if err != nil {
		return errors.E(op, r.dir, err)
	}
	if ok {
		return errors.E(op, r.dir, errors.Exist,
			fmt.Errorf("URL pattern %q is already registered", name))
	}
	if err := r.config.Set(ctx, patternKeyPrefix+name, template); err != nil {
		return errors.E(op, r.dir, err)
	}
	return nil
}

// RemoveURLPattern unregisters a named URL template. Removing an unknown
// name is a no-op.
func (r *Registry) RemoveURLPattern(ctx context.Context, name string) error {
	const op errors.Op = "registry.removeUrlPattern"
	if err := r.requireInitialized(op); err != nil {
		return err
	}
	if err := r.config.Unset(ctx, patternKeyPrefix+name); err != nil {
		return errors.E(op, r.dir, err)
	}
	return nil
}

// URLPatterns returns the full name to template mapping. A repository with
// no patterns yields an empty map.
func (r *Registry) URLPatterns(ctx context.Context) (map[string]string, error) {
	const op errors.Op = "registry.urlPatterns"
	if err := r.requireInitialized(op); err != nil {
		return nil, err
	}
	patterns, err := r.config.ListPrefix(ctx, patternKeyPrefix)
	if err != nil {
		return nil, errors.E(op, r.dir, err)
	}
	return patterns, nil
}

// ResolveURL turns a component's urlOrPattern into a concrete URL: a
// registered pattern name has the component name substituted into its
// placeholder, anything else is taken literally.
func (r *Registry) ResolveURL(ctx context.Context, component, urlOrPattern string) (string, error) {
	const op errors.Op = "registry.resolveUrl"
	patterns, err := r.URLPatterns(ctx)
	if err != nil {
		return "", errors.E(op, err)
	}
	if template, ok := patterns[urlOrPattern]; ok {
		return strings.ReplaceAll(template, ComponentToken, component), nil
	}
	return urlOrPattern, nil
}

// Components returns the persisted component descriptors. A repository
// with no components yields an empty map.
func (r *Registry) Components(ctx context.Context) (map[string]Source, error) {
	const op errors.Op = "registry.components"
	if err := r.requireInitialized(op); err != nil {
		return nil, err
	}
	entries, err := r.config.ListPrefix(ctx, componentKeyPrefix)
	if err != nil {
		return nil, errors.E(op, r.dir, err)
	}
	components := make(map[string]Source, len(entries))
	for name, value := range entries {
		src, err := parseSource(value)
		if err != nil {
			return nil, errors.E(op, r.dir, err)
		}
		components[name] = src
	}
	return components, nil
}

// parseSource decodes a persisted component descriptor: one token for a
// component on the default branch, two when a branch was requested
// explicitly.
func parseSource(value string) (Source, error) {
	tokens := strings.Fields(value)
	switch len(tokens) {
	case 1:
		return Source{URLOrPattern: tokens[0]}, nil
	case 2:
		return Source{URLOrPattern: tokens[0], Branch: tokens[1]}, nil
	}
	return Source{}, errors.E(errors.MalformedEntry,
		fmt.Errorf("want 1 or 2 tokens, got %d in %q", len(tokens), value))
}

// encodeSource is the inverse of parseSource.
func encodeSource(src Source) string {
	if src.Branch == "" {
		return src.URLOrPattern
	}
	return src.URLOrPattern + " " + src.Branch
}

// ComponentInfo is one component's row in Info: the persisted descriptor
// plus the remote URL currently configured in git. RemoteURL is empty for
// components with no remote (nested mode).
type ComponentInfo struct {
	Source    Source
	RemoteURL string
}

// RepoInfo is the full report returned by Info.
type RepoInfo struct {
	Path          types.UniquePath
	DefaultBranch string
	Mode          AttachMode
	URLPatterns   map[string]string
	Components    map[string]ComponentInfo
}

// Info reports the registry state. The per-component remote URL is a fresh
// read from git, not the persisted descriptor, so drift between the two is
// visible.
func (r *Registry) Info(ctx context.Context) (*RepoInfo, error) {
	const op errors.Op = "registry.info"
	if err := r.requireInitialized(op); err != nil {
		return nil, err
	}
	branch, err := r.DefaultBranch(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	mode, err := r.Mode(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	patterns, err := r.URLPatterns(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	components, err := r.Components(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}

	info := &RepoInfo{
		Path:          r.dir,
		DefaultBranch: branch,
		Mode:          mode,
		URLPatterns:   patterns,
		Components:    make(map[string]ComponentInfo, len(components)),
	}
	for name, src := range components {
		ci := ComponentInfo{Source: src}
		if url, ok, err := r.remoteURL(ctx, RemoteName(name)); err != nil {
			return nil, errors.E(op, err)
		} else if ok {
			ci.RemoteURL = url
		}
		info.Components[name] = ci
	}
	return info, nil
}

// remoteURL returns the URL configured for a remote and whether the remote
// exists.
func (r *Registry) remoteURL(ctx context.Context, remote string) (string, bool, error) {
	rr, err := r.runner.Run(ctx, "remote", "get-url", remote)
	if err != nil {
		var execErr *gitutil.GitExecError
		if errors.As(err, &execErr) {
			// git remote get-url exits non-zero only for unknown remotes.
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(rr.Stdout), true, nil
}

func (r *Registry) head(ctx context.Context) (string, error) {
	rr, err := r.runner.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rr.Stdout), nil
}
