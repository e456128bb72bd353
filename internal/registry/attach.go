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
	"context"
	"fmt"

	"github.com/brainvisa/git-bv/internal/errors"
)

// AddComponent attaches a component to the umbrella tree and persists its
// descriptor. The descriptor is written only after the git-side attach has
// fully succeeded; in subtree mode a failed merge removes the remote added
// for it before the error propagates, so a failed attach leaves no partial
// state in either git or the registry.
func (r *Registry) AddComponent(ctx context.Context, name, urlOrPattern, branch string) error {
	const op errors.Op = "registry.addComponent"
	if err := r.requireInitialized(op); err != nil {
		return err
	}
	if name == "" {
		return errors.E(op, r.dir, errors.InvalidParam,
			fmt.Errorf("component name must not be empty"))
	}

	_, ok, err := r.config.Get(ctx, componentKeyPrefix+name)
	if err != nil {
		return errors.E(op, r.dir, err)
	}
	if ok {
		return errors.E(op, r.dir, errors.Exist,
			fmt.Errorf("component %q is already registered", name))
	}

	url, err := r.ResolveURL(ctx, name, urlOrPattern)
	if err != nil {
		return errors.E(op, r.dir, err)
	}
	resolvedBranch := branch
	if resolvedBranch == "" {
		resolvedBranch, err = r.DefaultBranch(ctx)
		if err != nil {
			return errors.E(op, r.dir, err)
		}
	}
	mode, err := r.Mode(ctx)
	if err != nil {
		return errors.E(op, r.dir, err)
	}

	undo := &undoStack{}
	switch mode {
	case AttachSubtree:
		err = r.attachSubtree(ctx, undo, name, url, resolvedBranch)
	case AttachNested:
		err = r.attachNested(ctx, name, url, resolvedBranch)
	}
	if err != nil {
		if rbErr := undo.Rollback(); rbErr != nil {
			return errors.E(op, r.dir,
				fmt.Errorf("%v (rollback failed: %v)", err, rbErr))
		}
		return errors.E(op, r.dir, err)
	}
	undo.Discard()

	// The branch token is persisted only when the caller requested one,
	// so "follow the default branch" stays distinguishable from an
	// explicit request for the same branch.
	descriptor := encodeSource(Source{URLOrPattern: urlOrPattern, Branch: branch})
	if err := r.config.Set(ctx, componentKeyPrefix+name, descriptor); err != nil {
		return errors.E(op, r.dir, err)
	}
	return nil
}

// attachSubtree registers the component remote and merges its branch under
// the component prefix with the subtree merge strategy, preserving the
// component's history. Every step that succeeds pushes its reversal on the
// undo stack.
func (r *Registry) attachSubtree(ctx context.Context, undo *undoStack, name, url, branch string) error {
	remote := RemoteName(name)
	if _, err := r.runner.Run(ctx, "remote", "add", remote, url); err != nil {
		return err
	}
	undo.Push(func() error {
		_, err := r.runner.Run(ctx, "remote", "remove", remote)
		return err
	})

	head, err := r.head(ctx)
	if err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, "fetch", remote); err != nil {
		return err
	}
	// A hard reset to the pre-merge head also clears any half-done merge
	// state left by the steps below.
	undo.Push(func() error {
		_, err := r.runner.Run(ctx, "reset", "--hard", head)
		return err
	})

	mergeRef := remote + "/" + branch
	if _, err := r.runner.Run(ctx, "merge", "-s", "ours", "--no-commit",
		"--allow-unrelated-histories", mergeRef); err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, "read-tree", "--prefix="+name+"/", "-u", mergeRef); err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, "commit", "--no-verify", "-m",
		fmt.Sprintf("Merge component '%s' branch '%s'", name, branch)); err != nil {
		return err
	}
	return nil
}

// attachNested links the component as a submodule pinned to the resolved
// branch. git refuses to leave a partial submodule behind on failure, so
// there is nothing to compensate.
func (r *Registry) attachNested(ctx context.Context, name, url, branch string) error {
	if _, err := r.runner.Run(ctx, "submodule", "add", "-b", branch, "--", url, name); err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, "commit", "--no-verify", "-m",
		fmt.Sprintf("Add component '%s' branch '%s'", name, branch)); err != nil {
		return err
	}
	return nil
}

// RemoveComponent detaches a component: its files are removed from the
// umbrella tree with a removal commit, its remote (if any) is removed, and
// its descriptor is unset, in that order. A failure after the removal
// commit rolls the earlier steps back so tree, remote, and registry stay
// consistent.
func (r *Registry) RemoveComponent(ctx context.Context, name string) error {
	const op errors.Op = "registry.removeComponent"
	if err := r.requireInitialized(op); err != nil {
		return err
	}
	_, ok, err := r.config.Get(ctx, componentKeyPrefix+name)
	if err != nil {
		return errors.E(op, r.dir, err)
	}
	if !ok {
		return errors.E(op, r.dir, errors.NotExist,
			fmt.Errorf("component %q is not registered", name))
	}

	undo := &undoStack{}
	fail := func(err error) error {
		if rbErr := undo.Rollback(); rbErr != nil {
			return errors.E(op, r.dir,
				fmt.Errorf("%v (rollback failed: %v)", err, rbErr))
		}
		return errors.E(op, r.dir, err)
	}

	head, err := r.head(ctx)
	if err != nil {
		return errors.E(op, r.dir, err)
	}
	if _, err := r.runner.Run(ctx, "rm", "-r", "--", name); err != nil {
		return fail(err)
	}
	undo.Push(func() error {
		_, err := r.runner.Run(ctx, "reset", "--hard", head)
		return err
	})
	if _, err := r.runner.Run(ctx, "commit", "--no-verify", "-m",
		fmt.Sprintf("Remove component '%s'", name)); err != nil {
		return fail(err)
	}

	// In nested mode no remote was ever registered under the component's
	// name; removal is a no-op then, keeping both modes uniform.
	remote := RemoteName(name)
	remoteURL, hasRemote, err := r.remoteURL(ctx, remote)
	if err != nil {
		return fail(err)
	}
	if hasRemote {
		if _, err := r.runner.Run(ctx, "remote", "remove", remote); err != nil {
			return fail(err)
		}
		undo.Push(func() error {
			_, err := r.runner.Run(ctx, "remote", "add", remote, remoteURL)
			return err
		})
	}

	if err := r.config.Unset(ctx, componentKeyPrefix+name); err != nil {
		return fail(err)
	}
	undo.Discard()
	return nil
}
