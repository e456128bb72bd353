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
	"os"
	"path/filepath"
	"strings"

	"github.com/brainvisa/git-bv/internal/errors"
)

// GuardHook is the pre-commit hook refusing direct commits on the
// read-only branch. It ships as inert content; Init installs it only on
// request.
const GuardHook = `#!/bin/sh
# Installed by git-bv. The '` + ReadOnlyBranch + `' branch holds curated
# component snapshots; commit on a development branch instead.
branch=$(git symbolic-ref --short -q HEAD)
if [ "$branch" = "` + ReadOnlyBranch + `" ]; then
    echo "git-bv: direct commits on '` + ReadOnlyBranch + `' are not allowed" >&2
    exit 1
fi
exit 0
`

// InstallGuardHook writes GuardHook as the repository's pre-commit hook,
// replacing any existing one.
func (r *Registry) InstallGuardHook(ctx context.Context) error {
	const op errors.Op = "registry.installGuardHook"
	if err := r.requireInitialized(op); err != nil {
		return err
	}
	rr, err := r.runner.Run(ctx, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return errors.E(op, r.dir, err)
	}
	hooksDir := strings.TrimSpace(rr.Stdout)
	if !filepath.IsAbs(hooksDir) {
		hooksDir = filepath.Join(string(r.dir), hooksDir)
	}
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return errors.E(op, r.dir, errors.IO, err)
	}
	hook := filepath.Join(hooksDir, "pre-commit")
	if err := os.WriteFile(hook, []byte(GuardHook), 0755); err != nil {
		return errors.E(op, r.dir, errors.IO, err)
	}
	return nil
}
