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
	"bufio"
	"context"
	"regexp"
	"strings"

	"github.com/brainvisa/git-bv/internal/errors"
	"github.com/brainvisa/git-bv/internal/gitutil"
)

// configStore is the registry's persistence layer: the repository-local git
// config, exposed as a flat key-value store with get/set/unset and
// list-by-prefix.
//
// git config exits non-zero when asked for a key or a namespace that is not
// set. The store translates that into absence (empty result, no error), as
// "not configured" is the normal case for optional keys. Every other git
// failure propagates.
type configStore struct {
	runner *gitutil.GitLocalRunner
}

// Get returns the value for key and whether the key is set.
func (c *configStore) Get(ctx context.Context, key string) (string, bool, error) {
	const op errors.Op = "config.Get"
	rr, err := c.runner.Run(ctx, "config", "--local", "--get", key)
	if err != nil {
		if isConfigAbsence(err) {
			return "", false, nil
		}
		return "", false, errors.E(op, err)
	}
	return strings.TrimSpace(rr.Stdout), true, nil
}

// Set writes the value for key, replacing any previous value.
func (c *configStore) Set(ctx context.Context, key, value string) error {
	const op errors.Op = "config.Set"
	if _, err := c.runner.Run(ctx, "config", "--local", key, value); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// Unset removes key. Removing an absent key is a no-op.
func (c *configStore) Unset(ctx context.Context, key string) error {
	const op errors.Op = "config.Unset"
	if _, err := c.runner.Run(ctx, "config", "--local", "--unset", key); err != nil {
		if isConfigAbsence(err) {
			return nil
		}
		return errors.E(op, err)
	}
	return nil
}

// ListPrefix returns all keys under the given dotted prefix, mapped to
// their values with the prefix stripped. An absent namespace yields an
// empty map.
func (c *configStore) ListPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	const op errors.Op = "config.ListPrefix"
	re := "^" + regexp.QuoteMeta(prefix)
	rr, err := c.runner.Run(ctx, "config", "--local", "--get-regexp", re)
	if err != nil {
		if isConfigAbsence(err) {
			return map[string]string{}, nil
		}
		return nil, errors.E(op, err)
	}

	entries := map[string]string{}
	scanner := bufio.NewScanner(strings.NewReader(rr.Stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		entries[strings.TrimPrefix(key, prefix)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	return entries, nil
}

// isConfigAbsence reports whether err is git config signalling a missing
// key or section. git config uses exit code 1 for "nothing matched" and 5
// for unsetting an option that does not exist.
func isConfigAbsence(err error) bool {
	var execErr *gitutil.GitExecError
	if !errors.As(err, &execErr) {
		return false
	}
	code := execErr.ExitCode()
	return code == 1 || code == 5
}
