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

package gitutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brainvisa/git-bv/internal/errors"
	. "github.com/brainvisa/git-bv/internal/gitutil"
	"github.com/brainvisa/git-bv/pkg/printer/fake"
)

func TestLocalGitRunner(t *testing.T) {
	testCases := map[string]struct {
		command        string
		args           []string
		expectedStdout string
		expectedErr    *GitExecError
	}{
		"successful command with output to stdout": {
			command:        "branch",
			args:           []string{"--show-current"},
			expectedStdout: "main",
		},
		"failed command with output to stderr": {
			command: "checkout",
			args:    []string{"does-not-exist"},
			expectedErr: &GitExecError{
				StdOut: "",
				StdErr: "error: pathspec 'does-not-exist' did not match any file(s) known to git",
			},
		},
	}

	for tn, tc := range testCases {
		t.Run(tn, func(t *testing.T) {
			dir := t.TempDir()

			runner, err := NewLocalGitRunner(dir)
			if !assert.NoError(t, err) {
				t.FailNow()
			}
			ctx := fake.CtxWithDefaultPrinter()
			_, err = runner.Run(ctx, "init")
			if !assert.NoError(t, err) {
				t.FailNow()
			}
			_, err = runner.Run(ctx, "checkout", "-b", "main")
			if !assert.NoError(t, err) {
				t.FailNow()
			}

			rr, err := runner.Run(ctx, append([]string{tc.command}, tc.args...)...)
			if tc.expectedErr != nil {
				var gitExecError *GitExecError
				if !errors.As(err, &gitExecError) {
					t.Error("expected error of type *GitExecError")
					t.FailNow()
				}
				assert.Equal(t, tc.expectedErr.StdOut, strings.TrimSpace(gitExecError.StdOut))
				assert.Equal(t, tc.expectedErr.StdErr, strings.TrimSpace(gitExecError.StdErr))
				assert.Equal(t, 1, gitExecError.ExitCode())
				return
			}

			if !assert.NoError(t, err) {
				t.FailNow()
			}

			assert.Equal(t, tc.expectedStdout, strings.TrimSpace(rr.Stdout))
		})
	}
}
