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

// undoStack collects compensating actions for a compound operation. Each
// forward step that succeeds pushes the action that reverses it; when a
// later step fails, Rollback runs the stack in reverse order so the
// operation leaves no partial state behind.
type undoStack struct {
	actions []func() error
}

// Push records the compensation for a step that just succeeded.
func (u *undoStack) Push(action func() error) {
	u.actions = append(u.actions, action)
}

// Rollback runs the recorded compensations, most recent first. Rollback is
// best effort: a failing compensation does not stop the remaining ones, and
// the first compensation failure is returned so callers can report it
// alongside the original error.
func (u *undoStack) Rollback() error {
	var firstErr error
	for i := len(u.actions) - 1; i >= 0; i-- {
		if err := u.actions[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	u.actions = nil
	return firstErr
}

// Discard drops the recorded compensations. Called once the compound
// operation has fully committed.
func (u *undoStack) Discard() {
	u.actions = nil
}
