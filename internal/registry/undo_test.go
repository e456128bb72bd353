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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUndoStackRunsInReverseOrder(t *testing.T) {
	var order []string
	u := &undoStack{}
	u.Push(func() error { order = append(order, "first"); return nil })
	u.Push(func() error { order = append(order, "second"); return nil })

	assert.NoError(t, u.Rollback())
	assert.Equal(t, []string{"second", "first"}, order)

	// the stack is drained after a rollback
	assert.NoError(t, u.Rollback())
	assert.Len(t, order, 2)
}

func TestUndoStackKeepsGoingOnFailure(t *testing.T) {
	var ran []int
	u := &undoStack{}
	u.Push(func() error { ran = append(ran, 1); return nil })
	u.Push(func() error { return fmt.Errorf("compensation 2 failed") })
	u.Push(func() error { ran = append(ran, 3); return fmt.Errorf("compensation 3 failed") })

	err := u.Rollback()
	assert.ErrorContains(t, err, "compensation 3 failed")
	assert.Equal(t, []int{3, 1}, ran)
}

func TestUndoStackDiscard(t *testing.T) {
	ran := false
	u := &undoStack{}
	u.Push(func() error { ran = true; return nil })
	u.Discard()
	assert.NoError(t, u.Rollback())
	assert.False(t, ran)
}
