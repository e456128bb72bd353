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

// Package cmdtree contains the tree command.
package cmdtree

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/brainvisa/git-bv/internal/docs"
	"github.com/brainvisa/git-bv/internal/util/cmdutil"
	"github.com/brainvisa/git-bv/pkg/printer"
)

// NewRunner returns a command runner.
func NewRunner(ctx context.Context, parent string) *Runner {
	r := &Runner{ctx: ctx}
	c := &cobra.Command{
		Use:   "tree",
		Args:  cobra.NoArgs,
		Short: docs.TreeShort,
		Long:  docs.TreeShort + "\n" + docs.TreeLong,
		RunE:  r.runE,
	}
	cmdutil.FixDocs("git-bv", parent, c)
	r.Command = c
	return r
}

func NewCommand(ctx context.Context, parent string) *cobra.Command {
	return NewRunner(ctx, parent).Command
}

// Runner contains the run function.
type Runner struct {
	ctx     context.Context
	Command *cobra.Command
}

func (r *Runner) runE(c *cobra.Command, _ []string) error {
	reg, err := cmdutil.RegistryForCommand(c)
	if err != nil {
		return err
	}
	components, err := reg.Components(r.ctx)
	if err != nil {
		return err
	}
	branch, err := reg.DefaultBranch(r.ctx)
	if err != nil {
		return err
	}

	root := treeprint.NewWithRoot(string(reg.Path()))
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		src := components[name]
		b := src.Branch
		if b == "" {
			b = branch
		}
		root.AddNode(fmt.Sprintf("%s (%s @ %s)", name, src.URLOrPattern, b))
	}

	out := printer.FromContextOrDie(r.ctx).OutStream()
	fmt.Fprint(out, root.String())
	return nil
}
