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

// Package cmdaddcomponent contains the add_component command.
package cmdaddcomponent

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/brainvisa/git-bv/internal/docs"
	"github.com/brainvisa/git-bv/internal/registry"
	"github.com/brainvisa/git-bv/internal/util/cmdutil"
	"github.com/brainvisa/git-bv/pkg/printer"
)

// NewRunner returns a command runner.
func NewRunner(ctx context.Context, parent string) *Runner {
	r := &Runner{ctx: ctx}
	c := &cobra.Command{
		Use:     "add_component NAME [URL_OR_PATTERN] [BRANCH]",
		Args:    cobra.RangeArgs(1, 3),
		Short:   docs.AddComponentShort,
		Long:    docs.AddComponentShort + "\n" + docs.AddComponentLong,
		Example: docs.AddComponentExamples,
		RunE:    r.runE,
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

func (r *Runner) runE(c *cobra.Command, args []string) error {
	name := args[0]
	urlOrPattern := registry.BuiltinPatternName
	if len(args) > 1 {
		urlOrPattern = args[1]
	}
	branch := ""
	if len(args) > 2 {
		branch = args[2]
	}

	reg, err := cmdutil.RegistryForCommand(c)
	if err != nil {
		return err
	}
	if err := reg.AddComponent(r.ctx, name, urlOrPattern, branch); err != nil {
		return err
	}
	pr := printer.FromContextOrDie(r.ctx)
	pr.Printf("attached component %q\n", name)
	return nil
}
