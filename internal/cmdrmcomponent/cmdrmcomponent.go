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

// Package cmdrmcomponent contains the rm_component command.
package cmdrmcomponent

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/brainvisa/git-bv/internal/docs"
	"github.com/brainvisa/git-bv/internal/util/cmdutil"
	"github.com/brainvisa/git-bv/pkg/printer"
)

// NewRunner returns a command runner.
func NewRunner(ctx context.Context, parent string) *Runner {
	r := &Runner{ctx: ctx}
	c := &cobra.Command{
		Use:   "rm_component NAME",
		Args:  cobra.ExactArgs(1),
		Short: docs.RmComponentShort,
		Long:  docs.RmComponentShort + "\n" + docs.RmComponentLong,
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

func (r *Runner) runE(c *cobra.Command, args []string) error {
	reg, err := cmdutil.RegistryForCommand(c)
	if err != nil {
		return err
	}
	if err := reg.RemoveComponent(r.ctx, args[0]); err != nil {
		return err
	}
	pr := printer.FromContextOrDie(r.ctx)
	pr.Printf("detached component %q\n", args[0])
	return nil
}
