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

// Package cmdapply contains the apply command.
package cmdapply

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/brainvisa/git-bv/internal/docs"
	"github.com/brainvisa/git-bv/internal/registry"
	"github.com/brainvisa/git-bv/internal/util/cmdutil"
)

// NewRunner returns a command runner.
func NewRunner(ctx context.Context, parent string) *Runner {
	r := &Runner{ctx: ctx}
	c := &cobra.Command{
		Use:   "apply MANIFEST",
		Args:  cobra.ExactArgs(1),
		Short: docs.ApplyShort,
		Long:  docs.ApplyShort + "\n" + docs.ApplyLong,
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
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	m, err := registry.ParseManifest(data)
	if err != nil {
		return err
	}
	reg, err := cmdutil.RegistryForCommand(c)
	if err != nil {
		return err
	}
	return reg.Apply(r.ctx, m)
}
