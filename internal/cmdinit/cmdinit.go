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

// Package cmdinit contains the init command.
package cmdinit

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
		Use:     "init [DIRECTORY]",
		Args:    cobra.MaximumNArgs(1),
		Short:   docs.InitShort,
		Long:    docs.InitShort + "\n" + docs.InitLong,
		Example: docs.InitExamples,
		RunE:    r.runE,
	}
	c.Flags().StringVarP(&r.branch, "branch", "b", "master",
		"default branch components are attached from.")
	c.Flags().StringVar(&r.mode, "mode", string(registry.AttachSubtree),
		"attachment strategy, 'subtree' or 'nested'.")
	c.Flags().BoolVar(&r.installGuard, "install-guard", false,
		"install the pre-commit hook guarding the read-only branch.")
	cmdutil.FixDocs("git-bv", parent, c)
	r.Command = c
	return r
}

func NewCommand(ctx context.Context, parent string) *cobra.Command {
	return NewRunner(ctx, parent).Command
}

// Runner contains the run function.
type Runner struct {
	ctx          context.Context
	Command      *cobra.Command
	branch       string
	mode         string
	installGuard bool
}

func (r *Runner) runE(c *cobra.Command, args []string) error {
	var reg *registry.Registry
	var err error
	if len(args) == 1 {
		reg, err = registry.New(args[0])
	} else {
		reg, err = cmdutil.RegistryForCommand(c)
	}
	if err != nil {
		return err
	}

	err = reg.Init(r.ctx, registry.InitOptions{
		DefaultBranch: r.branch,
		Mode:          registry.AttachMode(r.mode),
		InstallGuard:  r.installGuard,
	})
	if err != nil {
		return err
	}
	pr := printer.FromContextOrDie(r.ctx)
	pr.Printf("initialized source repository at %s (default branch %q)\n",
		reg.Path(), r.branch)
	return nil
}
