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

// Package commands assembles the git-bv command tree.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/brainvisa/git-bv/internal/cmdaddcomponent"
	"github.com/brainvisa/git-bv/internal/cmdaddurl"
	"github.com/brainvisa/git-bv/internal/cmdapply"
	"github.com/brainvisa/git-bv/internal/cmdinfo"
	"github.com/brainvisa/git-bv/internal/cmdinit"
	"github.com/brainvisa/git-bv/internal/cmdmanifest"
	"github.com/brainvisa/git-bv/internal/cmdrmcomponent"
	"github.com/brainvisa/git-bv/internal/cmdrmurl"
	"github.com/brainvisa/git-bv/internal/cmdtree"
	"github.com/brainvisa/git-bv/internal/docs"
	"github.com/brainvisa/git-bv/internal/util/cmdutil"
)

// GetMain returns the root git-bv command with every subcommand attached.
// The command tree is built explicitly here; there is no self-registration.
func GetMain(ctx context.Context) *cobra.Command {
	const name = "git-bv"
	cmd := &cobra.Command{
		Use:           name,
		Short:         docs.RootShort,
		Long:          docs.RootShort + "\n" + docs.RootLong,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(c *cobra.Command, _ []string) error {
			return c.Help()
		},
	}
	cmd.PersistentFlags().StringP(cmdutil.RepoDirFlag, "C", "",
		"run as if git-bv was started in DIRECTORY.")

	cmd.AddCommand(
		cmdinit.NewCommand(ctx, name),
		cmdinfo.NewCommand(ctx, name),
		cmdaddurl.NewCommand(ctx, name),
		cmdrmurl.NewCommand(ctx, name),
		cmdaddcomponent.NewCommand(ctx, name),
		cmdrmcomponent.NewCommand(ctx, name),
		cmdtree.NewCommand(ctx, name),
		cmdmanifest.NewCommand(ctx, name),
		cmdapply.NewCommand(ctx, name),
	)
	return cmd
}
