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

// Package cmdinfo contains the info command.
package cmdinfo

import (
	"context"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/brainvisa/git-bv/internal/docs"
	"github.com/brainvisa/git-bv/internal/util/cmdutil"
	"github.com/brainvisa/git-bv/pkg/printer"
)

// NewRunner returns a command runner.
func NewRunner(ctx context.Context, parent string) *Runner {
	r := &Runner{ctx: ctx}
	c := &cobra.Command{
		Use:   "info",
		Args:  cobra.NoArgs,
		Short: docs.InfoShort,
		Long:  docs.InfoShort + "\n" + docs.InfoLong,
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
	info, err := reg.Info(r.ctx)
	if err != nil {
		return err
	}

	out := printer.FromContextOrDie(r.ctx).OutStream()
	fmt.Fprintf(out, "Source repository: %s\n", info.Path)
	fmt.Fprintf(out, "Default branch:    %s\n", info.DefaultBranch)
	fmt.Fprintf(out, "Attach mode:       %s\n", info.Mode)

	if len(info.URLPatterns) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"PATTERN", "URL TEMPLATE"})
		for _, name := range sortedKeys(info.URLPatterns) {
			t.AppendRow(table.Row{name, info.URLPatterns[name]})
		}
		fmt.Fprintln(out)
		t.Render()
	}

	if len(info.Components) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"COMPONENT", "SOURCE", "BRANCH", "REMOTE URL"})
		names := make([]string, 0, len(info.Components))
		for name := range info.Components {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ci := info.Components[name]
			branch := ci.Source.Branch
			if branch == "" {
				branch = info.DefaultBranch + " (default)"
			}
			remote := ci.RemoteURL
			if remote == "" {
				remote = "-"
			}
			t.AppendRow(table.Row{name, ci.Source.URLOrPattern, branch, remote})
		}
		fmt.Fprintln(out)
		t.Render()
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
