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

package cmdutil

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/brainvisa/git-bv/internal/registry"
)

// RepoDirFlag is the persistent flag selecting the source repository
// directory, mirroring git's -C.
const RepoDirFlag = "directory"

// FixDocs replaces instances of old with new in the docs for c
func FixDocs(old, new string, c *cobra.Command) {
	c.Use = strings.ReplaceAll(c.Use, old, new)
	c.Short = strings.ReplaceAll(c.Short, old, new)
	c.Long = strings.ReplaceAll(c.Long, old, new)
	c.Example = strings.ReplaceAll(c.Example, old, new)
}

// RegistryForCommand returns the Registry for the repository selected by
// the persistent --directory flag, defaulting to the working directory.
func RegistryForCommand(c *cobra.Command) (*registry.Registry, error) {
	dir := "."
	if f := c.Flags().Lookup(RepoDirFlag); f != nil && f.Value.String() != "" {
		dir = f.Value.String()
	}
	return registry.New(dir)
}
