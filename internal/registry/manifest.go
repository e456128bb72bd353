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
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/brainvisa/git-bv/internal/errors"
	"github.com/brainvisa/git-bv/pkg/printer"
)

// Manifest is the YAML image of a registry, used to reproduce a source
// repository layout elsewhere.
type Manifest struct {
	DefaultBranch string              `yaml:"defaultBranch"`
	URLPatterns   map[string]string   `yaml:"urlPatterns,omitempty"`
	Components    []ManifestComponent `yaml:"components,omitempty"`
}

// ManifestComponent is one component entry. Branch is omitted for
// components following the default branch.
type ManifestComponent struct {
	Name         string `yaml:"name"`
	URLOrPattern string `yaml:"url"`
	Branch       string `yaml:"branch,omitempty"`
}

// Manifest exports the registry state. Components are sorted by name so
// the output is stable.
func (r *Registry) Manifest(ctx context.Context) (*Manifest, error) {
	const op errors.Op = "registry.manifest"
	branch, err := r.DefaultBranch(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	patterns, err := r.URLPatterns(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	components, err := r.Components(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}

	m := &Manifest{
		DefaultBranch: branch,
		URLPatterns:   patterns,
	}
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		src := components[name]
		m.Components = append(m.Components, ManifestComponent{
			Name:         name,
			URLOrPattern: src.URLOrPattern,
			Branch:       src.Branch,
		})
	}
	return m, nil
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	const op errors.Op = "registry.parseManifest"
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.E(op, errors.MalformedEntry, err)
	}
	for _, c := range m.Components {
		if c.Name == "" || c.URLOrPattern == "" {
			return nil, errors.E(op, errors.MalformedEntry,
				fmt.Errorf("manifest component entries need both name and url"))
		}
	}
	return m, nil
}

// Encode renders the manifest as YAML.
func (m *Manifest) Encode() ([]byte, error) {
	const op errors.Op = "registry.encodeManifest"
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	return data, nil
}

// Apply attaches every manifest component not yet registered, adding the
// manifest's URL patterns first. Registered components and patterns are
// skipped, so Apply is safe to re-run; it stops at the first attach
// failure, which keeps that component's rollback guarantee.
func (r *Registry) Apply(ctx context.Context, m *Manifest) error {
	const op errors.Op = "registry.apply"
	if err := r.requireInitialized(op); err != nil {
		return err
	}
	pr := printer.FromContextOrDie(ctx)

	patterns, err := r.URLPatterns(ctx)
	if err != nil {
		return errors.E(op, err)
	}
	for name, template := range m.URLPatterns {
		if _, ok := patterns[name]; ok {
			continue
		}
		if err := r.AddURLPattern(ctx, name, template); err != nil {
			return errors.E(op, err)
		}
		pr.Printf("added URL pattern %q\n", name)
	}

	components, err := r.Components(ctx)
	if err != nil {
		return errors.E(op, err)
	}
	for _, c := range m.Components {
		if _, ok := components[c.Name]; ok {
			pr.Printf("component %q already attached, skipping\n", c.Name)
			continue
		}
		pr.Printf("attaching component %q\n", c.Name)
		if err := r.AddComponent(ctx, c.Name, c.URLOrPattern, c.Branch); err != nil {
			return errors.E(op, err)
		}
	}
	return nil
}
