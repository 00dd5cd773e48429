// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Manifest describes a merge job in YAML:
//
//	inputs:
//	  - cover.png
//	  - body.docx
//	  - appendix.pdf
//	output: merged.pdf
type Manifest struct {
	Inputs []string `yaml:"inputs"`
	Output string   `yaml:"output,omitempty"`
}

// LoadManifest reads a manifest file. Relative input and output paths are
// resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, in := range m.Inputs {
		m.Inputs[i] = resolve(base, in)
	}
	if m.Output != "" {
		m.Output = resolve(base, m.Output)
	}
	return &m, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// SelectInputs returns the manifest inputs. An empty list is a cancellation.
func (m *Manifest) SelectInputs(context.Context) ([]string, error) {
	return append([]string(nil), m.Inputs...), nil
}

// SelectOutput returns the manifest output, or defaultName when the
// manifest names none.
func (m *Manifest) SelectOutput(ctx context.Context, defaultName string) (string, error) {
	return Static{Output: m.Output}.SelectOutput(ctx, defaultName)
}
