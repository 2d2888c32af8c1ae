package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"flaromlab/models"
)

// Manifest lists the shards that make up each entity's dataset.
type Manifest struct {
	Oils      []SourceRef `yaml:"oils"`
	Molecules []SourceRef `yaml:"molecules"`
	Formulas  []SourceRef `yaml:"formulas"`
	Synthesis []SourceRef `yaml:"synthesis"`
}

// DefaultManifest mirrors the published dataset layout.
func DefaultManifest() Manifest {
	m := Manifest{
		Oils:     []SourceRef{{Path: "oils.json", Required: true}},
		Formulas: []SourceRef{{Path: "formulas.json", Required: true}},
	}
	for i := 1; i <= 3; i++ {
		m.Molecules = append(m.Molecules, SourceRef{Path: fmt.Sprintf("molecules_part%d.json", i), Required: true})
	}
	for i := 4; i <= 7; i++ {
		m.Molecules = append(m.Molecules, SourceRef{Path: fmt.Sprintf("molecules_part%d_expanded.json", i)})
	}
	for i := 1; i <= 3; i++ {
		m.Synthesis = append(m.Synthesis, SourceRef{Path: fmt.Sprintf("synthesis_part%d.json", i), Required: true})
	}
	return m
}

// LoadManifest reads a YAML manifest from path. An empty path yields DefaultManifest.
func LoadManifest(path string) (Manifest, error) {
	if path == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest document.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	for _, entity := range models.Entities() {
		for _, ref := range m.Sources(entity) {
			if ref.Path == "" {
				return Manifest{}, fmt.Errorf("manifest: %s source without path", entity)
			}
		}
	}
	return m, nil
}

// Sources returns the shards of entity with Entity filled in.
func (m Manifest) Sources(entity models.Entity) []SourceRef {
	var refs []SourceRef
	switch entity {
	case models.EntityOils:
		refs = m.Oils
	case models.EntityMolecules:
		refs = m.Molecules
	case models.EntityFormulas:
		refs = m.Formulas
	case models.EntitySynthesis:
		refs = m.Synthesis
	}
	out := make([]SourceRef, len(refs))
	for i, ref := range refs {
		ref.Entity = entity
		out[i] = ref
	}
	return out
}
