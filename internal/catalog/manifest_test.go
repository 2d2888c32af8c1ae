package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"flaromlab/models"
)

func TestDefaultManifestLayout(t *testing.T) {
	t.Parallel()

	m := DefaultManifest()
	molecules := m.Sources(models.EntityMolecules)
	if len(molecules) != 7 {
		t.Fatalf("expected 7 molecule shards, got %d", len(molecules))
	}
	for i, ref := range molecules {
		if ref.Entity != models.EntityMolecules {
			t.Fatalf("expected entity to be filled in, got %q", ref.Entity)
		}
		if wantRequired := i < 3; ref.Required != wantRequired {
			t.Fatalf("shard %s: expected required=%t", ref.Path, wantRequired)
		}
	}
	if got := len(m.Sources(models.EntitySynthesis)); got != 3 {
		t.Fatalf("expected 3 synthesis shards, got %d", got)
	}
}

func TestLoadManifestFromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := []byte(`
oils:
  - path: oils.json
    required: true
molecules:
  - path: molecules/a.json
  - path: molecules/b.json
    required: true
formulas: []
synthesis: []
`)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	molecules := m.Sources(models.EntityMolecules)
	if len(molecules) != 2 || molecules[1].Path != "molecules/b.json" || !molecules[1].Required || molecules[0].Required {
		t.Fatalf("unexpected molecule sources: %+v", molecules)
	}

	if _, err := LoadManifest(""); err != nil {
		t.Fatalf("empty path should select the default manifest: %v", err)
	}
	if _, err := ParseManifest([]byte("oils:\n  - required: true\n")); err == nil {
		t.Fatal("expected source without path to be rejected")
	}
}
