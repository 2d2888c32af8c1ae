package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	applog "flaromlab/internal/log"
	"flaromlab/models"
)

// Snapshot is an immutable view of every collection after one reload.
// Callers must not modify the slices.
type Snapshot struct {
	Oils      []models.Oil
	Molecules []models.Molecule
	Formulas  []models.Formula
	Synthesis []models.SynthesisEntry
	Status    map[models.Entity]Status
	LoadedAt  time.Time

	index *MoleculeIndex
}

// MoleculeIndex returns the id lookup over Molecules.
func (s *Snapshot) MoleculeIndex() *MoleculeIndex {
	if s.index == nil {
		return NewMoleculeIndex(s.Molecules)
	}
	return s.index
}

// StatusOf reports the load status of entity.
func (s *Snapshot) StatusOf(entity models.Entity) Status {
	if status, ok := s.Status[entity]; ok {
		return status
	}
	return Status{Unavailable: true, Reason: "not loaded"}
}

// Catalog holds the current snapshot. Reload replaces it wholesale.
type Catalog struct {
	mu       sync.RWMutex
	loader   *Loader
	manifest Manifest
	snapshot *Snapshot
}

// New returns a Catalog with an empty snapshot. Call Reload to populate it.
func New(loader *Loader, manifest Manifest) *Catalog {
	empty := &Snapshot{Status: map[models.Entity]Status{}}
	for _, entity := range models.Entities() {
		empty.Status[entity] = Status{Unavailable: true, Reason: "not loaded"}
	}
	empty.index = NewMoleculeIndex(nil)
	return &Catalog{loader: loader, manifest: manifest, snapshot: empty}
}

// NewFromSnapshot returns a Catalog serving fixed collections. Useful for tests
// and offline tools.
func NewFromSnapshot(snapshot *Snapshot) *Catalog {
	if snapshot.Status == nil {
		snapshot.Status = map[models.Entity]Status{}
		for _, entity := range models.Entities() {
			snapshot.Status[entity] = Status{Loaded: 1, Sources: 1}
		}
	}
	snapshot.index = NewMoleculeIndex(snapshot.Molecules)
	return &Catalog{snapshot: snapshot}
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Reload loads every entity concurrently and swaps the snapshot once all of
// them have resolved. Concurrent reloads are allowed; the last to finish wins.
func (c *Catalog) Reload(ctx context.Context) *Snapshot {
	if c.loader == nil {
		return c.Snapshot()
	}

	next := &Snapshot{Status: make(map[models.Entity]Status, 4)}
	var (
		oils      Collection[models.Oil]
		molecules Collection[models.Molecule]
		formulas  Collection[models.Formula]
		synthesis Collection[models.SynthesisEntry]
	)

	var g errgroup.Group
	g.Go(func() error {
		oils = LoadCollection(ctx, c.loader, c.manifest.Sources(models.EntityOils), DecodeOils)
		return nil
	})
	g.Go(func() error {
		molecules = LoadCollection(ctx, c.loader, c.manifest.Sources(models.EntityMolecules), DecodeMolecules)
		return nil
	})
	g.Go(func() error {
		formulas = LoadCollection(ctx, c.loader, c.manifest.Sources(models.EntityFormulas), DecodeFormulas)
		return nil
	})
	g.Go(func() error {
		synthesis = LoadCollection(ctx, c.loader, c.manifest.Sources(models.EntitySynthesis), DecodeSynthesis)
		return nil
	})
	_ = g.Wait()

	next.Oils, next.Status[models.EntityOils] = oils.Items, oils.Status
	next.Molecules, next.Status[models.EntityMolecules] = molecules.Items, molecules.Status
	next.Formulas, next.Status[models.EntityFormulas] = formulas.Items, formulas.Status
	next.Synthesis, next.Status[models.EntitySynthesis] = synthesis.Items, synthesis.Status
	next.LoadedAt = time.Now().UTC()
	next.index = NewMoleculeIndex(next.Molecules)

	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()

	for _, entity := range models.Entities() {
		status := next.Status[entity]
		if status.Unavailable {
			applog.Warn(ctx, "catalog entity unavailable", "entity", entity, "reason", status.Reason)
			continue
		}
		applog.Info(ctx, "catalog entity loaded", "entity", entity, "records", status.Records, "shards", status.Loaded, "failed", len(status.Failed))
	}
	return next
}

// MoleculeIndex resolves molecule ids. When an id appears more than once the
// first occurrence wins.
type MoleculeIndex struct {
	byID map[string]int
	list []models.Molecule
}

// NewMoleculeIndex indexes molecules by id.
func NewMoleculeIndex(molecules []models.Molecule) *MoleculeIndex {
	idx := &MoleculeIndex{byID: make(map[string]int, len(molecules)), list: molecules}
	for i, molecule := range molecules {
		if molecule.ID == "" {
			continue
		}
		if _, exists := idx.byID[molecule.ID]; !exists {
			idx.byID[molecule.ID] = i
		}
	}
	return idx
}

// Lookup returns the molecule with id.
func (idx *MoleculeIndex) Lookup(id string) (models.Molecule, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return models.Molecule{}, false
	}
	return idx.list[i], true
}

// Name returns the molecule's name, or id itself when the molecule is unknown.
func (idx *MoleculeIndex) Name(id string) string {
	if molecule, ok := idx.Lookup(id); ok && molecule.Name != "" {
		return molecule.Name
	}
	return id
}

// Molecules returns the indexed list in catalog order.
func (idx *MoleculeIndex) Molecules() []models.Molecule { return idx.list }

// Len reports the number of distinct ids.
func (idx *MoleculeIndex) Len() int { return len(idx.byID) }
