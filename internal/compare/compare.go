// Package compare tracks the small set of records a user has picked for a
// side-by-side view.
package compare

import (
	"slices"
	"strings"

	"flaromlab/models"
)

// MaxSize is the most records a Set can hold.
const MaxSize = 5

// Set is an ordered selection of record ids. The zero value is empty.
type Set struct {
	ids []string
}

// NewSet builds a Set from ids, dropping blanks and duplicates and keeping
// at most MaxSize entries.
func NewSet(ids ...string) Set {
	var s Set
	for _, id := range ids {
		if !s.Contains(id) {
			s = s.Toggle(id)
		}
	}
	return s
}

// Toggle removes id when present and appends it when absent and there is
// room. A full set ignores new ids. The receiver is not modified.
func (s Set) Toggle(id string) Set {
	id = strings.TrimSpace(id)
	if id == "" {
		return s
	}
	if i := slices.Index(s.ids, id); i >= 0 {
		return Set{ids: slices.Delete(slices.Clone(s.ids), i, i+1)}
	}
	if len(s.ids) >= MaxSize {
		return s
	}
	return Set{ids: append(slices.Clone(s.ids), id)}
}

func (s Set) Contains(id string) bool { return slices.Contains(s.ids, strings.TrimSpace(id)) }

func (s Set) Len() int { return len(s.ids) }

// Full reports whether new ids would be ignored.
func (s Set) Full() bool { return len(s.ids) >= MaxSize }

// IDs returns a copy of the selection in insertion order.
func (s Set) IDs() []string { return slices.Clone(s.ids) }

// Resolve returns the records whose identity is in s, in selection order.
// Ids missing from items are skipped; the first record with a given identity wins.
func Resolve[T any](s Set, items []T, identity func(T) string) []T {
	byID := make(map[string]int, len(items))
	for i, item := range items {
		if _, ok := byID[identity(item)]; !ok {
			byID[identity(item)] = i
		}
	}
	out := make([]T, 0, len(s.ids))
	for _, id := range s.ids {
		if i, ok := byID[id]; ok {
			out = append(out, items[i])
		}
	}
	return out
}

// Identity functions for the catalog entities.
func OilID(o models.Oil) string                  { return o.Name }
func MoleculeID(m models.Molecule) string        { return m.ID }
func FormulaID(f models.Formula) string          { return f.ID }
func SynthesisID(s models.SynthesisEntry) string { return s.ID }
