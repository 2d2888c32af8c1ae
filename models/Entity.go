package models

import "strings"

// Entity names one of the catalog collections.
type Entity string

const (
	EntityOils      Entity = "oils"
	EntityMolecules Entity = "molecules"
	EntityFormulas  Entity = "formulas"
	EntitySynthesis Entity = "synthesis"
)

// Entities lists every catalog collection in load order.
func Entities() []Entity {
	return []Entity{EntityOils, EntityMolecules, EntityFormulas, EntitySynthesis}
}

// ParseEntity normalises value into a known Entity.
func ParseEntity(value string) (Entity, bool) {
	candidate := Entity(strings.ToLower(strings.TrimSpace(value)))
	for _, entity := range Entities() {
		if candidate == entity {
			return entity, true
		}
	}
	return "", false
}
