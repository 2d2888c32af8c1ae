package handlers

import (
	"net/http"

	"flaromlab/internal/catalog"
	"flaromlab/internal/filter"
	applog "flaromlab/internal/log"
	"flaromlab/models"
)

type listResponse[T any] struct {
	Items  []T            `json:"items"`
	Count  int            `json:"count"`
	Total  int            `json:"total"`
	Saved  int            `json:"saved,omitempty"`
	Status catalog.Status `json:"status"`
}

func currentSnapshot(w http.ResponseWriter) (*catalog.Snapshot, bool) {
	if catalogSource == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "catalog not available")
		return nil, false
	}
	return catalogSource.Snapshot(), true
}

// available writes a 503 with the reason when entity has no data.
func available(w http.ResponseWriter, r *http.Request, snap *catalog.Snapshot, entity models.Entity) (catalog.Status, bool) {
	status := snap.StatusOf(entity)
	if err := status.Err(); err != nil {
		applog.Warn(r.Context(), "catalog entity requested while unavailable", "entity", entity, "reason", status.Reason)
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return status, false
	}
	return status, true
}

func writeFiltered[T any](w http.ResponseWriter, r *http.Request, entity models.Entity, items []T, fields filter.Fields[T], status catalog.Status) {
	criteria, err := filter.FromQuery(r.URL.Query(), entity)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := filter.Apply(items, fields, criteria)
	writeJSON(w, http.StatusOK, listResponse[T]{
		Items:  result,
		Count:  len(result),
		Total:  len(items),
		Status: status,
	})
}

// ListOils serves the oils collection filtered by q, family, price and synthesis.
func ListOils(w http.ResponseWriter, r *http.Request) {
	snap, ok := currentSnapshot(w)
	if !ok {
		return
	}
	status, ok := available(w, r, snap, models.EntityOils)
	if !ok {
		return
	}
	writeFiltered(w, r, models.EntityOils, snap.Oils, filter.OilFields, status)
}

// ListMolecules serves the molecules collection filtered by q and category.
func ListMolecules(w http.ResponseWriter, r *http.Request) {
	snap, ok := currentSnapshot(w)
	if !ok {
		return
	}
	status, ok := available(w, r, snap, models.EntityMolecules)
	if !ok {
		return
	}
	writeFiltered(w, r, models.EntityMolecules, snap.Molecules, filter.MoleculeFields, status)
}

// ListSynthesis serves the synthesis routes filtered by q and category.
func ListSynthesis(w http.ResponseWriter, r *http.Request) {
	snap, ok := currentSnapshot(w)
	if !ok {
		return
	}
	status, ok := available(w, r, snap, models.EntitySynthesis)
	if !ok {
		return
	}
	writeFiltered(w, r, models.EntitySynthesis, snap.Synthesis, filter.SynthesisFields, status)
}

// ListFormulas serves catalog formulas followed by saved formulas, filtered
// by q, category and band. Saved formulas keep the endpoint usable when the
// catalog shard is missing.
func ListFormulas(w http.ResponseWriter, r *http.Request) {
	snap, ok := currentSnapshot(w)
	if !ok {
		return
	}
	saved, err := savedFormulas(r)
	if err != nil {
		applog.Error(r.Context(), "failed to load saved formulas", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load saved formulas")
		return
	}

	status := snap.StatusOf(models.EntityFormulas)
	if status.Unavailable && len(saved) == 0 {
		writeJSONError(w, http.StatusServiceUnavailable, status.Err().Error())
		return
	}

	all := make([]models.Formula, 0, len(snap.Formulas)+len(saved))
	all = append(all, snap.Formulas...)
	all = append(all, saved...)

	criteria, err := filter.FromQuery(r.URL.Query(), models.EntityFormulas)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := filter.Apply(all, filter.FormulaFields, criteria)
	writeJSON(w, http.StatusOK, listResponse[models.Formula]{
		Items:  result,
		Count:  len(result),
		Total:  len(all),
		Saved:  len(saved),
		Status: status,
	})
}

// FilterOptions lists the selectable values for each filter of an entity.
func FilterOptions(w http.ResponseWriter, r *http.Request) {
	entity, ok := models.ParseEntity(r.PathValue("entity"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown entity")
		return
	}
	snap, ok := currentSnapshot(w)
	if !ok {
		return
	}

	options := map[string][]string{}
	switch entity {
	case models.EntityOils:
		options["family"] = filter.DistinctValues(snap.Oils, func(o models.Oil) string { return o.Family })
		options["price"] = filter.OilPriceLevels
		options["synthesis"] = filter.SynthesisLevels
	case models.EntityMolecules:
		options["category"] = filter.DistinctValues(snap.Molecules, func(m models.Molecule) string { return m.Category })
	case models.EntityFormulas:
		options["category"] = filter.DistinctValues(snap.Formulas, func(f models.Formula) string { return f.Category })
		options["band"] = filter.PriceBands
	case models.EntitySynthesis:
		options["category"] = filter.DistinctValues(snap.Synthesis, func(s models.SynthesisEntry) string { return s.Category })
	}
	writeJSON(w, http.StatusOK, map[string]any{"entity": entity, "options": options})
}
