package handlers

import (
	"net/http"
	"strings"

	"flaromlab/internal/catalog"
	"flaromlab/internal/compare"
	applog "flaromlab/internal/log"
	"flaromlab/models"
)

type comparisonResponse struct {
	Entity  models.Entity      `json:"entity"`
	IDs     []string           `json:"ids"`
	Full    bool               `json:"full"`
	MaxSize int                `json:"max_size"`
	Items   any                `json:"items"`
	Matrix  *compare.OilMatrix `json:"matrix,omitempty"`
	Changed *bool              `json:"changed,omitempty"`
}

func comparisonKey(entity models.Entity) string {
	return "compare:" + string(entity)
}

func loadComparison(r *http.Request, entity models.Entity) compare.Set {
	if sessionManager == nil {
		return compare.Set{}
	}
	ids, _ := sessionManager.Get(r.Context(), comparisonKey(entity)).([]string)
	return compare.NewSet(ids...)
}

// comparableFormulas is the catalog formulas followed by the saved ones, the
// same listing /api/formulas serves.
func comparableFormulas(r *http.Request, snap *catalog.Snapshot) ([]models.Formula, error) {
	saved, err := savedFormulas(r)
	if err != nil {
		return nil, err
	}
	all := make([]models.Formula, 0, len(snap.Formulas)+len(saved))
	all = append(all, snap.Formulas...)
	return append(all, saved...), nil
}

func buildComparison(r *http.Request, snap *catalog.Snapshot, entity models.Entity, set compare.Set) (comparisonResponse, error) {
	resp := comparisonResponse{Entity: entity, IDs: set.IDs(), Full: set.Full(), MaxSize: compare.MaxSize}
	switch entity {
	case models.EntityOils:
		oils := compare.Resolve(set, snap.Oils, compare.OilID)
		resp.Items = oils
		if matrix, ok := compare.BuildOilMatrix(oils); ok {
			resp.Matrix = &matrix
		}
	case models.EntityMolecules:
		resp.Items = compare.Resolve(set, snap.Molecules, compare.MoleculeID)
	case models.EntityFormulas:
		formulas, err := comparableFormulas(r, snap)
		if err != nil {
			return resp, err
		}
		resp.Items = compare.Resolve(set, formulas, compare.FormulaID)
	case models.EntitySynthesis:
		resp.Items = compare.Resolve(set, snap.Synthesis, compare.SynthesisID)
	}
	return resp, nil
}

func writeComparison(w http.ResponseWriter, r *http.Request, snap *catalog.Snapshot, entity models.Entity, set compare.Set, changed *bool) {
	resp, err := buildComparison(r, snap, entity, set)
	if err != nil {
		applog.Error(r.Context(), "failed to load saved formulas", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load saved formulas")
		return
	}
	resp.Changed = changed
	if changed != nil {
		notifyHTMX(w, r, "comparison-changed")
	}
	writeJSON(w, http.StatusOK, resp)
}

func comparisonEntity(w http.ResponseWriter, r *http.Request) (models.Entity, bool) {
	entity, ok := models.ParseEntity(r.PathValue("entity"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown entity")
	}
	return entity, ok
}

// GetComparison returns the session's comparison set for an entity. Oil
// comparisons of two or more oils include a side-by-side matrix.
func GetComparison(w http.ResponseWriter, r *http.Request) {
	entity, ok := comparisonEntity(w, r)
	if !ok {
		return
	}
	snap, ok := currentSnapshot(w)
	if !ok {
		return
	}
	writeComparison(w, r, snap, entity, loadComparison(r, entity), nil)
}

// ToggleComparison adds or removes the id form value from the session's
// comparison set. A full set ignores new ids.
func ToggleComparison(w http.ResponseWriter, r *http.Request) {
	entity, ok := comparisonEntity(w, r)
	if !ok {
		return
	}
	if sessionManager == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "sessions not available")
		return
	}
	snap, ok := currentSnapshot(w)
	if !ok {
		return
	}
	input, err := readInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := strings.TrimSpace(input.Get("id"))
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	before := loadComparison(r, entity)
	after := before.Toggle(id)
	changed := after.Len() != before.Len()
	sessionManager.Put(r.Context(), comparisonKey(entity), after.IDs())
	applog.Debug(r.Context(), "comparison toggled", "entity", entity, "id", id, "size", after.Len(), "changed", changed)

	writeComparison(w, r, snap, entity, after, &changed)
}
