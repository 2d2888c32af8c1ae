package handlers

import (
	"net/http"

	applog "flaromlab/internal/log"
	"flaromlab/models"
)

func savedFormulas(r *http.Request) ([]models.Formula, error) {
	if formulaStore == nil {
		return []models.Formula{}, nil
	}
	return formulaStore.LoadSaved(r.Context())
}

// SavedFormulas lists formulas saved through the composer.
func SavedFormulas(w http.ResponseWriter, r *http.Request) {
	formulas, err := savedFormulas(r)
	if err != nil {
		applog.Error(r.Context(), "failed to load saved formulas", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load saved formulas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": formulas, "count": len(formulas)})
}
