package handlers

import (
	"net/http"

	"flaromlab/internal/analytics"
	"flaromlab/internal/catalog"
	applog "flaromlab/internal/log"
	"flaromlab/models"
)

type analyticsResponse struct {
	analytics.Dashboard
	SavedFormulas int                              `json:"saved_formulas"`
	Status        map[models.Entity]catalog.Status `json:"status"`
}

// buildDashboard aggregates catalog and saved formulas. It reports false
// when neither formulas nor molecules are available.
func buildDashboard(r *http.Request, snap *catalog.Snapshot) (analytics.Dashboard, int, bool) {
	saved, err := savedFormulas(r)
	if err != nil {
		applog.Warn(r.Context(), "saved formulas left out of analytics", "error", err)
		saved = nil
	}
	formulas := make([]models.Formula, 0, len(snap.Formulas)+len(saved))
	formulas = append(formulas, snap.Formulas...)
	formulas = append(formulas, saved...)

	if len(formulas) == 0 && snap.StatusOf(models.EntityMolecules).Unavailable {
		return analytics.Dashboard{}, len(saved), false
	}
	return analytics.BuildDashboard(formulas, snap.MoleculeIndex()), len(saved), true
}

// Analytics serves the catalog dashboard: totals, category breakdown, top
// molecules and insights.
func Analytics(w http.ResponseWriter, r *http.Request) {
	snap, ok := currentSnapshot(w)
	if !ok {
		return
	}
	dashboard, saved, ok := buildDashboard(r, snap)
	if !ok {
		writeJSONError(w, http.StatusServiceUnavailable, catalog.ErrNoData.Error())
		return
	}
	writeJSON(w, http.StatusOK, analyticsResponse{
		Dashboard:     dashboard,
		SavedFormulas: saved,
		Status:        snap.Status,
	})
}
