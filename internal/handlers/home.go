package handlers

import (
	"net/http"

	applog "flaromlab/internal/log"
	"flaromlab/internal/views/pages"
	"flaromlab/internal/views/theme"
)

// Home renders the catalog dashboard using templ components.
func Home(w http.ResponseWriter, r *http.Request) {
	view := pages.DashboardView{Palette: theme.Resolve(r.URL.Query().Get("theme"))}
	if catalogSource != nil {
		snap := catalogSource.Snapshot()
		view.Status = snap.Status
		view.LoadedAt = snap.LoadedAt
		view.Dashboard, _, view.Available = buildDashboard(r, snap)
	}
	if saved, err := savedFormulas(r); err != nil {
		applog.Warn(r.Context(), "saved formulas unavailable for dashboard", "error", err)
	} else {
		view.Saved = saved
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Dashboard(view).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
