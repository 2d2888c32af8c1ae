package handlers

import (
	"github.com/alexedwards/scs/v2"

	"flaromlab/internal/catalog"
	"flaromlab/internal/composer"
	"flaromlab/internal/formulastore"
	"flaromlab/internal/metrics"
)

// Dependencies are the shared services used by the HTTP handlers.
type Dependencies struct {
	Sessions *scs.SessionManager
	Catalog  *catalog.Catalog
	Formulas *formulastore.Store
	Metrics  *metrics.Recorder
	Markup   float64
}

var (
	sessionManager *scs.SessionManager
	catalogSource  *catalog.Catalog
	formulaStore   *formulastore.Store
	recorder       *metrics.Recorder
	markup         = composer.DefaultMarkup
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(deps Dependencies) {
	sessionManager = deps.Sessions
	catalogSource = deps.Catalog
	formulaStore = deps.Formulas
	recorder = deps.Metrics
	markup = composer.DefaultMarkup
	if deps.Markup > 0 {
		markup = deps.Markup
	}
}
