package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"flaromlab/internal/blob"
	"flaromlab/internal/catalog"
	"flaromlab/internal/formulastore"
	"flaromlab/internal/metrics"
	"flaromlab/models"
)

func price(v float64) *float64 { return &v }

func fixtureSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Oils: []models.Oil{
			{Name: "Rose Otto", LatinName: "Rosa damascena", Family: "ROSACEAE", Origin: "Bulgaria", PriceRange: "Very High", SynthesisOpportunity: "Low",
				Components: map[string]float64{"Citronellol": 38, "Geraniol": 18}},
			{Name: "Lavender", LatinName: "Lavandula angustifolia", Family: "LAMIACEAE", Origin: "France", PriceRange: "Low", SynthesisOpportunity: "High",
				Components: map[string]float64{"Linalool": 35, "Linalyl acetate": 30}},
		},
		Molecules: []models.Molecule{
			{ID: "M1", Name: "Linalool", CAS: "78-70-6", Category: "Floral", PriceUSDPerKg: price(100)},
			{ID: "M2", Name: "Vanillin", CAS: "121-33-5", Category: "Gourmand", PriceUSDPerKg: price(50)},
			{ID: "M3", Name: "Iso E Super", CAS: "54464-57-2", Category: "Woody", PriceUSDPerKg: price(30)},
		},
		Formulas: []models.Formula{
			{ID: "F1", Name: "Morning Dew", Category: "Floral", CostPerLiter: 20, RetailPerLiter: 130,
				Components: []models.FormulaComponent{{MoleculeID: "M1", Percent: 100}}},
			{ID: "F2", Name: "Cedar Smoke", Category: "Woody", CostPerLiter: 80, RetailPerLiter: 520,
				Components: []models.FormulaComponent{{MoleculeID: "M3", Percent: 60}, {MoleculeID: "M1", Percent: 40}}},
		},
		Synthesis: []models.SynthesisEntry{{ID: "M1", Name: "Linalool", Category: "Terpene"}},
	}
}

// withDeps installs deps for the duration of the test. Tests using it must
// not run in parallel.
func withDeps(t *testing.T, deps Dependencies) {
	t.Helper()
	previous := Dependencies{Sessions: sessionManager, Catalog: catalogSource, Formulas: formulaStore, Metrics: recorder, Markup: markup}
	Configure(deps)
	t.Cleanup(func() { Configure(previous) })
}

func fixtureDeps() Dependencies {
	return Dependencies{
		Sessions: scs.New(),
		Catalog:  catalog.NewFromSnapshot(fixtureSnapshot()),
		Formulas: formulastore.New(blob.NewMemory(), formulastore.DefaultKey),
		Metrics:  metrics.New(),
	}
}

// client replays session cookies between requests.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T) *client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", Home)
	mux.HandleFunc("GET /api/oils", ListOils)
	mux.HandleFunc("GET /api/molecules", ListMolecules)
	mux.HandleFunc("GET /api/formulas", ListFormulas)
	mux.HandleFunc("GET /api/formulas/saved", SavedFormulas)
	mux.HandleFunc("GET /api/synthesis", ListSynthesis)
	mux.HandleFunc("GET /api/filters/{entity}", FilterOptions)
	mux.HandleFunc("GET /api/compare/{entity}", GetComparison)
	mux.HandleFunc("POST /api/compare/{entity}/toggle", ToggleComparison)
	mux.HandleFunc("GET /api/composer", GetComposer)
	mux.HandleFunc("PUT /api/composer", UpdateComposer)
	mux.HandleFunc("POST /api/composer/components", AddComponent)
	mux.HandleFunc("DELETE /api/composer/components/{index}", RemoveComponent)
	mux.HandleFunc("POST /api/composer/save", SaveComposer)
	mux.HandleFunc("POST /api/composer/reset", ResetComposer)
	mux.HandleFunc("GET /api/analytics", Analytics)

	var handler http.Handler = mux
	if sessionManager != nil {
		handler = sessionManager.LoadAndSave(mux)
	}
	return &client{t: t, handler: handler, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
