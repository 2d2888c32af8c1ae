package handlers

import (
	"context"
	"net/http"
	"testing"

	"flaromlab/internal/blob"
	"flaromlab/internal/compare"
	"flaromlab/internal/formulastore"
	"flaromlab/models"
)

type oilComparison struct {
	IDs     []string           `json:"ids"`
	Full    bool               `json:"full"`
	Items   []models.Oil       `json:"items"`
	Matrix  *compare.OilMatrix `json:"matrix"`
	Changed *bool              `json:"changed"`
}

func TestToggleComparisonPersistsInSession(t *testing.T) {
	withDeps(t, fixtureDeps())
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/compare/oils/toggle", `{"id": "Rose Otto"}`)
	expectStatus(t, rec, http.StatusOK)
	resp := decode[oilComparison](t, rec)
	if len(resp.IDs) != 1 || resp.Matrix != nil {
		t.Fatalf("expected one oil and no matrix, got %+v", resp)
	}

	c.do(http.MethodPost, "/api/compare/oils/toggle", `{"id": "Lavender"}`)
	resp = decode[oilComparison](t, c.do(http.MethodGet, "/api/compare/oils", ""))
	if len(resp.Items) != 2 || resp.Items[0].Name != "Rose Otto" || resp.Items[1].Name != "Lavender" {
		t.Fatalf("expected both oils in selection order, got %+v", resp.Items)
	}
	if resp.Matrix == nil || len(resp.Matrix.Attributes) == 0 {
		t.Fatal("expected a comparison matrix for two oils")
	}

	resp = decode[oilComparison](t, c.do(http.MethodPost, "/api/compare/oils/toggle", `{"id": "Rose Otto"}`))
	if len(resp.IDs) != 1 || resp.IDs[0] != "Lavender" {
		t.Fatalf("expected second toggle to remove Rose Otto, got %v", resp.IDs)
	}

	other := decode[oilComparison](t, c.do(http.MethodGet, "/api/compare/molecules", ""))
	if len(other.IDs) != 0 {
		t.Fatalf("expected molecule comparison to be independent, got %v", other.IDs)
	}
}

func TestToggleComparisonIgnoresSixth(t *testing.T) {
	withDeps(t, fixtureDeps())
	c := newClient(t)

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		expectStatus(t, c.do(http.MethodPost, "/api/compare/molecules/toggle", `{"id": "`+id+`"}`), http.StatusOK)
	}
	resp := decode[oilComparison](t, c.do(http.MethodPost, "/api/compare/molecules/toggle", `{"id": "f"}`))
	if len(resp.IDs) != compare.MaxSize || !resp.Full {
		t.Fatalf("expected a full set of %d, got %v", compare.MaxSize, resp.IDs)
	}
	if resp.Changed == nil || *resp.Changed {
		t.Fatal("expected sixth toggle to report no change")
	}
}

func TestToggleComparisonValidation(t *testing.T) {
	withDeps(t, fixtureDeps())
	c := newClient(t)

	expectStatus(t, c.do(http.MethodPost, "/api/compare/oils/toggle", `{"id": "  "}`), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodPost, "/api/compare/users/toggle", `{"id": "x"}`), http.StatusNotFound)
}

type formulaComparison struct {
	IDs   []string         `json:"ids"`
	Items []models.Formula `json:"items"`
}

func TestComparisonResolvesSavedFormulas(t *testing.T) {
	deps := fixtureDeps()
	custom := models.Formula{ID: "CUSTOM-1", Name: "Night Rose", Category: "Floral", Components: []models.FormulaComponent{{MoleculeID: "M1", Percent: 100}}}
	if _, err := deps.Formulas.AppendSaved(context.Background(), custom); err != nil {
		t.Fatalf("seed saved formula: %v", err)
	}
	withDeps(t, deps)
	c := newClient(t)

	expectStatus(t, c.do(http.MethodPost, "/api/compare/formulas/toggle", `{"id": "CUSTOM-1"}`), http.StatusOK)
	rec := c.do(http.MethodPost, "/api/compare/formulas/toggle", `{"id": "F1"}`)
	expectStatus(t, rec, http.StatusOK)

	resp := decode[formulaComparison](t, rec)
	if len(resp.Items) != 2 || resp.Items[0].ID != "CUSTOM-1" || resp.Items[1].ID != "F1" {
		t.Fatalf("expected saved and catalog formulas in selection order, got %+v", resp.Items)
	}
}

func TestComparisonFailsWhenSavedFormulasUnreadable(t *testing.T) {
	store := blob.NewMemory()
	if err := store.Put(context.Background(), formulastore.DefaultKey, []byte("not json")); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	deps := fixtureDeps()
	deps.Formulas = formulastore.New(store, formulastore.DefaultKey)
	withDeps(t, deps)
	c := newClient(t)

	expectStatus(t, c.do(http.MethodGet, "/api/compare/formulas", ""), http.StatusInternalServerError)
	expectStatus(t, c.do(http.MethodGet, "/api/compare/oils", ""), http.StatusOK)
}
