package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"flaromlab/internal/catalog"
	"flaromlab/models"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read exposition: %v", err)
	}
	return string(body)
}

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	r := New()
	r.ObserveShard(catalog.SourceRef{Entity: models.EntityMolecules}, nil)
	r.ObserveShard(catalog.SourceRef{Entity: models.EntityMolecules}, nil)
	r.ObserveShard(catalog.SourceRef{Entity: models.EntityMolecules}, errors.New("missing"))
	r.FormulaSaved()
	r.ObserveRequest("/api/oils", 200)

	body := scrape(t, r)
	for _, want := range []string{
		`flaromlab_catalog_shards_total{entity="molecules",result="ok"} 2`,
		`flaromlab_catalog_shards_total{entity="molecules",result="failed"} 1`,
		`flaromlab_formulas_saved_total 1`,
		`flaromlab_http_requests_total{code="200",route="/api/oils"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition, got:\n%s", want, body)
		}
	}
}

func TestRecordersAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.FormulaSaved()
	if strings.Contains(scrape(t, b), "flaromlab_formulas_saved_total 1") {
		t.Fatal("expected recorders not to share counters")
	}
	if a.Registry() == b.Registry() {
		t.Fatal("expected private registries")
	}
}
