package analytics

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"flaromlab/internal/catalog"
	"flaromlab/models"
)

func TestCategoryBreakdown(t *testing.T) {
	t.Parallel()

	molecules := []models.Molecule{
		{ID: "1", Category: "Floral"},
		{ID: "2", Category: "Woody"},
		{ID: "3", Category: "Woody"},
		{ID: "4", Category: "Citrus"},
		{ID: "5", Category: "Floral"},
		{ID: "6", Category: "Musk"},
		{ID: "7"},
	}

	got := CategoryBreakdown(molecules)
	want := []CategoryCount{
		{Category: "Floral", Count: 2, Percent: 28.6},
		{Category: "Woody", Count: 2, Percent: 28.6},
		{Category: "Citrus", Count: 1, Percent: 14.3},
		{Category: "Musk", Count: 1, Percent: 14.3},
		{Category: Uncategorized, Count: 1, Percent: 14.3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected breakdown (-want +got):\n%s", diff)
	}

	total := 0
	for _, row := range got {
		total += row.Count
	}
	if total != len(molecules) {
		t.Fatalf("breakdown counts sum to %d, want %d", total, len(molecules))
	}
}

func TestTopUsageResolvesNames(t *testing.T) {
	t.Parallel()

	formulas := []models.Formula{
		{ID: "F1", Components: []models.FormulaComponent{{MoleculeID: "M1"}, {MoleculeID: "M2"}}},
		{ID: "F2", Components: []models.FormulaComponent{{MoleculeID: "M1"}}},
	}
	index := catalog.NewMoleculeIndex([]models.Molecule{{ID: "M1", Name: "Iso E Super"}})

	got := TopUsage(formulas, index, 0)
	want := []Usage{
		{MoleculeID: "M1", Name: "Iso E Super", Count: 2},
		{MoleculeID: "M2", Name: "M2", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected usage (-want +got):\n%s", diff)
	}
}

func TestTopUsageCapsAtN(t *testing.T) {
	t.Parallel()

	var components []models.FormulaComponent
	for _, id := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		components = append(components, models.FormulaComponent{MoleculeID: id})
	}
	got := TopUsage([]models.Formula{{Components: components}}, nil, 0)
	if len(got) != DefaultTopN || got[0].MoleculeID != "A" || got[9].MoleculeID != "J" {
		t.Fatalf("expected first ten ids in first-seen order, got %+v", got)
	}
	if len(TopUsage([]models.Formula{{Components: components}}, nil, 3)) != 3 {
		t.Fatal("expected explicit n to be honoured")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	formulas := []models.Formula{
		{ID: "F1", CostPerLiter: 40, RetailPerLiter: 260},
		{ID: "F2", CostPerLiter: 10, RetailPerLiter: 65},
		{ID: "F3", CostPerLiter: 0, RetailPerLiter: 0},
		{ID: "F4", CostPerLiter: 30, RetailPerLiter: 195},
	}
	got := Summarize(formulas, make([]models.Molecule, 3))
	want := Stats{
		TotalFormulas:    4,
		TotalMolecules:   3,
		AverageCost:      20,
		AverageMargin:    4.875,
		TotalRevenue:     520,
		MinCost:          0,
		MedianCost:       30,
		MaxCost:          40,
		ZeroCostFormulas: 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected stats (-want +got):\n%s", diff)
	}
	if formulas[0].ID != "F1" || formulas[2].ID != "F3" {
		t.Fatal("summarize reordered its input")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	got := Summarize(nil, nil)
	if diff := cmp.Diff(Stats{}, got); diff != "" {
		t.Fatalf("expected zero stats (-want +got):\n%s", diff)
	}
}

func TestBuildDashboardInsights(t *testing.T) {
	t.Parallel()

	index := catalog.NewMoleculeIndex([]models.Molecule{
		{ID: "M1", Name: "Hedione", Category: "Floral"},
		{ID: "M2", Name: "Cashmeran", Category: "Woody"},
		{ID: "M3", Name: "Linalool", Category: "Floral"},
	})
	formulas := []models.Formula{
		{ID: "F1", CostPerLiter: 20, RetailPerLiter: 120, Components: []models.FormulaComponent{{MoleculeID: "M1"}, {MoleculeID: "M2"}}},
		{ID: "F2", Components: []models.FormulaComponent{{MoleculeID: "M1"}}},
	}

	d := BuildDashboard(formulas, index)
	want := []string{
		"3 molecules available for formula creation",
		"Average formula profit margin: 3.0x",
		"Top category: Floral with 2 molecules",
		"Hedione is the most versatile ingredient",
		"1 formulas have no cost and count as 0 in the margin average",
	}
	if diff := cmp.Diff(want, d.Insights); diff != "" {
		t.Fatalf("unexpected insights (-want +got):\n%s", diff)
	}
}
