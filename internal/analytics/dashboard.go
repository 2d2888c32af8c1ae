package analytics

import (
	"fmt"

	"flaromlab/internal/catalog"
	"flaromlab/models"
)

// Dashboard bundles everything the analytics view shows.
type Dashboard struct {
	Stats     Stats           `json:"stats"`
	Breakdown []CategoryCount `json:"category_breakdown"`
	TopUsage  []Usage         `json:"top_molecules"`
	Insights  []string        `json:"insights"`
}

// BuildDashboard aggregates formulas against the molecule index.
func BuildDashboard(formulas []models.Formula, index *catalog.MoleculeIndex) Dashboard {
	molecules := index.Molecules()
	d := Dashboard{
		Stats:     Summarize(formulas, molecules),
		Breakdown: CategoryBreakdown(molecules),
		TopUsage:  TopUsage(formulas, index, DefaultTopN),
	}

	d.Insights = append(d.Insights,
		fmt.Sprintf("%d molecules available for formula creation", d.Stats.TotalMolecules),
		fmt.Sprintf("Average formula profit margin: %.1fx", d.Stats.AverageMargin),
	)
	if len(d.Breakdown) > 0 {
		top := d.Breakdown[0]
		d.Insights = append(d.Insights, fmt.Sprintf("Top category: %s with %d molecules", top.Category, top.Count))
	}
	if len(d.TopUsage) > 0 {
		d.Insights = append(d.Insights, fmt.Sprintf("%s is the most versatile ingredient", d.TopUsage[0].Name))
	}
	if d.Stats.ZeroCostFormulas > 0 {
		d.Insights = append(d.Insights, fmt.Sprintf("%d formulas have no cost and count as 0 in the margin average", d.Stats.ZeroCostFormulas))
	}
	return d
}
