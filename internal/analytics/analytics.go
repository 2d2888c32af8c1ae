// Package analytics derives dashboard figures from formulas and molecules.
package analytics

import (
	"math"
	"slices"
	"sort"

	"flaromlab/internal/catalog"
	"flaromlab/models"
)

// DefaultTopN is the number of molecules reported by TopUsage when n <= 0.
const DefaultTopN = 10

// Uncategorized labels molecules published without a category.
const Uncategorized = "Uncategorized"

// CategoryCount is one row of the molecule category breakdown.
type CategoryCount struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// Usage counts how many component lines reference a molecule.
type Usage struct {
	MoleculeID string `json:"molecule_id"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

// Stats holds the scalar dashboard figures.
type Stats struct {
	TotalFormulas    int     `json:"total_formulas"`
	TotalMolecules   int     `json:"total_molecules"`
	AverageCost      float64 `json:"average_cost"`
	AverageMargin    float64 `json:"average_margin"`
	TotalRevenue     float64 `json:"total_revenue"`
	MinCost          float64 `json:"min_cost"`
	MedianCost       float64 `json:"median_cost"`
	MaxCost          float64 `json:"max_cost"`
	ZeroCostFormulas int     `json:"zero_cost_formulas"`
}

// CategoryBreakdown groups molecules by category, largest group first. Groups
// with equal counts keep the order in which they were first seen.
func CategoryBreakdown(molecules []models.Molecule) []CategoryCount {
	counts := map[string]int{}
	var order []string
	for _, molecule := range molecules {
		category := molecule.Category
		if category == "" {
			category = Uncategorized
		}
		if _, ok := counts[category]; !ok {
			order = append(order, category)
		}
		counts[category]++
	}

	rows := make([]CategoryCount, 0, len(order))
	for _, category := range order {
		rows = append(rows, CategoryCount{
			Category: category,
			Count:    counts[category],
			Percent:  round1(float64(counts[category]) / float64(len(molecules)) * 100),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// TopUsage counts component references across formulas and returns the n
// most used molecules. Ids the index cannot resolve are labelled by the id.
func TopUsage(formulas []models.Formula, index *catalog.MoleculeIndex, n int) []Usage {
	if n <= 0 {
		n = DefaultTopN
	}
	counts := map[string]int{}
	var order []string
	for _, formula := range formulas {
		for _, component := range formula.Components {
			id := component.MoleculeID
			if _, ok := counts[id]; !ok {
				order = append(order, id)
			}
			counts[id]++
		}
	}

	usage := make([]Usage, 0, len(order))
	for _, id := range order {
		name := id
		if index != nil {
			name = index.Name(id)
		}
		usage = append(usage, Usage{MoleculeID: id, Name: name, Count: counts[id]})
	}
	sort.SliceStable(usage, func(i, j int) bool { return usage[i].Count > usage[j].Count })
	if len(usage) > n {
		usage = usage[:n]
	}
	return usage
}

// Summarize computes the scalar statistics. Averages over an empty formula
// list are 0. A formula with zero cost adds 0 to the margin average and is
// counted in ZeroCostFormulas. The median is the element at floor(n/2) of the
// ascending cost list. formulas is not reordered.
func Summarize(formulas []models.Formula, molecules []models.Molecule) Stats {
	stats := Stats{TotalFormulas: len(formulas), TotalMolecules: len(molecules)}
	if len(formulas) == 0 {
		return stats
	}

	costs := make([]float64, len(formulas))
	var costSum, marginSum float64
	for i, formula := range formulas {
		cost := formula.CostPerLiter
		costs[i] = cost
		costSum += cost
		stats.TotalRevenue += formula.RetailPerLiter
		if cost == 0 {
			stats.ZeroCostFormulas++
			continue
		}
		marginSum += formula.RetailPerLiter / cost
	}

	n := float64(len(formulas))
	stats.AverageCost = costSum / n
	stats.AverageMargin = marginSum / n

	slices.Sort(costs)
	stats.MinCost = costs[0]
	stats.MaxCost = costs[len(costs)-1]
	stats.MedianCost = costs[len(costs)/2]
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
