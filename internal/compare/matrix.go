package compare

import "flaromlab/models"

// MatrixComponents caps the component rows shown in an oil comparison.
const MatrixComponents = 5

// OilMatrix is a side-by-side table of oils.
type OilMatrix struct {
	Oils       []string       `json:"oils"`
	Attributes []MatrixRow    `json:"attributes"`
	Components []ComponentRow `json:"components"`
}

// MatrixRow holds one descriptive attribute per oil.
type MatrixRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// ComponentRow holds one constituent's percentage per oil. A nil entry means
// the oil does not contain it.
type ComponentRow struct {
	Name     string     `json:"name"`
	Percents []*float64 `json:"percents"`
}

// BuildOilMatrix compares oils. It needs at least two oils and reports
// ok=false otherwise. Component rows are the first MatrixComponents names of
// the union of every oil's components, in first-seen order.
func BuildOilMatrix(oils []models.Oil) (OilMatrix, bool) {
	if len(oils) < 2 {
		return OilMatrix{}, false
	}

	m := OilMatrix{Oils: make([]string, len(oils))}
	rows := []struct {
		label string
		get   func(models.Oil) string
	}{
		{"Family", func(o models.Oil) string { return o.Family }},
		{"Origin", func(o models.Oil) string { return o.Origin }},
		{"Price Range", func(o models.Oil) string { return o.PriceRange }},
		{"Synthesis", func(o models.Oil) string { return o.SynthesisOpportunity }},
	}
	for _, row := range rows {
		values := make([]string, len(oils))
		for i, oil := range oils {
			values[i] = row.get(oil)
		}
		m.Attributes = append(m.Attributes, MatrixRow{Label: row.label, Values: values})
	}

	var names []string
	seen := map[string]bool{}
	for i, oil := range oils {
		m.Oils[i] = oil.Name
		for _, name := range oil.ComponentNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	if len(names) > MatrixComponents {
		names = names[:MatrixComponents]
	}

	for _, name := range names {
		row := ComponentRow{Name: name, Percents: make([]*float64, len(oils))}
		for i, oil := range oils {
			if percent, ok := oil.Components[name]; ok {
				row.Percents[i] = &percent
			}
		}
		m.Components = append(m.Components, row)
	}
	return m, true
}
